package authproxy

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/julienschmidt/httprouter"

	"github.com/andrebq/authdeck/gate"
	"github.com/andrebq/authdeck/internal/logutil"
)

const (
	UserIDHeader    = "X-Authdeck-User-Id"
	UserEmailHeader = "X-Authdeck-User-Email"
)

type (
	InvalidUpstream struct {
		URL string
	}
)

var (
	methods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD",
	}
)

func (i InvalidUpstream) Error() string {
	return "authproxy: upstream " + i.URL + " must be an absolute url"
}

// AsHandler serves account routes with accounts and forwards everything else
// to upstream once realm accepts the request. The authenticated user is sent
// upstream in UserIDHeader and UserEmailHeader, values sent by the client
// for those headers are always dropped. The upstream never receives the
// client credentials: the Authorization header and the cookie named
// cookieName are removed.
func AsHandler(ctx context.Context, accounts http.Handler, realm *gate.Realm, upstream *url.URL, cookieName string) (http.Handler, error) {
	if upstream == nil || upstream.Scheme == "" || upstream.Host == "" {
		u := ""
		if upstream != nil {
			u = upstream.String()
		}
		return nil, InvalidUpstream{URL: u}
	}
	if cookieName == "" {
		cookieName = gate.DefaultCookieName
	}
	log := logutil.GetOrDefault(ctx).With().Str("upstream", upstream.String()).Logger()
	router := httprouter.New()
	router.RedirectTrailingSlash = false

	for _, m := range methods {
		for _, p := range []string{"/users", "/sessions", "/profile", "/api/v1/*rest"} {
			router.Handler(m, p, accounts)
		}
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Header.Del(UserIDHeader)
		r.Header.Del(UserEmailHeader)
		r.Header.Del("Authorization")
		dropCookie(r, cookieName)
		if u, ok := gate.UserFrom(r.Context()); ok {
			r.Header.Set(UserIDHeader, u.ID)
			r.Header.Set(UserEmailHeader, u.Email)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Unable to reach upstream")
		w.WriteHeader(http.StatusBadGateway)
	}

	// delegate to the upstream if not an account route
	router.NotFound = realm.Protect(proxy)
	return router, nil
}

func dropCookie(r *http.Request, name string) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name != name {
			r.AddCookie(c)
		}
	}
}
