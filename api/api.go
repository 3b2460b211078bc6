// Package api exposes registration and session management over http.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/andrebq/authdeck/account"
	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/gate"
	"github.com/andrebq/authdeck/internal/logutil"
	"github.com/andrebq/authdeck/password"
)

type (
	Options struct {
		CookieName string
		// SecureCookie must be true when served over https
		SecureCookie bool
	}

	server struct {
		svc  *account.Service
		opts Options
	}
)

// PublicPaths handle authentication themselves (or need none) and should
// be excluded from the realm.
var PublicPaths = []string{
	"/",
	"/users/",
	"/sessions/",
	"/profile/",
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
}

// AsHandler returns the http handler for svc. Every route goes through realm,
// so only PublicPaths (plus whatever the realm excludes) can be reached
// without credentials.
func AsHandler(ctx context.Context, svc *account.Service, realm *gate.Realm, opts Options) http.Handler {
	if opts.CookieName == "" {
		opts.CookieName = gate.DefaultCookieName
	}
	s := &server{svc: svc, opts: opts}
	router := httprouter.New()
	router.HandlerFunc("GET", "/", s.welcome)
	router.HandlerFunc("GET", "/api/v1/status", s.status)
	router.HandlerFunc("GET", "/api/v1/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	})
	router.HandlerFunc("GET", "/api/v1/forbidden", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
	})
	router.HandlerFunc("POST", "/users", s.register)
	router.HandlerFunc("POST", "/sessions", s.login)
	router.HandlerFunc("DELETE", "/sessions", s.logout)
	router.HandlerFunc("GET", "/profile", s.profile)
	router.HandlerFunc("GET", "/api/v1/users/me", s.me)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})

	var handler http.Handler = router
	if realm != nil {
		handler = realm.Protect(handler)
	}
	return withLogger(logutil.GetOrDefault(ctx), handler)
}

func withLogger(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logutil.WithLogger(r.Context(), reqLog)))
	})
}

func (s *server) welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bienvenue"})
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	email, passwd, ok := formCredentials(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email and password are required"})
		return
	}
	u, err := s.svc.Register(r.Context(), email, passwd)
	switch {
	case errors.Is(err, directory.ErrAlreadyExists):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email already registered"})
		return
	case errors.Is(err, account.ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": fmt.Sprintf("password must be at most %v bytes", password.MaxSecretLen)})
		return
	case err != nil:
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to register user")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "unable to register user"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": u.Email, "message": "user created"})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	email, passwd, ok := formCredentials(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	token, u, ok, err := s.svc.Login(r.Context(), email, passwd)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to login")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unable to create session"})
		return
	} else if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	http.SetCookie(w, s.cookie(token, 0))
	writeJSON(w, http.StatusOK, map[string]string{"email": u.Email, "message": "logged in"})
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	u, ok := s.sessionUser(r)
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}
	if err := s.svc.Logout(r.Context(), u.ID); err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to logout")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "unable to destroy session"})
		return
	}
	http.SetCookie(w, s.cookie("", -1))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *server) profile(w http.ResponseWriter, r *http.Request) {
	u, ok := s.sessionUser(r)
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": u.Email})
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	u, ok := gate.UserFrom(r.Context())
	if !ok {
		// realm disabled or path excluded by configuration
		u, ok = s.sessionUser(r)
	}
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "email": u.Email})
}

func (s *server) sessionUser(r *http.Request) (directory.User, bool) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil || c.Value == "" {
		return directory.User{}, false
	}
	return s.svc.UserFromSession(r.Context(), c.Value)
}

func (s *server) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func formCredentials(r *http.Request) (email, passwd string, ok bool) {
	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	email, passwd = r.PostFormValue("email"), r.PostFormValue("password")
	return email, passwd, email != "" && passwd != ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
