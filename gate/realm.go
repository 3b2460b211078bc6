package gate

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/internal/logutil"
)

type (
	Outcome byte

	// Realm guards http handlers with a Strategy.
	Realm struct {
		strategy Strategy
	}

	userKey struct{}
)

const (
	// Skipped means the path is excluded from authentication.
	Skipped Outcome = iota
	Authenticated
	// Unauthenticated means the request carries no credentials at all.
	Unauthenticated
	// Forbidden means the request carries credentials that do not resolve
	// to a user.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

func NewRealm(strategy Strategy) *Realm {
	return &Realm{strategy: strategy}
}

func (s *Realm) Strategy() Strategy {
	return s.strategy
}

// Evaluate runs the authentication state machine for r.
func (s *Realm) Evaluate(r *http.Request) (Outcome, directory.User) {
	if !s.strategy.RequireAuth(r.URL.Path) {
		return Skipped, directory.User{}
	}
	if !s.strategy.HasCredentials(r) {
		return Unauthenticated, directory.User{}
	}
	u, ok := s.strategy.CurrentUser(r)
	if !ok {
		return Forbidden, directory.User{}
	}
	return Authenticated, u
}

// Protect only calls sensitive for excluded paths or authenticated
// requests, the user is available through UserFrom.
func (s *Realm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		outcome, u := s.Evaluate(r)
		log := logutil.GetOrDefault(r.Context())
		switch outcome {
		case Unauthenticated:
			log.Debug().Str("path", r.URL.Path).Msg("Request without credentials")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		case Forbidden:
			log.Info().Str("path", r.URL.Path).Msg("Request with invalid credentials")
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		case Authenticated:
			r = r.WithContext(WithUser(r.Context(), u))
		}
		sensitive.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u directory.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user authenticated by Protect.
func UserFrom(ctx context.Context) (directory.User, bool) {
	u, ok := ctx.Value(userKey{}).(directory.User)
	return u, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
