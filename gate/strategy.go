package gate

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/authdeck/credentials"
	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/internal/logutil"
	"github.com/andrebq/authdeck/password"
	"github.com/andrebq/authdeck/session"
)

const (
	DefaultCookieName = "session_id"
)

type (
	// Strategy is one way of verifying who sent a request.
	Strategy interface {
		RequireAuth(path string) bool
		// HasCredentials reports whether r carries the material this strategy
		// understands, valid or not.
		HasCredentials(r *http.Request) bool
		CurrentUser(r *http.Request) (directory.User, bool)
	}

	Basic struct {
		Paths  Paths
		Users  directory.Directory
		Hasher password.Hasher
	}

	Session struct {
		Paths      Paths
		Users      directory.Directory
		Sessions   session.Store
		CookieName string
	}

	// Chain accepts a request if any of its strategies does, in order.
	Chain struct {
		Paths      Paths
		Strategies []Strategy
	}
)

var (
	_ Strategy = Basic{}
	_ Strategy = Session{}
	_ Strategy = Chain{}
)

func (b Basic) RequireAuth(path string) bool {
	return b.Paths.RequireAuth(path)
}

func (b Basic) HasCredentials(r *http.Request) bool {
	_, ok := credentials.HeaderValue(r)
	return ok
}

func (b Basic) CurrentUser(r *http.Request) (directory.User, bool) {
	email, secret, ok := credentials.FromRequest(r)
	if !ok {
		return directory.User{}, false
	}
	return b.Verify(r.Context(), email, secret)
}

// Verify checks an email/password pair against the directory. Unknown
// emails, wrong passwords and backend failures all yield no user.
func (b Basic) Verify(ctx context.Context, email, secret string) (directory.User, bool) {
	if b.Users == nil || b.Hasher == nil || email == "" {
		return directory.User{}, false
	}
	u, err := b.Users.FindBy(ctx, directory.ByEmail(email))
	if errors.Is(err, directory.ErrNotFound) {
		return directory.User{}, false
	} else if err != nil {
		log := logutil.GetOrDefault(ctx)
		log.Error().Err(err).Msg("Unable to lookup user for basic authentication")
		return directory.User{}, false
	}
	if !b.Hasher.Verify(secret, u.HashedPassword) {
		return directory.User{}, false
	}
	return u, true
}

func (s Session) RequireAuth(path string) bool {
	return s.Paths.RequireAuth(path)
}

func (s Session) cookieName() string {
	if s.CookieName == "" {
		return DefaultCookieName
	}
	return s.CookieName
}

// Token returns the session token carried by r.
func (s Session) Token(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(s.cookieName())
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s Session) HasCredentials(r *http.Request) bool {
	_, ok := s.Token(r)
	return ok
}

func (s Session) CurrentUser(r *http.Request) (directory.User, bool) {
	if s.Users == nil || s.Sessions == nil {
		return directory.User{}, false
	}
	token, ok := s.Token(r)
	if !ok {
		return directory.User{}, false
	}
	ctx := r.Context()
	log := logutil.GetOrDefault(ctx)
	uid, found, err := s.Sessions.Lookup(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("Unexpected error when checking for token in session store")
		return directory.User{}, false
	} else if !found {
		return directory.User{}, false
	}
	u, err := s.Users.FindBy(ctx, directory.ByID(uid))
	if errors.Is(err, directory.ErrNotFound) {
		return directory.User{}, false
	} else if err != nil {
		log.Error().Err(err).Str("user_id", uid).Msg("Unable to load session user")
		return directory.User{}, false
	}
	return u, true
}

func (c Chain) RequireAuth(path string) bool {
	return c.Paths.RequireAuth(path)
}

func (c Chain) HasCredentials(r *http.Request) bool {
	for _, s := range c.Strategies {
		if s.HasCredentials(r) {
			return true
		}
	}
	return false
}

func (c Chain) CurrentUser(r *http.Request) (directory.User, bool) {
	for _, s := range c.Strategies {
		if !s.HasCredentials(r) {
			continue
		}
		if u, ok := s.CurrentUser(r); ok {
			return u, true
		}
	}
	return directory.User{}, false
}
