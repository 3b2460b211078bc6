// Package account registers users and manages their login sessions on
// top of a directory, a password hasher and a session store.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/gate"
	"github.com/andrebq/authdeck/internal/logutil"
	"github.com/andrebq/authdeck/password"
	"github.com/andrebq/authdeck/session"
)

var (
	// ErrMissingCredentials is returned by Register when email or password
	// are empty.
	ErrMissingCredentials = errors.New("account: email and password are required")
	// ErrInvalidPassword is returned by Register when the password cannot
	// be hashed by every supported algorithm.
	ErrInvalidPassword = fmt.Errorf("account: password must be at most %v bytes", password.MaxSecretLen)
)

type (
	Service struct {
		users    directory.Directory
		hasher   password.Hasher
		sessions session.Store
	}
)

func New(users directory.Directory, hasher password.Hasher, sessions session.Store) *Service {
	return &Service{users: users, hasher: hasher, sessions: sessions}
}

func (s *Service) Users() directory.Directory { return s.users }
func (s *Service) Sessions() session.Store { return s.sessions }
func (s *Service) Hasher() password.Hasher { return s.hasher }

// Register hashes passwd and stores a new user. directory.ErrAlreadyExists
// is returned if the email is taken.
func (s *Service) Register(ctx context.Context, email, passwd string) (directory.User, error) {
	if email == "" || passwd == "" {
		return directory.User{}, ErrMissingCredentials
	}
	if len(passwd) > password.MaxSecretLen {
		return directory.User{}, ErrInvalidPassword
	}
	digest, err := s.hasher.Hash(passwd)
	if err != nil {
		return directory.User{}, err
	}
	u, err := s.users.Add(ctx, email, digest)
	if err != nil {
		return directory.User{}, err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user_id", u.ID).Msg("User registered")
	return u, nil
}

// Authenticate returns the user owning email if passwd matches its digest.
func (s *Service) Authenticate(ctx context.Context, email, passwd string) (directory.User, bool) {
	return gate.Basic{Users: s.users, Hasher: s.hasher}.Verify(ctx, email, passwd)
}

// ValidLogin reports whether the email/password pair is valid.
func (s *Service) ValidLogin(ctx context.Context, email, passwd string) bool {
	_, ok := s.Authenticate(ctx, email, passwd)
	return ok
}

// Login verifies the credentials and opens a new session, invalidating any
// previous session of the same user.
func (s *Service) Login(ctx context.Context, email, passwd string) (string, directory.User, bool, error) {
	u, ok := s.Authenticate(ctx, email, passwd)
	if !ok {
		return "", directory.User{}, false, nil
	}
	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return "", directory.User{}, false, fmt.Errorf("account: unable to create session, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user_id", u.ID).Msg("Session created")
	return token, u, true, nil
}

// UserFromSession resolves the user holding token.
func (s *Service) UserFromSession(ctx context.Context, token string) (directory.User, bool) {
	log := logutil.GetOrDefault(ctx)
	uid, found, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		log.Error().Err(err).Msg("Unable to lookup session")
		return directory.User{}, false
	} else if !found {
		return directory.User{}, false
	}
	u, err := s.users.FindBy(ctx, directory.ByID(uid))
	if err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			log.Error().Err(err).Str("user_id", uid).Msg("Unable to load session user")
		}
		return directory.User{}, false
	}
	return u, true
}

// Logout destroys the session of userID, it is safe to call it more than once.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Destroy(ctx, userID); err != nil {
		return err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("user_id", userID).Msg("Session destroyed")
	return nil
}
