// Package directory stores user records, each identified by a unique email.
//
// The raw password is never stored, only the digest produced by the
// password package.
package directory

import (
	"context"
	"time"
)

const (
	// ErrNotFound is returned when no user matches a lookup or an update.
	ErrNotFound Error = "user not found"
	// ErrAlreadyExists is returned when the email is already registered.
	ErrAlreadyExists Error = "user already exists"
	// ErrInvalidUser is returned when a record fails validation.
	ErrInvalidUser Error = "user must have an email and a password digest"
)

type (
	// Error is the type of the sentinel errors reported by a Directory.
	Error string

	User struct {
		ID             string
		Email          string
		HashedPassword []byte
		// SessionID is nil when the user has no live session.
		SessionID *string
		CreatedAt time.Time
	}

	// Key selects a user through one of its unique fields.
	Key struct {
		field string
		value string
	}

	// Change is a mutation applied by Update.
	Change struct {
		sessionID *string
	}

	Directory interface {
		// FindBy returns the user matching key, or ErrNotFound.
		FindBy(ctx context.Context, key Key) (User, error)
		// Add inserts a new user. ErrAlreadyExists is returned if the email
		// is taken, the previous record is left untouched.
		Add(ctx context.Context, email string, hashedPassword []byte) (User, error)
		// Update applies changes to the user with the given id as a single
		// atomic write, or returns ErrNotFound.
		Update(ctx context.Context, id string, changes ...Change) error
		List(ctx context.Context) ([]User, error)
		Close() error
	}
)

func (e Error) Error() string { return string(e) }

func ByID(id string) Key { return Key{field: "user_id", value: id} }
func ByEmail(email string) Key { return Key{field: "email", value: email} }
func BySession(token string) Key { return Key{field: "session_id", value: token} }
func (k Key) Value() string { return k.value }
func (k Key) column() string { return k.field }

// SetSession binds token to the user, replacing any previous one.
func SetSession(token string) Change {
	return Change{sessionID: &token}
}

// ClearSession removes the session token from the user.
func ClearSession() Change {
	return Change{}
}

// HasSession reports whether the user currently holds token.
func (u User) HasSession(token string) bool {
	return u.SessionID != nil && token != "" && *u.SessionID == token
}
