// Package session maps opaque session tokens to user identifiers.
//
// A user holds at most one live token: creating a session replaces (and
// invalidates) the previous one. Tokens do not expire on their own, they
// are removed by Destroy or replaced by a new Create.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUser is returned by Create when the user id is empty, not a
	// valid identifier or unknown to the store.
	ErrInvalidUser = errors.New("session: invalid user id")
)

type (
	Store interface {
		// Create issues a new token for userID, replacing the previous one.
		Create(ctx context.Context, userID string) (string, error)
		// Lookup returns the user bound to token. Unknown or empty tokens are
		// reported with found == false and a nil error.
		Lookup(ctx context.Context, token string) (userID string, found bool, err error)
		// Destroy removes the token bound to userID. Destroying a user without a
		// session is not an error.
		Destroy(ctx context.Context, userID string) error
	}
)

// ValidUserID reports whether id can be bound to a session.
func ValidUserID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NewToken returns a random, opaque token.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session: unable to generate token, cause %w", err)
	}
	return id.String(), nil
}
