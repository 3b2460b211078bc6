package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebq/authdeck/directory"
)

type (
	// Record keeps the token on the user record itself. Each operation is a
	// single row write, so concurrent login/logout of the same user cannot
	// lose updates.
	Record struct {
		users directory.Directory
	}
)

var _ Store = (*Record)(nil)

func NewRecord(users directory.Directory) *Record {
	return &Record{users: users}
}

func (r *Record) Create(ctx context.Context, userID string) (string, error) {
	if !ValidUserID(userID) {
		return "", ErrInvalidUser
	}
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	err = r.users.Update(ctx, userID, directory.SetSession(token))
	if errors.Is(err, directory.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrInvalidUser, err)
	} else if err != nil {
		return "", fmt.Errorf("session: unable to save token, cause %w", err)
	}
	return token, nil
}

func (r *Record) Lookup(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	u, err := r.users.FindBy(ctx, directory.BySession(token))
	if errors.Is(err, directory.ErrNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("session: unable to lookup token, cause %w", err)
	}
	return u.ID, true, nil
}

func (r *Record) Destroy(ctx context.Context, userID string) error {
	if !ValidUserID(userID) {
		return nil
	}
	err := r.users.Update(ctx, userID, directory.ClearSession())
	if err != nil && !errors.Is(err, directory.ErrNotFound) {
		return fmt.Errorf("session: unable to destroy session, cause %w", err)
	}
	return nil
}
