package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type (
	Bcrypt struct {
		cost int
	}
)

// NewBcrypt returns a bcrypt hasher, cost values outside the accepted range
// fallback to bcrypt.DefaultCost
func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{cost: cost}
}

// Hash errors if secret is longer than 72 bytes.
func (b Bcrypt) Hash(secret string) ([]byte, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return nil, fmt.Errorf("password: unable to hash secret, cause %w", err)
	}
	return digest, nil
}

// Verify is constant-time with respect to the secret.
func (b Bcrypt) Verify(secret string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(secret)) == nil
}

func isBcrypt(digest []byte) bool {
	_, err := bcrypt.Cost(digest)
	return err == nil
}
