// Package password implements salted one-way hashing of user secrets.
//
// Hashing the same secret twice never yields the same digest, so callers
// must compare through Verify and never through the digest bytes.
package password

import (
	"bytes"
	"fmt"
)

const (
	// MaxSecretLen is the longest secret every hasher accepts, bcrypt
	// refuses anything longer.
	MaxSecretLen = 72
)

type (
	// Hasher produces and checks digests. Verify returns false for a
	// malformed digest instead of an error.
	Hasher interface {
		Hash(secret string) ([]byte, error)
		Verify(secret string, digest []byte) bool
	}

	// UnknownHasher is returned by New when name is not supported.
	UnknownHasher struct {
		Name string
	}

	// Mixed hashes with Default and verifies with whatever algorithm
	// produced the digest.
	Mixed struct {
		Default Hasher
	}
)

const (
	BcryptName   = "bcrypt"
	Argon2idName = "argon2id"
)

func (u UnknownHasher) Error() string {
	return fmt.Sprintf("password: unknown hasher %q, valid options are %v and %v", u.Name, BcryptName, Argon2idName)
}

// New returns the hasher registered under name, wrapped in Mixed so
// digests produced by the other algorithm still verify.
func New(name string) (Hasher, error) {
	var h Hasher
	switch name {
	case "", BcryptName:
		h = NewBcrypt(0)
	case Argon2idName:
		h = NewArgon2id(DefaultArgon2Params())
	default:
		return nil, UnknownHasher{Name: name}
	}
	return Mixed{Default: h}, nil
}

// ForDigest returns the hasher able to verify digest, or nil if the format
// is not recognized.
func ForDigest(digest []byte) Hasher {
	switch {
	case bytes.HasPrefix(digest, []byte(argon2Prefix)):
		return NewArgon2id(DefaultArgon2Params())
	case isBcrypt(digest):
		return NewBcrypt(0)
	}
	return nil
}

func (m Mixed) Hash(secret string) ([]byte, error) {
	return m.Default.Hash(secret)
}

func (m Mixed) Verify(secret string, digest []byte) bool {
	h := ForDigest(digest)
	if h == nil {
		return false
	}
	return h.Verify(secret, digest)
}
