package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type (
	Argon2Params struct {
		Time    uint32
		Memory  uint32
		Threads uint8
		SaltLen uint32
		KeyLen  uint32
	}

	Argon2id struct {
		params Argon2Params
		rand   io.Reader
	}
)

const (
	argon2Prefix = "$argon2id$"
)

// DefaultArgon2Params trades a few passes over 10 MB of memory for
// a single pass over 64 MB.
func DefaultArgon2Params() Argon2Params {
	threads := runtime.NumCPU() / 2
	if threads < 1 {
		threads = 1
	}
	if threads > 255 {
		threads = 255
	}
	return Argon2Params{
		Time:    3,
		Memory:  10 * 1024,
		Threads: uint8(threads),
		SaltLen: 16,
		KeyLen:  32,
	}
}

func NewArgon2id(p Argon2Params) Argon2id {
	return Argon2id{params: p, rand: rand.Reader}
}

// Hash encodes the digest in the PHC string format, salt and parameters
// included, so Verify does not need any configuration.
func (a Argon2id) Hash(secret string) ([]byte, error) {
	salt := make([]byte, a.params.SaltLen)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return nil, fmt.Errorf("password: unable to generate salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, a.params.Time, a.params.Memory, a.params.Threads, a.params.KeyLen)
	out := fmt.Sprintf("%vv=%d$m=%d,t=%d,p=%d$%v$%v", argon2Prefix, argon2.Version,
		a.params.Memory, a.params.Time, a.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return []byte(out), nil
}

func (a Argon2id) Verify(secret string, digest []byte) bool {
	p, salt, key, ok := parseArgon2(string(digest))
	if !ok {
		return false
	}
	other := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1
}

func parseArgon2(digest string) (p Argon2Params, salt, key []byte, ok bool) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, false
	}
	var seen int
	for _, kv := range strings.Split(parts[3], ",") {
		name, val, found := strings.Cut(kv, "=")
		if !found {
			return p, nil, nil, false
		}
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil || n == 0 {
			return p, nil, nil, false
		}
		switch name {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, false
			}
			p.Threads = uint8(n)
		default:
			return p, nil, nil, false
		}
		seen++
	}
	if seen != 3 {
		return p, nil, nil, false
	}
	var err error
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}
	return p, salt, key, true
}
