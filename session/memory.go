package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

type (
	// Memory keeps sessions in process memory, they are lost on restart.
	Memory struct {
		// serializes create/destroy so the two key spaces stay consistent
		mu    sync.Mutex
		cache *bigcache.BigCache
	}

	xxhasher struct{}
)

const (
	tokenPrefix = "t/"
	userPrefix  = "u/"

	// bigcache always evicts after a life window, this one is long enough to
	// never be reached by a running process
	unboundedLife = 100 * 365 * 24 * time.Hour
)

var _ Store = (*Memory)(nil)

func (xxhasher) Sum64(key string) uint64 {
	return xxhash.Sum64String(key)
}

// NewMemory returns an in-memory store. A lifeWindow <= 0 keeps sessions
// until they are destroyed.
func NewMemory(lifeWindow time.Duration) (*Memory, error) {
	if lifeWindow <= 0 {
		lifeWindow = unboundedLife
	}
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Hasher = xxhasher{}
	cfg.Verbose = false
	if lifeWindow == unboundedLife {
		cfg.CleanWindow = 0
	}
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("session: unable to create memory store, cause %w", err)
	}
	return &Memory{cache: cache}, nil
}

func (m *Memory) Create(ctx context.Context, userID string) (string, error) {
	if !ValidUserID(userID) {
		return "", ErrInvalidUser
	}
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLocked(userID)
	if err := m.cache.Set(tokenPrefix+token, []byte(userID)); err != nil {
		return "", fmt.Errorf("session: unable to save token, cause %w", err)
	}
	if err := m.cache.Set(userPrefix+userID, []byte(token)); err != nil {
		m.cache.Delete(tokenPrefix + token)
		return "", fmt.Errorf("session: unable to save token, cause %w", err)
	}
	return token, nil
}

func (m *Memory) Lookup(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	uid, err := m.cache.Get(tokenPrefix + token)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("session: unable to lookup token, cause %w", err)
	}
	// the reverse entry is the source of truth for "one token per user"
	current, err := m.cache.Get(userPrefix + string(uid))
	if err != nil || string(current) != token {
		return "", false, nil
	}
	return string(uid), true, nil
}

func (m *Memory) Destroy(ctx context.Context, userID string) error {
	if !ValidUserID(userID) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLocked(userID)
	return nil
}

func (m *Memory) Close() error {
	return m.cache.Close()
}

func (m *Memory) dropLocked(userID string) {
	old, err := m.cache.Get(userPrefix + userID)
	if err != nil {
		return
	}
	m.cache.Delete(tokenPrefix + string(old))
	m.cache.Delete(userPrefix + userID)
}
