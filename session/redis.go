package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type (
	// Redis keeps sessions in a redis server, shared by every replica.
	Redis struct {
		rdb    redis.UniversalClient
		prefix string
	}
)

const createSessionScript = `
local old = redis.call("GET", KEYS[2])
if old then
  redis.call("DEL", ARGV[3] .. old)
end
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
return 1
`

const destroySessionScript = `
local old = redis.call("GET", KEYS[1])
if old then
  redis.call("DEL", ARGV[1] .. old)
end
redis.call("DEL", KEYS[1])
return 1
`

var (
	createSessionLua  = redis.NewScript(createSessionScript)
	destroySessionLua = redis.NewScript(destroySessionScript)
)

var _ Store = (*Redis)(nil)

// NewRedis returns a store that keeps its keys under prefix.
func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "authdeck"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) tokenKeyPrefix() string { return r.prefix + ":token:" }
func (r *Redis) userKey(userID string) string { return r.prefix + ":user:" + userID }
func (r *Redis) tokenKey(token string) string { return r.tokenKeyPrefix() + token }

func (r *Redis) Create(ctx context.Context, userID string) (string, error) {
	if !ValidUserID(userID) {
		return "", ErrInvalidUser
	}
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	err = createSessionLua.Run(ctx, r.rdb,
		[]string{r.tokenKey(token), r.userKey(userID)},
		userID, token, r.tokenKeyPrefix()).Err()
	if err != nil {
		return "", fmt.Errorf("session: unable to save token, cause %w", err)
	}
	return token, nil
}

func (r *Redis) Lookup(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	uid, err := r.rdb.Get(ctx, r.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("session: unable to lookup token, cause %w", err)
	}
	return uid, true, nil
}

func (r *Redis) Destroy(ctx context.Context, userID string) error {
	if !ValidUserID(userID) {
		return nil
	}
	err := destroySessionLua.Run(ctx, r.rdb, []string{r.userKey(userID)}, r.tokenKeyPrefix()).Err()
	if err != nil {
		return fmt.Errorf("session: unable to destroy session, cause %w", err)
	}
	return nil
}
