// Package bootstrap turns a config.Config into running components.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/andrebq/authdeck/account"
	"github.com/andrebq/authdeck/api"
	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/gate"
	"github.com/andrebq/authdeck/internal/authproxy"
	"github.com/andrebq/authdeck/internal/config"
	"github.com/andrebq/authdeck/internal/logutil"
	"github.com/andrebq/authdeck/password"
	"github.com/andrebq/authdeck/session"
)

type (
	// Env holds every component built from a config, Close releases them.
	Env struct {
		Config   config.Config
		Users    directory.Directory
		Sessions session.Store
		Hasher   password.Hasher
		Accounts *account.Service
		Realm    *gate.Realm

		closers []func() error
	}
)

// OpenDirectory connects to the user directory selected by cfg and applies
// pending migrations.
func OpenDirectory(ctx context.Context, cfg config.Config) (*directory.SQL, error) {
	switch cfg.Database {
	case config.SQLite:
		return directory.OpenSQLite(ctx, cfg.SQLitePath)
	case config.Postgres:
		opts := cfg.Postgres
		if cfg.PostgresPasswordEnv != "" {
			opts.Password = os.Getenv(cfg.PostgresPasswordEnv)
		}
		return directory.OpenPostgres(ctx, opts.DSN())
	}
	return nil, config.InvalidSetting{Name: "database", Value: cfg.Database}
}

// Open builds the components described by cfg. The returned Env must be
// closed even if the caller stops using it early.
func Open(ctx context.Context, cfg config.Config) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logutil.GetOrDefault(ctx)
	env := &Env{Config: cfg}
	hasher, err := password.New(cfg.Realm.Hasher)
	if err != nil {
		return nil, err
	}
	env.Hasher = hasher

	users, err := OpenDirectory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	env.Users = users
	env.closers = append(env.closers, users.Close)

	switch cfg.SessionStore {
	case config.MemoryStore:
		mem, err := session.NewMemory(0)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Sessions = mem
		env.closers = append(env.closers, mem.Close)
	case config.RecordStore:
		env.Sessions = session.NewRecord(users)
	case config.RedisStore:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		env.closers = append(env.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			env.Close()
			return nil, fmt.Errorf("bootstrap: unable to reach redis at %v, cause %w", cfg.RedisAddr, err)
		}
		env.Sessions = session.NewRedis(rdb, cfg.RedisPrefix)
	}

	strategy, err := NewStrategy(cfg.Realm, users, env.Sessions, hasher)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.Realm = gate.NewRealm(strategy)
	env.Accounts = account.New(users, hasher, env.Sessions)
	log.Info().
		Str("database", cfg.Database).
		Str("sessionStore", cfg.SessionStore).
		Str("authType", cfg.Realm.AuthType).
		Msg("Environment ready")
	return env, nil
}

// NewStrategy returns the gate.Strategy named by realm.AuthType.
func NewStrategy(realm config.Realm, users directory.Directory, sessions session.Store, hasher password.Hasher) (gate.Strategy, error) {
	paths := gate.Paths(realm.ExcludedPaths)
	basic := gate.Basic{Paths: paths, Users: users, Hasher: hasher}
	cookie := gate.Session{Paths: paths, Users: users, Sessions: sessions, CookieName: realm.SessionName}
	switch realm.AuthType {
	case config.BasicAuth:
		return basic, nil
	case config.SessionAuth:
		return cookie, nil
	case config.ChainAuth:
		return gate.Chain{Paths: paths, Strategies: []gate.Strategy{cookie, basic}}, nil
	}
	return nil, config.InvalidSetting{Name: "auth type", Value: realm.AuthType}
}

// Handler returns the http surface: the account api, optionally in front of
// the configured upstream.
func (e *Env) Handler(ctx context.Context) (http.Handler, error) {
	accounts := api.AsHandler(ctx, e.Accounts, e.Realm, api.Options{
		CookieName:   e.Config.Realm.SessionName,
		SecureCookie: e.Config.SecureCookie,
	})
	if e.Config.Upstream == "" {
		return accounts, nil
	}
	upstream, err := url.Parse(e.Config.Upstream)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: invalid upstream %v, cause %w", e.Config.Upstream, err)
	}
	return authproxy.AsHandler(ctx, accounts, e.Realm, upstream, e.Config.Realm.SessionName)
}

func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
