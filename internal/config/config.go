// Package config holds the runtime settings of authdeck.
package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/andrebq/authdeck/api"
	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/gate"
	"github.com/andrebq/authdeck/password"
)

const (
	BasicAuth   = "basic_auth"
	SessionAuth = "session_auth"
	// ChainAuth accepts a session cookie or basic credentials.
	ChainAuth = "chain_auth"

	SQLite   = "sqlite"
	Postgres = "postgres"

	MemoryStore = "memory"
	RecordStore = "record"
	RedisStore  = "redis"
)

type (
	// Realm controls who can reach what, it can be loaded from a Lua file.
	Realm struct {
		ExcludedPaths []string
		AuthType      string
		SessionName   string
		Hasher        string
	}

	Config struct {
		Host string
		Port string

		Realm     Realm
		RealmFile string

		Database   string
		SQLitePath string
		Postgres   directory.PostgresOptions
		// PostgresPasswordEnv names the environment variable holding the
		// database password.
		PostgresPasswordEnv string

		SessionStore string
		RedisAddr    string
		RedisPrefix  string

		SecureCookie bool
		// Upstream, when set, receives every non account request that
		// passes the realm.
		Upstream string

		LogLevel  string
		PrettyLog bool
	}

	InvalidSetting struct {
		Name  string
		Value string
	}
)

func (i InvalidSetting) Error() string {
	return fmt.Sprintf("config: invalid value %q for %v", i.Value, i.Name)
}

// Default returns a config which serves a local sqlite directory with
// cookie sessions kept in the user record.
func Default() Config {
	return Config{
		Host: "localhost",
		Port: "5000",
		Realm: Realm{
			ExcludedPaths: append([]string(nil), api.PublicPaths...),
			AuthType:      SessionAuth,
			SessionName:   gate.DefaultCookieName,
			Hasher:        password.BcryptName,
		},
		Database:            SQLite,
		SQLitePath:          "authdeck.db",
		Postgres:            directory.PostgresOptions{Host: "localhost", Port: 5432, Name: "authdeck", SSLMode: "disable"},
		PostgresPasswordEnv: "AUTHDECK_DB_PASSWORD",
		SessionStore:        RecordStore,
		RedisAddr:           "localhost:6379",
		RedisPrefix:         "authdeck",
		LogLevel:            "info",
	}
}

// Bind returns the address the http server listens on.
func (c Config) Bind() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Merge overwrites the fields of r which are set in other.
func (r Realm) Merge(other Realm) Realm {
	if other.ExcludedPaths != nil {
		r.ExcludedPaths = append([]string(nil), other.ExcludedPaths...)
	}
	if other.AuthType != "" {
		r.AuthType = other.AuthType
	}
	if other.SessionName != "" {
		r.SessionName = other.SessionName
	}
	if other.Hasher != "" {
		r.Hasher = other.Hasher
	}
	return r
}

func (r Realm) Validate() error {
	switch r.AuthType {
	case BasicAuth, SessionAuth, ChainAuth:
	default:
		return InvalidSetting{Name: "auth type", Value: r.AuthType}
	}
	if strings.TrimSpace(r.SessionName) == "" {
		return InvalidSetting{Name: "session name", Value: r.SessionName}
	}
	switch r.Hasher {
	case "", password.BcryptName, password.Argon2idName:
	default:
		return InvalidSetting{Name: "hasher", Value: r.Hasher}
	}
	for _, p := range r.ExcludedPaths {
		if !strings.HasPrefix(p, "/") {
			return InvalidSetting{Name: "excluded path", Value: p}
		}
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Realm.Validate(); err != nil {
		return err
	}
	switch c.Database {
	case SQLite:
		if c.SQLitePath == "" {
			return InvalidSetting{Name: "sqlite path", Value: c.SQLitePath}
		}
	case Postgres:
	default:
		return InvalidSetting{Name: "database", Value: c.Database}
	}
	switch c.SessionStore {
	case MemoryStore, RecordStore:
	case RedisStore:
		if c.RedisAddr == "" {
			return InvalidSetting{Name: "redis address", Value: c.RedisAddr}
		}
	default:
		return InvalidSetting{Name: "session store", Value: c.SessionStore}
	}
	return nil
}
