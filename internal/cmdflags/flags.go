// Package cmdflags binds config.Config fields to command line flags, every
// flag can also be set from the environment.
package cmdflags

import (
	"github.com/urfave/cli/v2"

	"github.com/andrebq/authdeck/internal/config"
)

func Realm(out *config.Realm, file *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-type",
			Usage:       "Authentication strategy: basic_auth, session_auth or chain_auth",
			EnvVars:     []string{"AUTH_TYPE"},
			Value:       out.AuthType,
			Destination: &out.AuthType,
		},
		&cli.StringFlag{
			Name:        "session-name",
			Usage:       "Name of the cookie holding the session token",
			EnvVars:     []string{"SESSION_NAME"},
			Value:       out.SessionName,
			Destination: &out.SessionName,
		},
		&cli.StringFlag{
			Name:        "hasher",
			Usage:       "Password hasher for new accounts: bcrypt or argon2id (existing digests are always verified)",
			EnvVars:     []string{"AUTHDECK_HASHER"},
			Value:       out.Hasher,
			Destination: &out.Hasher,
		},
		&cli.StringSliceFlag{
			Name:    "exclude-path",
			Usage:   "Path which can be reached without authentication, repeat for more",
			EnvVars: []string{"AUTHDECK_EXCLUDED_PATHS"},
			Value:   cli.NewStringSlice(out.ExcludedPaths...),
		},
		&cli.StringFlag{
			Name:        "realm",
			Usage:       "Lua file returning the realm settings, its values take precedence over flags",
			EnvVars:     []string{"AUTHDECK_REALM"},
			Value:       *file,
			Destination: file,
		},
	}
}

// ApplyRealm copies the flags which cannot be bound to a destination.
func ApplyRealm(c *cli.Context, out *config.Realm) {
	if c.IsSet("exclude-path") {
		out.ExcludedPaths = c.StringSlice("exclude-path")
	}
}

func Directory(out *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "database",
			Usage:       "Directory backend: sqlite or postgres",
			EnvVars:     []string{"AUTHDECK_DB"},
			Value:       out.Database,
			Destination: &out.Database,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Aliases:     []string{"db"},
			Usage:       "Path to the sqlite database file",
			EnvVars:     []string{"AUTHDECK_DB_PATH"},
			Value:       out.SQLitePath,
			Destination: &out.SQLitePath,
		},
		&cli.StringFlag{
			Name:        "db-host",
			EnvVars:     []string{"AUTHDECK_DB_HOST"},
			Value:       out.Postgres.Host,
			Destination: &out.Postgres.Host,
		},
		&cli.IntFlag{
			Name:        "db-port",
			EnvVars:     []string{"AUTHDECK_DB_PORT"},
			Value:       out.Postgres.Port,
			Destination: &out.Postgres.Port,
		},
		&cli.StringFlag{
			Name:        "db-user",
			EnvVars:     []string{"AUTHDECK_DB_USERNAME"},
			Value:       out.Postgres.User,
			Destination: &out.Postgres.User,
		},
		&cli.StringFlag{
			Name:        "db-password-envvar",
			Usage:       "Name of the environment variable that holds the database password. The password itself should not be passed as an argument",
			Value:       out.PostgresPasswordEnv,
			Destination: &out.PostgresPasswordEnv,
		},
		&cli.StringFlag{
			Name:        "db-name",
			EnvVars:     []string{"AUTHDECK_DB_NAME"},
			Value:       out.Postgres.Name,
			Destination: &out.Postgres.Name,
		},
		&cli.StringFlag{
			Name:        "db-sslmode",
			EnvVars:     []string{"AUTHDECK_DB_SSLMODE"},
			Value:       out.Postgres.SSLMode,
			Destination: &out.Postgres.SSLMode,
		},
	}
}

func Sessions(out *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "session-store",
			Usage:       "Where session tokens live: record (user row), memory or redis",
			EnvVars:     []string{"AUTHDECK_SESSION_STORE"},
			Value:       out.SessionStore,
			Destination: &out.SessionStore,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			EnvVars:     []string{"REDIS_ADDR"},
			Value:       out.RedisAddr,
			Destination: &out.RedisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-prefix",
			EnvVars:     []string{"AUTHDECK_REDIS_PREFIX"},
			Value:       out.RedisPrefix,
			Destination: &out.RedisPrefix,
		},
	}
}

func Server(out *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "host",
			EnvVars:     []string{"API_HOST"},
			Value:       out.Host,
			Destination: &out.Host,
		},
		&cli.StringFlag{
			Name:        "port",
			EnvVars:     []string{"API_PORT"},
			Value:       out.Port,
			Destination: &out.Port,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Only send the session cookie over https",
			EnvVars:     []string{"AUTHDECK_SECURE_COOKIE"},
			Value:       out.SecureCookie,
			Destination: &out.SecureCookie,
		},
		&cli.StringFlag{
			Name:        "upstream",
			Usage:       "Base url of a service to protect, requests outside the account api are forwarded to it",
			EnvVars:     []string{"AUTHDECK_UPSTREAM"},
			Value:       out.Upstream,
			Destination: &out.Upstream,
		},
	}
}

func Log(out *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			EnvVars:     []string{"AUTHDECK_LOG_LEVEL"},
			Value:       out.LogLevel,
			Destination: &out.LogLevel,
		},
		&cli.BoolFlag{
			Name:        "pretty-log",
			EnvVars:     []string{"AUTHDECK_PRETTY_LOG"},
			Value:       out.PrettyLog,
			Destination: &out.PrettyLog,
		},
	}
}
