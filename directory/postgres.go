package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pgUniqueViolation = "23505"
)

type (
	// PostgresOptions are the pieces of a connection string, usually read
	// from the environment.
	PostgresOptions struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}
)

var postgresDialect = dialect{
	name:     "postgres",
	numbered: true,
	uniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
	},
}

// DSN renders the options as a postgres URL.
func (o PostgresOptions) DSN() string {
	port := o.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(o.Host, strconv.Itoa(port)),
		Path:   "/" + o.Name,
	}
	if o.Password != "" {
		u.User = url.UserPassword(o.User, o.Password)
	} else if o.User != "" {
		u.User = url.User(o.User)
	}
	if o.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{o.SSLMode}}.Encode()
	}
	return u.String()
}

// OpenPostgres connects through the pgx driver and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("directory: unable to open postgres connection, cause %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("directory: unable to ping postgres, cause %w", err)
	}
	if err = migrate(ctx, db, "postgres", "migrations/postgres"); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgres(db), nil
}

// NewPostgres wraps an already migrated connection.
func NewPostgres(db *sql.DB) *SQL {
	return &SQL{db: db, dialect: postgresDialect}
}
