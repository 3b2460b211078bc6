package directory

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresAddDuplicate(t *testing.T) {
	d, mock := newPostgresWithMock(t)
	q := `(?s)^insert into users\(user_id, email, hashed_password, created_at\) values \(\$1, \$2, \$3, \$4\)$`
	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "bob@example.com", []byte("digest"), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uidx_users_email"})

	_, err := d.Add(context.Background(), "bob@example.com", []byte("digest"))
	assert.True(t, errors.Is(err, ErrAlreadyExists), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAddOtherError(t *testing.T) {
	d, mock := newPostgresWithMock(t)
	mock.ExpectExec(`insert into users`).WillReturnError(errors.New("db down"))

	_, err := d.Add(context.Background(), "bob@example.com", []byte("digest"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAlreadyExists))
	assert.Regexp(t, regexp.MustCompile(`unable to add user.*db down`), err.Error())
}

func TestPostgresFindBy(t *testing.T) {
	d, mock := newPostgresWithMock(t)
	now := time.Now()
	q := `(?s)^select user_id, email, hashed_password, session_id, created_at\s+from users where email = \$1$`
	mock.ExpectQuery(q).WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "hashed_password", "session_id", "created_at"}).
			AddRow("u-1", "bob@example.com", []byte("digest"), "tk", now))
	mock.ExpectQuery(`from users where user_id = \$1`).WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "hashed_password", "session_id", "created_at"}))

	u, err := d.FindBy(context.Background(), ByEmail("bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, u.HasSession("tk"))

	_, err = d.FindBy(context.Background(), ByID("u-2"))
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate(t *testing.T) {
	d, mock := newPostgresWithMock(t)
	q := `^update users set session_id = \$1 where user_id = \$2$`
	mock.ExpectExec(q).WithArgs("tk", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(nil, "u-2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, d.Update(context.Background(), "u-1", SetSession("tk")))
	err := d.Update(context.Background(), "u-2", ClearSession())
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresOptions{Host: "db", User: "root", Password: "p@ss", Name: "users", SSLMode: "disable"}.DSN()
	assert.Equal(t, "postgres://root:p%40ss@db:5432/users?sslmode=disable", dsn)
}
