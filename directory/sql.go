package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrebq/authdeck/internal/logutil"
)

type (
	// SQL is a Directory backed by a relational database. Email uniqueness is
	// enforced by the schema, not by the application.
	SQL struct {
		db      *sql.DB
		dialect dialect
	}

	dialect struct {
		name string
		// numbered placeholders ($1, $2...) instead of ?
		numbered        bool
		uniqueViolation func(error) bool
	}
)

var _ Directory = (*SQL)(nil)

func (s *SQL) FindBy(ctx context.Context, key Key) (User, error) {
	if key.value == "" {
		return User{}, ErrNotFound
	}
	switch key.column() {
	case "user_id", "email", "session_id":
	default:
		return User{}, fmt.Errorf("directory: invalid lookup key %v", key.column())
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`select user_id, email, hashed_password, session_id, created_at
		from users where `+key.column()+` = ?`), key.value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	} else if err != nil {
		return User{}, fmt.Errorf("directory: unable to find user by %v, cause %w", key.column(), err)
	}
	return u, nil
}

func (s *SQL) Add(ctx context.Context, email string, hashedPassword []byte) (User, error) {
	if len(email) == 0 || len(hashedPassword) == 0 {
		return User{}, ErrInvalidUser
	}
	u := User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`insert into users(user_id, email, hashed_password, created_at) values (?, ?, ?, ?)`),
		u.ID, u.Email, u.HashedPassword, u.CreatedAt)
	if err != nil && s.dialect.uniqueViolation(err) {
		return User{}, ErrAlreadyExists
	} else if err != nil {
		return User{}, fmt.Errorf("directory: unable to add user, cause %w", err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Debug().Str("user_id", u.ID).Msg("User added")
	return u, nil
}

func (s *SQL) Update(ctx context.Context, id string, changes ...Change) error {
	if id == "" {
		return ErrNotFound
	}
	if len(changes) == 0 {
		_, err := s.FindBy(ctx, ByID(id))
		return err
	}
	// session is the only mutable field, so the last change wins
	last := changes[len(changes)-1]
	var session sql.NullString
	if last.sessionID != nil {
		session = sql.NullString{String: *last.sessionID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`update users set session_id = ? where user_id = ?`), session, id)
	if err != nil {
		return fmt.Errorf("directory: unable to update user %v, cause %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("directory: unable to check update of user %v, cause %w", id, err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `select user_id, email, hashed_password, session_id, created_at
		from users order by created_at asc, email asc`)
	if err != nil {
		return nil, fmt.Errorf("directory: unable to list users, cause %w", err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: unable to scan user, cause %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (User, error) {
	var u User
	var session sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &session, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	if session.Valid {
		token := session.String
		u.SessionID = &token
	}
	return u, nil
}
