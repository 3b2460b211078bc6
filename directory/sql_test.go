package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDirectory(ctx context.Context, t *testing.T) (*SQL, func()) {
	dir, err := os.MkdirTemp("", "authdeck-tests")
	if err != nil {
		t.Fatal(err)
	}
	d, err := OpenSQLite(ctx, filepath.Join(dir, "users.db"))
	if err != nil {
		t.Fatal(err)
	}
	return d, func() {
		if err := d.Close(); err != nil {
			t.Log("unable to close directory", err)
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

func TestAddAndFind(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	u, err := d.Add(ctx, "bob@example.com", []byte("digest"))
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.Nil(t, u.SessionID)

	byEmail, err := d.FindBy(ctx, ByEmail("bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, []byte("digest"), byEmail.HashedPassword)
	assert.True(t, u.CreatedAt.Equal(byEmail.CreatedAt))

	byID, err := d.FindBy(ctx, ByID(u.ID))
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", byID.Email)

	_, err = d.FindBy(ctx, ByEmail("Bob@example.com"))
	assert.True(t, errors.Is(err, ErrNotFound), "emails are case-sensitive")
	_, err = d.FindBy(ctx, ByEmail(""))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAddDuplicate(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	first, err := d.Add(ctx, "bob@example.com", []byte("first"))
	require.NoError(t, err)
	_, err = d.Add(ctx, "bob@example.com", []byte("second"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Error should be %v got %v", ErrAlreadyExists, err)
	}

	stored, err := d.FindBy(ctx, ByEmail("bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, []byte("first"), stored.HashedPassword)

	_, err = d.Add(ctx, "", []byte("x"))
	assert.True(t, errors.Is(err, ErrInvalidUser))
	_, err = d.Add(ctx, "x@example.com", nil)
	assert.True(t, errors.Is(err, ErrInvalidUser))
}

func TestUpdateSession(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	u, err := d.Add(ctx, "bob@example.com", []byte("digest"))
	require.NoError(t, err)

	require.NoError(t, d.Update(ctx, u.ID, SetSession("token-1")))
	found, err := d.FindBy(ctx, BySession("token-1"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.HasSession("token-1"))

	require.NoError(t, d.Update(ctx, u.ID, SetSession("token-2")))
	_, err = d.FindBy(ctx, BySession("token-1"))
	assert.True(t, errors.Is(err, ErrNotFound), "old token must be replaced")

	require.NoError(t, d.Update(ctx, u.ID, ClearSession()))
	require.NoError(t, d.Update(ctx, u.ID, ClearSession()))
	found, err = d.FindBy(ctx, ByID(u.ID))
	require.NoError(t, err)
	assert.Nil(t, found.SessionID)

	err = d.Update(ctx, "missing", ClearSession())
	assert.True(t, errors.Is(err, ErrNotFound))
	err = d.Update(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	d, cleanup := tempDirectory(ctx, t)
	defer cleanup()

	users, err := d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := d.Add(ctx, email, []byte("digest"))
		require.NoError(t, err)
	}
	users, err = d.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestReopenKeepsUsers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "users.db")
	d, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = d.Add(ctx, "bob@example.com", []byte("digest"))
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer d.Close()
	_, err = d.FindBy(ctx, ByEmail("bob@example.com"))
	require.NoError(t, err)
}
