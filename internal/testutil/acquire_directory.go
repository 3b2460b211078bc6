package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/password"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}

	// Account is a user registered by AcquirePopulatedDirectory together
	// with its plain text password.
	Account struct {
		User     directory.User
		Password string
	}
)

// FastHasher is a bcrypt hasher with the minimum cost, tests do not need
// the real work factor.
func FastHasher() password.Hasher {
	return password.Mixed{Default: password.NewBcrypt(4)}
}

func AcquireDirectory(ctx context.Context, t TestLog) (*directory.SQL, func()) {
	dir, err := os.MkdirTemp("", "authdeck-tests")
	if err != nil {
		t.Fatal(err)
	}
	d, err := directory.OpenSQLite(ctx, filepath.Join(dir, "users.db"))
	if err != nil {
		t.Fatal(err)
	}
	return d, func() {
		err := d.Close()
		if err != nil {
			t.Log("unable to close directory", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquirePopulatedDirectory registers one account per email, the password
// of each account is "pw-" followed by the email.
func AcquirePopulatedDirectory(ctx context.Context, t TestLog, emails ...string) (*directory.SQL, map[string]Account, func()) {
	d, cleanup := AcquireDirectory(ctx, t)
	hasher := FastHasher()
	accounts := make(map[string]Account, len(emails))
	for _, e := range emails {
		pw := "pw-" + e
		digest, err := hasher.Hash(pw)
		if err != nil {
			cleanup()
			t.Fatal(err)
		}
		u, err := d.Add(ctx, e, digest)
		if err != nil {
			cleanup()
			t.Fatal(err)
		}
		accounts[e] = Account{User: u, Password: pw}
	}
	return d, accounts, cleanup
}
