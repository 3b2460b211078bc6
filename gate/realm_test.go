package gate

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/andrebq/authdeck/credentials"
	"github.com/andrebq/authdeck/internal/testutil"
)

func TestProtect(t *testing.T) {
	ctx := context.Background()
	users, accounts, cleanup := testutil.AcquirePopulatedDirectory(ctx, t, "bob@example.com")
	defer cleanup()
	bob := accounts["bob@example.com"]

	realm := NewRealm(Basic{
		Paths:  Paths{"/api/v1/status/"},
		Users:  users,
		Hasher: testutil.FastHasher(),
	})
	var count uint32
	protected := realm.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint32(&count, 1)
		if u, ok := UserFrom(r.Context()); ok {
			w.Write([]byte(u.Email))
			return
		}
		http.Error(w, "OK", http.StatusOK)
	}))

	apitest.Handler(protected).Get("/api/v1/users").Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.error`, "Unauthorized")).
		End()
	apitest.Handler(protected).Get("/api/v1/users").
		Header("Authorization", "Basic not-base64").
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal(`$.error`, "Forbidden")).
		End()
	apitest.Handler(protected).Get("/api/v1/users").
		Header("Authorization", credentials.Encode("bob@example.com", "wrong")).
		Expect(t).
		Status(http.StatusForbidden).
		End()
	apitest.Handler(protected).Get("/api/v1/users").
		Header("Authorization", credentials.Encode("bob@example.com", bob.Password)).
		Expect(t).
		Status(http.StatusOK).
		Body("bob@example.com").
		End()
	apitest.Handler(protected).Get("/api/v1/status").Expect(t).Status(http.StatusOK).End()

	if count != 2 {
		t.Fatal("Protected endpoint should have been called only twice, got", count)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, s := range map[Outcome]string{
		Skipped:         "skipped",
		Authenticated:   "authenticated",
		Unauthenticated: "unauthenticated",
		Forbidden:       "forbidden",
		Outcome(42):     "unknown",
	} {
		if o.String() != s {
			t.Errorf("Outcome(%d).String() should be %v got %v", o, s, o.String())
		}
	}
}
