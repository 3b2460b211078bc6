package authproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/steinfletcher/apitest"

	"github.com/andrebq/authdeck/credentials"
	"github.com/andrebq/authdeck/gate"
	"github.com/andrebq/authdeck/internal/testutil"
)

func TestRouter(t *testing.T) {
	ctx := context.Background()
	users, accounts, cleanup := testutil.AcquirePopulatedDirectory(ctx, t, "bob@example.com")
	defer cleanup()
	bob := accounts["bob@example.com"]

	var upstreamCount int
	var seenID, seenEmail, seenAuth string
	var seenCookies []*http.Cookie
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCount++
		seenID = r.Header.Get(UserIDHeader)
		seenEmail = r.Header.Get(UserEmailHeader)
		seenAuth = r.Header.Get("Authorization")
		seenCookies = r.Cookies()
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	var accountCount int
	accountHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountCount++
		w.WriteHeader(http.StatusOK)
	})

	realm := gate.NewRealm(gate.Basic{
		Paths:  gate.Paths{"/public"},
		Users:  users,
		Hasher: testutil.FastHasher(),
	})
	upstreamURL, _ := url.Parse(upstream.URL)
	handler, err := AsHandler(ctx, accountHandler, realm, upstreamURL, "")
	if err != nil {
		t.Fatal(err)
	}

	apitest.Handler(handler).Post("/users").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/api/v1/status").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/public").
		Header(UserIDHeader, "spoofed").
		Expect(t).Status(http.StatusOK).End()
	if seenID != "" {
		t.Fatal("Client supplied identity headers must not reach the upstream, got", seenID)
	}
	apitest.Handler(handler).Get("/private").Expect(t).Status(http.StatusUnauthorized).End()
	apitest.Handler(handler).Get("/private").
		Header("Authorization", credentials.Encode("bob@example.com", "wrong")).
		Expect(t).Status(http.StatusForbidden).End()
	apitest.Handler(handler).Get("/private").
		Header("Authorization", credentials.Encode("bob@example.com", bob.Password)).
		Cookie(gate.DefaultCookieName, "live-token").
		Cookie("theme", "dark").
		Expect(t).Status(http.StatusOK).End()
	if seenAuth != "" {
		t.Fatal("Authorization header must not reach the upstream, got", seenAuth)
	}
	if len(seenCookies) != 1 || seenCookies[0].Name != "theme" {
		t.Fatalf("Only unrelated cookies should reach the upstream, got %v", seenCookies)
	}

	if accountCount != 2 {
		t.Fatal("Invalid account count: ", accountCount)
	}
	if upstreamCount != 2 {
		t.Fatal("Invalid upstream count: ", upstreamCount)
	}
	if seenID != bob.User.ID || seenEmail != bob.User.Email {
		t.Fatalf("Upstream should receive the authenticated user, got %v %v", seenID, seenEmail)
	}
}

func TestInvalidUpstream(t *testing.T) {
	relative, _ := url.Parse("/just/a/path")
	_, err := AsHandler(context.Background(), http.NotFoundHandler(), gate.NewRealm(gate.Chain{}), relative, "")
	if !errors.Is(err, InvalidUpstream{URL: relative.String()}) {
		t.Fatalf("Unexpected error for invalid upstream: %v", err)
	}
}
