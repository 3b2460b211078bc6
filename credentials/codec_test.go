package credentials

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEncoded(t *testing.T) {
	type testCase struct {
		header  string
		encoded string
		ok      bool
	}
	for _, tc := range []testCase{
		{"Basic Zm9vOmJhcg==", "Zm9vOmJhcg==", true},
		{"Basic ", "", true},
		{"Bearer xyz", "", false},
		{"basic Zm9vOmJhcg==", "", false},
		{"Basic\tZm9vOmJhcg==", "", false},
		{"BasicZm9v", "", false},
		{"", "", false},
		{"Basic  two-spaces", " two-spaces", true},
	} {
		encoded, ok := ExtractEncoded(tc.header)
		if ok != tc.ok || encoded != tc.encoded {
			t.Errorf("ExtractEncoded(%q) should return (%q, %v) got (%q, %v)", tc.header, tc.encoded, tc.ok, encoded, ok)
		}
	}
}

func TestDecode(t *testing.T) {
	plain, ok := Decode(base64.StdEncoding.EncodeToString([]byte("a@b.com:pw")))
	require.True(t, ok)
	assert.Equal(t, "a@b.com:pw", plain)

	_, ok = Decode("not base64!!")
	assert.False(t, ok)

	_, ok = Decode(base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}))
	assert.False(t, ok, "invalid utf-8 must be rejected")
}

func TestSplit(t *testing.T) {
	id, secret, ok := Split("user:pa:ss")
	require.True(t, ok)
	assert.Equal(t, "user", id)
	assert.Equal(t, "pa:ss", secret)

	id, secret, ok = Split(":")
	require.True(t, ok)
	assert.Empty(t, id)
	assert.Empty(t, secret)

	_, _, ok = Split("no-colon")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	header := "Basic " + base64.StdEncoding.EncodeToString([]byte("a@b.com:pw"))
	encoded, ok := ExtractEncoded(header)
	require.True(t, ok)
	plain, ok := Decode(encoded)
	require.True(t, ok)
	id, secret, ok := Split(plain)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", id)
	assert.Equal(t, "pw", secret)

	assert.Equal(t, header, Encode("a@b.com", "pw"))
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := HeaderValue(req)
	assert.False(t, ok, "missing header")
	_, _, ok = FromRequest(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", Encode("bob", "secret:with:colons"))
	id, secret, ok := FromRequest(req)
	require.True(t, ok)
	assert.Equal(t, "bob", id)
	assert.Equal(t, "secret:with:colons", secret)

	_, _, ok = FromRequest(nil)
	assert.False(t, ok)
}
