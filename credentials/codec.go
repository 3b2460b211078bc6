// Package credentials decodes the credentials carried by an
// `Authorization: Basic` header.
//
// Every function here is pure and none of them return errors: input that
// cannot be decoded is reported through the boolean result and callers are
// expected to treat it as "no credentials".
package credentials

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	// Scheme is the literal prefix (case-sensitive, single space) of a basic
	// authorization header.
	Scheme = "Basic "

	HeaderName = "Authorization"
)

// HeaderValue returns the Authorization header of r. The boolean is false
// when the request does not carry the header at all.
func HeaderValue(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	values, ok := r.Header[http.CanonicalHeaderKey(HeaderName)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ExtractEncoded returns the part of header after the Basic scheme prefix,
// without decoding it.
func ExtractEncoded(header string) (string, bool) {
	if !strings.HasPrefix(header, Scheme) {
		return "", false
	}
	return header[len(Scheme):], true
}

// Decode base64-decodes encoded and returns it as text, provided the
// decoded bytes are valid UTF-8.
func Decode(encoded string) (string, bool) {
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(buf) {
		return "", false
	}
	return string(buf), true
}

// Split breaks plaintext on the first colon. Any other colon is kept as part
// of the secret.
func Split(plaintext string) (id, secret string, ok bool) {
	idx := strings.IndexByte(plaintext, ':')
	if idx < 0 {
		return "", "", false
	}
	return plaintext[:idx], plaintext[idx+1:], true
}

// FromHeader chains ExtractEncoded, Decode and Split.
func FromHeader(header string) (id, secret string, ok bool) {
	encoded, ok := ExtractEncoded(header)
	if !ok {
		return "", "", false
	}
	plain, ok := Decode(encoded)
	if !ok {
		return "", "", false
	}
	return Split(plain)
}

// FromRequest reads the basic credentials of r.
func FromRequest(r *http.Request) (id, secret string, ok bool) {
	header, ok := HeaderValue(r)
	if !ok {
		return "", "", false
	}
	return FromHeader(header)
}

// Encode builds the header value for the given pair, mostly useful for
// clients and tests.
func Encode(id, secret string) string {
	return Scheme + base64.StdEncoding.EncodeToString([]byte(id+":"+secret))
}
