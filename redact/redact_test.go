package redact

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	type testCase struct {
		fields    []string
		message   string
		separator string
		expected  string
	}
	for _, tc := range []testCase{
		{
			fields:    []string{"password", "date_of_birth"},
			message:   "name=egg;email=eggmin@eggsample.com;password=eggcellent;date_of_birth=12/12/1986;",
			separator: ";",
			expected:  "name=egg;email=eggmin@eggsample.com;password=xxx;date_of_birth=xxx;",
		},
		{
			fields:    []string{"password", "date_of_birth"},
			message:   "name=bob|email=bob@dylan.com|password=bobbycool|date_of_birth=03/04/1993|",
			separator: "|",
			expected:  "name=bob|email=bob@dylan.com|password=xxx|date_of_birth=xxx|",
		},
		{
			fields:    []string{"password"},
			message:   "password=unterminated",
			separator: ";",
			expected:  "password=unterminated",
		},
		{
			fields:    nil,
			message:   "password=secret;",
			separator: ";",
			expected:  "password=secret;",
		},
	} {
		actual := Filter(tc.fields, "xxx", tc.message, tc.separator)
		if actual != tc.expected {
			t.Errorf("Filter(%v, %q) should return %q got %q", tc.fields, tc.message, tc.expected, actual)
		}
	}
}

func TestDefault(t *testing.T) {
	msg := "name=Bob;email=bob@example.com;phone=555;ssn=000;password=pw;ip=127.0.0.1;"
	assert.Equal(t, "name=***;email=***;phone=***;ssn=***;password=***;ip=127.0.0.1;", Default().Redact(msg))
}

func TestReplacementIsLiteral(t *testing.T) {
	assert.Equal(t, "password=$1;", Filter([]string{"password"}, "$1", "password=x;", ";"))
}

func TestWriterWithZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(NewWriter(&buf, Default()))
	log.Info().Msg("email=bob@example.com;last_login=today;")
	require.Contains(t, buf.String(), `email=***;last_login=today;`)
	assert.NotContains(t, buf.String(), "bob@example.com")
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(zerolog.ConsoleWriter{Out: &buf, NoColor: true, FormatMessage: Default().ConsoleFormatter()})
	log.Info().Msg("ssn=123-45-6789;")
	assert.Contains(t, buf.String(), "ssn=***;")
}
