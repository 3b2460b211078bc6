package users

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrebq/authdeck/directory"
	"github.com/andrebq/authdeck/internal/logutil"
)

func TestRow(t *testing.T) {
	token := "tok"
	u := directory.User{
		Email:     "bob@example.com",
		SessionID: &token,
		CreatedAt: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	assert.Equal(t, "email=bob@example.com;session=true;created_at=2020-01-02T03:04:05Z;", Row(u))

	var buf bytes.Buffer
	log, err := logutil.New(logutil.Options{Out: &buf, Level: zerolog.InfoLevel.String()})
	require.NoError(t, err)
	log.Info().Msg(Row(u))
	assert.NotContains(t, buf.String(), "bob@example.com")
	assert.Contains(t, buf.String(), "email=***;")
}

func TestReadPassword(t *testing.T) {
	p, err := readPassword(strings.NewReader("  s3cret \nignored"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", p)

	_, err = readPassword(strings.NewReader(""))
	assert.Error(t, err)
	_, err = readPassword(strings.NewReader("   \n"))
	assert.Error(t, err)
}
