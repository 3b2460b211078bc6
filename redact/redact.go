// Package redact masks personal data in log lines written as
// `field=value;` pairs.
package redact

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

const (
	// Token replaces the redacted values.
	Token = "***"
	// Separator is the default pair separator.
	Separator = ";"
)

// PIIFields are the fields considered personal data.
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

type (
	// Redactor is a compiled Filter, safe for concurrent use.
	Redactor struct {
		re          *regexp.Regexp
		replacement string
	}

	// Writer redacts everything written to it before passing it to Out.
	Writer struct {
		out      io.Writer
		redactor *Redactor
		mu       sync.Mutex
	}
)

// Filter replaces the value following `field=`, up to the next separator,
// with redaction. Field names and separators are kept.
func Filter(fields []string, redaction, message, separator string) string {
	return New(fields, redaction, separator).Redact(message)
}

// New compiles a Redactor for the given fields.
func New(fields []string, redaction, separator string) *Redactor {
	if len(fields) == 0 || separator == "" {
		return &Redactor{}
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	sep := regexp.QuoteMeta(separator)
	re := regexp.MustCompile(fmt.Sprintf(`(%v)=.*?%v`, strings.Join(quoted, "|"), sep))
	return &Redactor{
		re:          re,
		replacement: "${1}=" + strings.ReplaceAll(redaction, "$", "$$") + strings.ReplaceAll(separator, "$", "$$"),
	}
}

// Default masks PIIFields with Token and Separator.
func Default() *Redactor {
	return New(PIIFields, Token, Separator)
}

func (r *Redactor) Redact(message string) string {
	if r == nil || r.re == nil {
		return message
	}
	return r.re.ReplaceAllString(message, r.replacement)
}

// ConsoleFormatter can be used as zerolog.ConsoleWriter.FormatMessage.
func (r *Redactor) ConsoleFormatter() func(interface{}) string {
	return func(i interface{}) string {
		if i == nil {
			return ""
		}
		return r.Redact(fmt.Sprint(i))
	}
}

// NewWriter returns a writer that redacts each chunk written to it. Log
// writers emit whole lines per Write call, pairs split across calls are
// not detected.
func NewWriter(out io.Writer, r *Redactor) *Writer {
	return &Writer{out: out, redactor: r}
}

func (w *Writer) Write(p []byte) (int, error) {
	redacted := w.redactor.Redact(string(p))
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.Copy(w.out, bytes.NewBufferString(redacted))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
