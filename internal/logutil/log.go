package logutil

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andrebq/authdeck/redact"
)

type (
	key byte

	Options struct {
		Level  string
		Pretty bool
		Out    io.Writer
	}

	gooseLogger struct {
		log zerolog.Logger
	}
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return log.Logger
	}
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// New builds the process logger. Personal data written as `field=value;`
// pairs is masked regardless of the output format.
func New(opts Options) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logutil: invalid log level %q, cause %w", opts.Level, err)
		}
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	r := redact.Default()
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, FormatMessage: r.ConsoleFormatter()}
	} else {
		out = redact.NewWriter(out, r)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// GooseLogger adapts logger to the interface expected by goose.
func GooseLogger(logger zerolog.Logger) gooseLogger {
	return gooseLogger{log: logger.With().Str("component", "migrations").Logger()}
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debug().Msgf(format, v...)
}

// Fatalf does not exit the process, failures are reported by goose as errors.
func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Error().Msgf(format, v...)
}
