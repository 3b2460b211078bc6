// Package httpserver runs an http.Handler until its context is cancelled.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/andrebq/authdeck/internal/logutil"
)

type (
	Timeouts struct {
		Read       time.Duration
		ReadHeader time.Duration
		Write      time.Duration
		Idle       time.Duration
		Shutdown   time.Duration
	}
)

// DefaultTimeouts keep slow clients from holding connections forever.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Read:       time.Second * 30,
		ReadHeader: time.Second * 10,
		Write:      time.Second * 30,
		Idle:       time.Minute * 2,
		Shutdown:   time.Second * 30,
	}
}

// Serve listens on bind and blocks until ctx is done or the server fails.
func Serve(ctx context.Context, bind string, handler http.Handler) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, handler, DefaultTimeouts())
}

// ServeListener works like Serve for an existing listener, which is closed
// when the function returns.
func ServeListener(ctx context.Context, ln net.Listener, handler http.Handler, t Timeouts) error {
	log := logutil.GetOrDefault(ctx).With().Str("server.addr", ln.Addr().String()).Logger()
	server := http.Server{
		Handler:           handler,
		Addr:              ln.Addr().String(),
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		ReadHeaderTimeout: t.ReadHeader,
		IdleTimeout:       t.Idle,
		BaseContext: func(net.Listener) context.Context {
			return logutil.WithLogger(context.Background(), log)
		},
	}
	firstErr := make(chan error, 1)
	go func() {
		defer close(firstErr)
		log.Info().Msg("Starting HTTP server")
		err := server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			log.Info().Msg("Server closed")
			// shutdown called,
			// ignore the error
			return
		}
		firstErr <- err
	}()
	select {
	case err := <-firstErr:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Initiating shutdown process")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), t.Shutdown)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	<-firstErr
	if err != nil {
		return err
	}
	log.Info().Msg("Shutdown completed")
	return nil
}
