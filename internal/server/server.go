// Package server exposes scans over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mutker/hwhealth/internal/errors"
	"codeberg.org/mutker/hwhealth/internal/history"
	"codeberg.org/mutker/hwhealth/internal/logger"
	"codeberg.org/mutker/hwhealth/internal/scan"
	"codeberg.org/mutker/hwhealth/internal/telemetry"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second

	defaultHistoryLimit = 10
	maxHistoryLimit     = 500
)

// Scanner runs one scan. *scan.Scanner satisfies it.
type Scanner interface {
	Run(ctx context.Context, domains []telemetry.Domain) scan.Outcome
}

type Server struct {
	scanner  Scanner
	recorder history.Recorder
	domains  func() []telemetry.Domain
	logger   logger.Logger
	http     *http.Server
}

type Option func(*Server)

func WithRecorder(r history.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithDomains sets the selection used when a request names no components.
// It is consulted per request.
func WithDomains(fn func() []telemetry.Domain) Option {
	return func(s *Server) {
		s.domains = fn
	}
}

func New(addr string, scanner Scanner, opts ...Option) *Server {
	s := &Server{
		scanner: scanner,
		domains: telemetry.AllDomains,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler with request logging and panic
// recovery applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/scan", s.handleScan).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	var h http.Handler = r
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return handlers.CustomLoggingHandler(nil, h, s.logRequest)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errFactory := errors.New()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.http.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errFactory.Wrap(ErrServe, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
