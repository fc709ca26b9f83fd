// Package server serves the generated site for local preview.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/xerrors"
)

// Options configures the preview server.
type Options struct {
	Port      int
	OutputDir string
	// Registry enables /metrics when non-nil.
	Registry *prom.Registry
	Logger   *slog.Logger
}

// Server is the local preview HTTP server: static files from the output
// directory, SSE livereload, and optionally Prometheus metrics.
type Server struct {
	hub    *LiveReloadHub
	http   *http.Server
	logger *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hub := NewLiveReloadHub()

	mux := http.NewServeMux()
	mux.Handle("/livereload", hub)
	mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, LiveReloadScript)
	})
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", http.FileServer(http.Dir(opts.OutputDir)))

	return &Server{
		hub: hub,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Hub exposes the livereload hub for build-completion broadcasts.
func (s *Server) Hub() *LiveReloadHub {
	return s.hub
}

// Ready is closed once the listener is bound. Callers sequencing
// server-start notifications should wait on it before announcing the server.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Run serves until ctx is canceled, then shuts down gracefully. The listener
// is bound synchronously so Ready closes only when connections are accepted.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return xerrors.Wrap(err, xerrors.CategoryServer, xerrors.SeverityFatal,
			"bind preview listener").WithContext("addr", s.http.Addr)
	}
	s.readyOnce.Do(func() { close(s.ready) })

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Preview server listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return xerrors.Wrap(err, xerrors.CategoryServer, xerrors.SeverityFatal, "preview server")
		}
		return nil
	case <-ctx.Done():
	}

	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Preview server shutdown", logfields.Error(err))
	}
	return nil
}
