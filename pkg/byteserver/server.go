package byteserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config configures a Server.
type Config struct {
	// Port is the HTTP listen port. Default: 8081.
	Port int

	// ReadTimeout/WriteTimeout bound request handling. Defaults: 10s/10s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8081
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server is the HTTP server exposing buffer bytes by URI. It never reads
// the NOODLES scene registry; the core only stores URIs this server has
// handed back from Put.
type Server struct {
	http         *http.Server
	store        Store
	log          *slog.Logger
	shutdownOnce sync.Once
}

// NewServer builds a Server serving store's contents under /buffers/{key}.
func NewServer(cfg Config, store Store) *Server {
	cfg.applyDefaults()
	log := cfg.Logger.With("component", "byteserver")

	s := &Server{store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.WriteTimeout))
	r.Get("/health", s.handleHealth)
	r.Get("/buffers/{key}", s.handleGetBuffer)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the underlying http.Handler, primarily for tests that
// want to exercise routes without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleGetBuffer serves the bytes for a URI previously issued by Put:
// a GET returns the exact bytes used to compute the buffer's declared
// size.
func (s *Server) handleGetBuffer(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if rcs, ok := s.store.(ReadCloserStore); ok {
		rc, size, err := rcs.GetReader(r.Context(), key)
		if err != nil {
			s.writeStoreError(w, key, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		if size > 0 {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		}
		if _, err := io.Copy(w, rc); err != nil {
			s.log.Warn("byteserver: write response body failed", "key", key, "error", err)
		}
		return
	}

	data, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.writeStoreError(w, key, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (s *Server) writeStoreError(w http.ResponseWriter, key string, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.log.Error("byteserver: store error", "key", key, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("byteserver listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts the HTTP server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.http.Shutdown(ctx)
	})
	return err
}
