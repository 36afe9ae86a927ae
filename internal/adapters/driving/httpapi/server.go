// Package httpapi serves the search API and signed object URLs over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/mux"

	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Server exposes the search service and the object store over HTTP.
type Server struct {
	mu       sync.Mutex
	addr     string
	search   driving.SearchService
	store    driven.ObjectStore
	signer   driven.URLSigner
	clock    clock.Clock
	metrics  http.Handler
	mcp      http.Handler
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080". Port 0 picks a free port.
	Addr string

	// Metrics is served at /metrics when set.
	Metrics http.Handler

	// MCP is served at /mcp when set.
	MCP http.Handler

	// Clock checks URL expiry. Nil uses the wall clock.
	Clock clock.Clock
}

// NewServer creates a server. It does not listen until Start is called.
func NewServer(
	search driving.SearchService,
	store driven.ObjectStore,
	signer driven.URLSigner,
	opts Options,
) *Server {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Server{
		addr:    opts.Addr,
		search:  search,
		store:   store,
		signer:  signer,
		clock:   clk,
		metrics: opts.Metrics,
		mcp:     opts.MCP,
		errChan: make(chan error, 1),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/objects/{name:.+}", s.handleObject).Methods(http.MethodGet, http.MethodHead)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	if s.mcp != nil {
		r.Handle("/mcp", s.mcp)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil // Already running
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.addr = listener.Addr().String()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("http: listening on %s", s.addr)
	return nil
}

// Wait blocks until ctx is cancelled or the server fails.
func (s *Server) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-s.errChan:
		return err
	}
}

// Stop shuts the server down, letting in-flight requests finish.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// statusRecorder captures the response status for access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers such as /mcp push events through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestID tags each request with an ID, echoes it back and logs the request.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context(), r.Header.Get(RequestIDHeader))
		w.Header().Set(RequestIDHeader, logger.RequestID(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		l := logger.Ctx(ctx)
		l.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
