package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/marcus/isle/internal/serverdb"
)

// Server is the HTTP API server for isle-server.
type Server struct {
	config  Config
	http    *http.Server
	store   *serverdb.DB
	hub     *Hub
	metrics *Metrics
	cancel  context.CancelFunc
}

// NewServer creates a new Server with the given config and store.
func NewServer(cfg Config, store *serverdb.DB) *Server {
	s := &Server{
		config:  cfg,
		store:   store,
		hub:     NewHub(),
		metrics: NewMetrics(),
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	// Periodically prune old journal entries
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("prune panic", "panic", r)
			}
		}()
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.store.PruneChanges(s.config.ChangeRetention)
				if err != nil {
					slog.Error("prune changes", "err", err)
				} else if n > 0 {
					slog.Info("pruned old changes", "count", n)
				}
			}
		}
	}()

	return nil
}

// Shutdown gracefully stops the server and disconnects all stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

// Handler returns the full HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health & metrics
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metricz", s.handleMetrics)

	// Todos
	mux.HandleFunc("GET /v1/todos", s.handleListTodos)
	mux.HandleFunc("POST /v1/todos", s.handleCreateTodo)
	mux.HandleFunc("PATCH /v1/todos/{id}", s.handleUpdateTodo)
	mux.HandleFunc("DELETE /v1/todos/{id}", s.handleDeleteTodo)

	// Change feed
	mux.HandleFunc("GET /v1/todos/stream", s.handleStream)
	mux.HandleFunc("GET /v1/todos/changes", s.handleChangesTail)

	return chain(mux, recoveryMiddleware, requestIDMiddleware, loggerMiddleware,
		metricsMiddleware(s.metrics), loggingMiddleware, maxBytesMiddleware(1<<20))
}

// handleHealth returns a health check response, pinging the database.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns a snapshot of server metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
