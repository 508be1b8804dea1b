// Package server is the HTTP front door for recommendation requests.
//
// Each POST /recommend runs one full session lifecycle: spawn the MCP
// subprocess, run the agent turn, enrich the reply, tear the session
// down. Requests are serialized through a mutex spanning that whole
// span, so two requests never share a subprocess.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anisense/anisense/pkg/enrich"
)

// Recommender is one startable conversation. *session.Session satisfies it.
type Recommender interface {
	Start(ctx context.Context) error
	Stop() error
	Recommend(ctx context.Context, input string) (string, error)
}

// TitleEnricher resolves bolded titles in a reply. *enrich.Enricher
// satisfies it.
type TitleEnricher interface {
	Enrich(ctx context.Context, text string) enrich.Doc
}

// Config wires the server's dependencies.
type Config struct {
	// Addr is the listen address, e.g. "localhost:8080".
	Addr string

	// Session is the process-wide conversation. It is started before
	// and stopped after every request; history survives across turns.
	Session Recommender

	// Enricher resolves titles in the final reply. Required.
	Enricher TitleEnricher
}

// Server serves the recommendation API.
type Server struct {
	cfg    Config
	server *http.Server

	// recommendMu spans session start through stop so concurrent
	// requests never share the MCP subprocess.
	recommendMu sync.Mutex
}

// New creates a Server. Start begins listening.
func New(cfg Config) (*Server, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if cfg.Enricher == nil {
		return nil, fmt.Errorf("enricher is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:8080"
	}
	return &Server{cfg: cfg}, nil
}

// Router builds the route tree. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	r.Post("/recommend", s.handleRecommend)
	r.Get("/api/users", s.handleUsers)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("HTTP server starting", "address", s.cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	slog.Info("HTTP server shutting down")
	return s.server.Shutdown(shutdownCtx)
}

type recommendRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No query provided"})
		return
	}

	s.recommendMu.Lock()
	defer s.recommendMu.Unlock()

	sess := s.cfg.Session
	if err := sess.Start(r.Context()); err != nil {
		slog.Error("Failed to start session", "error", err)
		recommendationErrors.Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to start recommendation session"})
		return
	}
	defer func() {
		if err := sess.Stop(); err != nil {
			slog.Warn("Failed to stop session", "error", err)
		}
	}()

	reply, err := sess.Recommend(r.Context(), req.Query)
	if err != nil {
		slog.Error("Recommendation failed", "error", err)
		recommendationErrors.Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate recommendation"})
		return
	}

	doc := s.cfg.Enricher.Enrich(r.Context(), reply)
	recommendationsTotal.Inc()

	writeJSON(w, http.StatusOK, map[string]any{"recommendation": doc})
}

// handleUsers serves a static payload kept for client compatibility.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"users": {"jeff", "john", "jimmy"},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
