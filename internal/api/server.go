// Package api exposes the analysis service over HTTP: a webhook that
// triggers repository extraction and read endpoints for stored snapshots.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/docforge-hq/docforge/internal/config"
	"github.com/docforge-hq/docforge/internal/gitrepo"
	"github.com/docforge-hq/docforge/internal/store"
	"github.com/docforge-hq/docforge/pkg/model"
)

// Snapshots is the persistence surface the server needs.
type Snapshots interface {
	Ping(ctx context.Context) error
	CreateRepository(ctx context.Context, repo *store.Repository) error
	GetRepository(ctx context.Context, id uuid.UUID) (*store.Repository, error)
	GetRepositoryByURL(ctx context.Context, url string) (*store.Repository, error)
	ListRepositories(ctx context.Context) ([]*store.Repository, error)
	UpdateRepositoryStatus(ctx context.Context, id uuid.UUID, status string) error
	SaveSnapshot(ctx context.Context, repoID uuid.UUID, commitSHA string, snap *model.Snapshot) (*store.SnapshotRecord, error)
	GetSnapshot(ctx context.Context, id uuid.UUID) (*store.SnapshotRecord, error)
	LatestSnapshot(ctx context.Context, repoID uuid.UUID) (*store.SnapshotRecord, error)
}

// Cloner checks out repositories for analysis.
type Cloner interface {
	Clone(ctx context.Context, info *gitrepo.RepoInfo) (*gitrepo.CloneResult, error)
}

// Analyzer extracts a snapshot from a checked-out tree.
type Analyzer func(root string) (*model.Snapshot, error)

// Server represents the API server
type Server struct {
	cfg     *config.Config
	store   Snapshots
	cloner  Cloner
	analyze Analyzer
	router  *chi.Mux
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, st Snapshots, cloner Cloner, analyze Analyzer) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		store:   st,
		cloner:  cloner,
		analyze: analyze,
		router:  chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ready", s.readyCheck)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhook", s.handleWebhook)

		r.Route("/repos", func(r chi.Router) {
			r.Get("/", s.listRepos)
			r.Get("/{repoID}", s.getRepo)
			r.Get("/{repoID}/snapshots/latest", s.getLatestSnapshot)
		})

		r.Get("/snapshots/{snapshotID}", s.getSnapshot)
	})
}

// Health check handlers
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) readyCheck(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
