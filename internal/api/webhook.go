package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/docforge-hq/docforge/internal/gitrepo"
	"github.com/docforge-hq/docforge/internal/store"
)

// webhookRequest is the push notification payload.
type webhookRequest struct {
	RepositoryURL string `json:"repository_url"`
	Branch        string `json:"branch,omitempty"`
}

// webhookResponse reports the stored snapshot.
type webhookResponse struct {
	RepositoryID uuid.UUID `json:"repository_id"`
	SnapshotID   uuid.UUID `json:"snapshot_id"`
	CommitSHA    string    `json:"commit_sha"`
	Functions    int       `json:"functions"`
	Structs      int       `json:"structs"`
	Components   int       `json:"components"`
	Warnings     []string  `json:"warnings,omitempty"`
}

// handleWebhook clones the repository, runs extraction and stores the
// resulting snapshot. The whole pipeline runs synchronously; the caller
// gets the snapshot id in the response.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.RepositoryURL == "" {
		respondError(w, http.StatusBadRequest, "repository_url is required")
		return
	}

	info, err := gitrepo.ParseRepoURL(req.RepositoryURL)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Branch != "" {
		info.Branch = req.Branch
	}

	repo, err := s.store.GetRepositoryByURL(ctx, req.RepositoryURL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "repository lookup failed")
		return
	}
	if repo == nil {
		repo = &store.Repository{
			URL:           req.RepositoryURL,
			Name:          info.Name,
			DefaultBranch: info.Branch,
		}
		if err := s.store.CreateRepository(ctx, repo); err != nil {
			respondError(w, http.StatusInternalServerError, "repository create failed")
			return
		}
	}

	checkout, err := s.cloner.Clone(ctx, info)
	if err != nil {
		log.Error().Err(err).Str("url", req.RepositoryURL).Msg("clone failed")
		s.markFailed(r, repo.ID)
		respondError(w, http.StatusBadGateway, "clone failed")
		return
	}

	snap, err := s.analyze(checkout.Path)
	if err != nil {
		log.Error().Err(err).Str("path", checkout.Path).Msg("analysis failed")
		s.markFailed(r, repo.ID)
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	rec, err := s.store.SaveSnapshot(ctx, repo.ID, checkout.CommitSHA, snap)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "snapshot save failed")
		return
	}
	if err := s.store.UpdateRepositoryStatus(ctx, repo.ID, "analyzed"); err != nil {
		log.Warn().Err(err).Msg("failed to update repository status")
	}

	log.Info().
		Str("repo", req.RepositoryURL).
		Str("commit", checkout.CommitSHA).
		Str("snapshot", rec.ID.String()).
		Msg("webhook processed")

	respondJSON(w, http.StatusCreated, webhookResponse{
		RepositoryID: repo.ID,
		SnapshotID:   rec.ID,
		CommitSHA:    checkout.CommitSHA,
		Functions:    len(snap.Functions),
		Structs:      len(snap.Structs),
		Components:   len(snap.Components),
		Warnings:     snap.Warnings,
	})
}

func (s *Server) markFailed(r *http.Request, id uuid.UUID) {
	if err := s.store.UpdateRepositoryStatus(r.Context(), id, "failed"); err != nil {
		log.Warn().Err(err).Msg("failed to update repository status")
	}
}

func (s *Server) listRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.store.ListRepositories(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "repository listing failed")
		return
	}
	respondJSON(w, http.StatusOK, repos)
}

func (s *Server) getRepo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "repoID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid repository id")
		return
	}

	repo, err := s.store.GetRepository(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "repository lookup failed")
		return
	}
	if repo == nil {
		respondError(w, http.StatusNotFound, "repository not found")
		return
	}
	respondJSON(w, http.StatusOK, repo)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "snapshotID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid snapshot id")
		return
	}

	rec, err := s.store.GetSnapshot(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "snapshot lookup failed")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) getLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "repoID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid repository id")
		return
	}

	rec, err := s.store.LatestSnapshot(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "snapshot lookup failed")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "no snapshots for repository")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
