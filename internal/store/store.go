// Package store persists repositories and extraction snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docforge-hq/docforge/pkg/model"
)

// Store provides database operations
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new store
func NewStore(db *DB) *Store {
	return &Store{pool: db.Pool()}
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Repository represents a tracked repository record
type Repository struct {
	ID            uuid.UUID `json:"id"`
	URL           string    `json:"url"`
	Name          string    `json:"name"`
	DefaultBranch string    `json:"default_branch"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SnapshotRecord represents one stored extraction result
type SnapshotRecord struct {
	ID           uuid.UUID       `json:"id"`
	RepositoryID uuid.UUID       `json:"repository_id"`
	CommitSHA    string          `json:"commit_sha"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateRepository creates a new repository
func (s *Store) CreateRepository(ctx context.Context, repo *Repository) error {
	repo.ID = uuid.New()
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = "main"
	}
	repo.Status = "pending"
	repo.CreatedAt = time.Now()
	repo.UpdatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO repositories (id, url, name, default_branch, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, repo.ID, repo.URL, repo.Name, repo.DefaultBranch, repo.Status, repo.CreatedAt, repo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}

	return nil
}

// GetRepository gets a repository by ID
func (s *Store) GetRepository(ctx context.Context, id uuid.UUID) (*Repository, error) {
	repo := &Repository{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, url, name, default_branch, status, created_at, updated_at
		FROM repositories WHERE id = $1
	`, id).Scan(&repo.ID, &repo.URL, &repo.Name, &repo.DefaultBranch,
		&repo.Status, &repo.CreatedAt, &repo.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return repo, nil
}

// GetRepositoryByURL gets a repository by its clone URL
func (s *Store) GetRepositoryByURL(ctx context.Context, url string) (*Repository, error) {
	repo := &Repository{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, url, name, default_branch, status, created_at, updated_at
		FROM repositories WHERE url = $1
	`, url).Scan(&repo.ID, &repo.URL, &repo.Name, &repo.DefaultBranch,
		&repo.Status, &repo.CreatedAt, &repo.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository by url: %w", err)
	}

	return repo, nil
}

// ListRepositories lists all tracked repositories, newest first
func (s *Store) ListRepositories(ctx context.Context) ([]*Repository, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, url, name, default_branch, status, created_at, updated_at
		FROM repositories ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer rows.Close()

	repos := []*Repository{}
	for rows.Next() {
		repo := &Repository{}
		if err := rows.Scan(&repo.ID, &repo.URL, &repo.Name, &repo.DefaultBranch,
			&repo.Status, &repo.CreatedAt, &repo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	return repos, nil
}

// UpdateRepositoryStatus updates a repository's status
func (s *Store) UpdateRepositoryStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE repositories SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)

	if err != nil {
		return fmt.Errorf("failed to update repository status: %w", err)
	}

	return nil
}

// SaveSnapshot serializes and stores an extraction snapshot
func (s *Store) SaveSnapshot(ctx context.Context, repoID uuid.UUID, commitSHA string, snap *model.Snapshot) (*SnapshotRecord, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	rec := &SnapshotRecord{
		ID:           uuid.New(),
		RepositoryID: repoID,
		CommitSHA:    commitSHA,
		Data:         data,
		CreatedAt:    time.Now(),
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (id, repository_id, commit_sha, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.RepositoryID, rec.CommitSHA, rec.Data, rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return rec, nil
}

// GetSnapshot gets a snapshot by ID
func (s *Store) GetSnapshot(ctx context.Context, id uuid.UUID) (*SnapshotRecord, error) {
	rec := &SnapshotRecord{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, repository_id, commit_sha, data, created_at
		FROM snapshots WHERE id = $1
	`, id).Scan(&rec.ID, &rec.RepositoryID, &rec.CommitSHA, &rec.Data, &rec.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return rec, nil
}

// LatestSnapshot gets the most recent snapshot for a repository
func (s *Store) LatestSnapshot(ctx context.Context, repoID uuid.UUID) (*SnapshotRecord, error) {
	rec := &SnapshotRecord{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, repository_id, commit_sha, data, created_at
		FROM snapshots WHERE repository_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, repoID).Scan(&rec.ID, &rec.RepositoryID, &rec.CommitSHA, &rec.Data, &rec.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return rec, nil
}
