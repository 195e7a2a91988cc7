package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docforge-hq/docforge/internal/gitrepo"
	"github.com/docforge-hq/docforge/internal/store"
	"github.com/docforge-hq/docforge/pkg/model"
)

// mockStore is an in-memory Snapshots implementation.
type mockStore struct {
	repos     map[uuid.UUID]*store.Repository
	snapshots map[uuid.UUID]*store.SnapshotRecord
	pingErr   error
	saveErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		repos:     map[uuid.UUID]*store.Repository{},
		snapshots: map[uuid.UUID]*store.SnapshotRecord{},
	}
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockStore) CreateRepository(ctx context.Context, repo *store.Repository) error {
	repo.ID = uuid.New()
	repo.Status = "pending"
	repo.CreatedAt = time.Now()
	repo.UpdatedAt = repo.CreatedAt
	m.repos[repo.ID] = repo
	return nil
}

func (m *mockStore) GetRepository(ctx context.Context, id uuid.UUID) (*store.Repository, error) {
	return m.repos[id], nil
}

func (m *mockStore) GetRepositoryByURL(ctx context.Context, url string) (*store.Repository, error) {
	for _, r := range m.repos {
		if r.URL == url {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListRepositories(ctx context.Context) ([]*store.Repository, error) {
	repos := []*store.Repository{}
	for _, r := range m.repos {
		repos = append(repos, r)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].CreatedAt.After(repos[j].CreatedAt) })
	return repos, nil
}

func (m *mockStore) UpdateRepositoryStatus(ctx context.Context, id uuid.UUID, status string) error {
	if r, ok := m.repos[id]; ok {
		r.Status = status
	}
	return nil
}

func (m *mockStore) SaveSnapshot(ctx context.Context, repoID uuid.UUID, commitSHA string, snap *model.Snapshot) (*store.SnapshotRecord, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	rec := &store.SnapshotRecord{
		ID:           uuid.New(),
		RepositoryID: repoID,
		CommitSHA:    commitSHA,
		Data:         data,
		CreatedAt:    time.Now(),
	}
	m.snapshots[rec.ID] = rec
	return rec, nil
}

func (m *mockStore) GetSnapshot(ctx context.Context, id uuid.UUID) (*store.SnapshotRecord, error) {
	return m.snapshots[id], nil
}

func (m *mockStore) LatestSnapshot(ctx context.Context, repoID uuid.UUID) (*store.SnapshotRecord, error) {
	var latest *store.SnapshotRecord
	for _, rec := range m.snapshots {
		if rec.RepositoryID != repoID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	return latest, nil
}

// mockCloner pretends every clone lands in a fixed path.
type mockCloner struct {
	path string
	sha  string
	err  error
}

func (m *mockCloner) Clone(ctx context.Context, info *gitrepo.RepoInfo) (*gitrepo.CloneResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &gitrepo.CloneResult{Path: m.path, CommitSHA: m.sha, Branch: info.Branch}, nil
}

func okAnalyzer(snap *model.Snapshot) Analyzer {
	return func(root string) (*model.Snapshot, error) { return snap, nil }
}

func failingAnalyzer() Analyzer {
	return func(root string) (*model.Snapshot, error) { return nil, fmt.Errorf("parse blew up") }
}
