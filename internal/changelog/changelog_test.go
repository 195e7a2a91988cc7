package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
	when time.Time
}

func initRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{
		t:    t,
		dir:  dir,
		repo: repo,
		wt:   wt,
		when: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) commit(message string) plumbing.Hash {
	r.t.Helper()
	r.when = r.when.Add(time.Minute)

	path := filepath.Join(r.dir, "notes.txt")
	require.NoError(r.t, os.WriteFile(path, []byte(message), 0o644))
	_, err := r.wt.Add("notes.txt")
	require.NoError(r.t, err)

	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: r.when},
	})
	require.NoError(r.t, err)
	return hash
}

func (r *testRepo) tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, hash, nil)
	require.NoError(r.t, err)
}

func TestCollect_SinceTag(t *testing.T) {
	r := initRepo(t)
	r.commit("chore: initial import")
	tagged := r.commit("feat: first release feature")
	r.tag("v1.0.0", tagged)
	r.commit("feat: add user lookup")
	r.commit("fix: nil deref in parser")
	r.commit("update dependencies")

	cl, err := Collect(r.dir)
	require.NoError(t, err)

	assert.Equal(t, "v1.0.0", cl.SinceTag)
	require.Len(t, cl.Sections["Added"], 1)
	assert.Equal(t, "feat: add user lookup", cl.Sections["Added"][0].Subject)
	assert.Len(t, cl.Sections["Added"][0].SHA, 8)
	require.Len(t, cl.Sections["Fixed"], 1)
	require.Len(t, cl.Sections["Changed"], 1)
	assert.Empty(t, cl.Sections["Removed"], "pre-tag commits are excluded")
}

func TestCollect_NoTags(t *testing.T) {
	r := initRepo(t)
	r.commit("feat: one")
	r.commit("fix: two")

	cl, err := Collect(r.dir)
	require.NoError(t, err)

	assert.Empty(t, cl.SinceTag)
	assert.Len(t, cl.Sections["Added"], 1)
	assert.Len(t, cl.Sections["Fixed"], 1)
}

func TestCollect_NotARepo(t *testing.T) {
	_, err := Collect(t.TempDir())
	assert.Error(t, err)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"feat: add thing", "Added"},
		{"Add feature flag", "Changed"},
		{"fix: crash on empty input", "Fixed"},
		{"remove legacy endpoint", "Removed"},
		{"deprecate v1 api", "Deprecated"},
		{"security: bump tls floor", "Security"},
		{"refactor internals", "Changed"},
		{"FEAT: uppercase works too", "Added"},
		{"feat(parser): scoped type", "Added"},
		{"defeat flaky retries", "Changed"},
		{"prefix the feature toggle", "Changed"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.subject))
		})
	}
}

func TestMarkdown(t *testing.T) {
	cl := &Changelog{
		SinceTag: "v2.1.0",
		Sections: map[string][]Entry{
			"Added": {{SHA: "abcd1234", Subject: "feat: add projector"}},
			"Fixed": {{SHA: "ef567890", Subject: "fix: line offsets"}},
		},
	}

	md := cl.Markdown()
	assert.Contains(t, md, "# Changelog")
	assert.Contains(t, md, "## [Unreleased] (since v2.1.0)")
	assert.Contains(t, md, "### Added")
	assert.Contains(t, md, "- feat: add projector (abcd1234)")
	assert.Less(t, // Added renders before Fixed
		strings.Index(md, "### Added"), strings.Index(md, "### Fixed"))
}
