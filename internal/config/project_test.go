package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	assert.Contains(t, cfg.Include, "**/*.go")
	assert.Contains(t, cfg.Include, "*.go", "top-level files must be included by default")
	assert.Equal(t, "README.md", cfg.Output.Readme)
}

func TestLoadProjectConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `version: "1.0"
include:
  - "internal/**"
external_repositories:
  pb:
    url: https://git.example.com/team/proto-defs
    path: api/v1/users.proto
    branch: master
    description: user service protos
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docforge.yaml"), []byte(content), 0o644))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"internal/**"}, cfg.Include)

	repo, ok := cfg.ExternalRepositories["pb"]
	require.True(t, ok)
	assert.Equal(t, "user service protos", repo.Description)
	assert.Equal(t, "https://git.example.com/team/proto-defs/-/blob/master/api/v1/users.proto", repo.BlobLink())
}

func TestLoadProjectConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docforge.yaml"), []byte(":\nnot yaml ["), 0o644))

	_, err := LoadProjectConfig(dir)
	assert.Error(t, err)
}

func TestRepoDirectory_Resolve(t *testing.T) {
	cfg := &ProjectConfig{ExternalRepositories: map[string]ExternalRepo{
		"pb":      {URL: "https://git.example.com/protos", Description: "protos"},
		"pbusers": {URL: "https://git.example.com/user-protos", Description: "user protos"},
	}}
	d := cfg.Directory()

	repo, ok := d.Resolve("pb")
	require.True(t, ok, "exact match")
	assert.Equal(t, "protos", repo.Description)

	repo, ok = d.Resolve("pbusersv1")
	require.True(t, ok, "longest prefix wins")
	assert.Equal(t, "user protos", repo.Description)

	_, ok = d.Resolve("grpc")
	assert.False(t, ok)
}

func TestRepoDirectory_Cite(t *testing.T) {
	cfg := &ProjectConfig{ExternalRepositories: map[string]ExternalRepo{
		"pb":    {URL: "https://git.example.com/protos", Path: "all.proto", Description: "shared protos"},
		"types": {URL: "https://git.example.com/types"},
	}}
	d := cfg.Directory()

	repo, link, ok := d.Cite("pb")
	require.True(t, ok)
	assert.Equal(t, "shared protos", repo)
	assert.Equal(t, "https://git.example.com/protos/-/blob/main/all.proto", link)

	repo, link, ok = d.Cite("types")
	require.True(t, ok)
	assert.Equal(t, "https://git.example.com/types", repo, "URL stands in for a missing description")
	assert.Equal(t, "https://git.example.com/types", link)
}
