package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge-hq/docforge/pkg/model"
)

func sampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "internal", "users"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"),
		[]byte("module example.com/sample\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "internal", "users", "service.go"),
		[]byte(`package users

// GetUser loads one user.
func GetUser(id string) (string, error) {
	return "", nil
}
`), 0o644))
	return dir
}

func TestDocsCommand(t *testing.T) {
	dir := sampleRepo(t)
	out := filepath.Join(t.TempDir(), "docs", "README.md")

	cmd := docsCmd()
	cmd.SetArgs([]string{"--path", dir, "--output", out, "--title", "sample"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# sample")
	assert.Contains(t, string(data), "internal/users")
}

func TestModelCommand(t *testing.T) {
	dir := sampleRepo(t)
	out := filepath.Join(t.TempDir(), "snapshot.json")

	cmd := modelCmd()
	cmd.SetArgs([]string{"--path", dir, "--output", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Functions, 1)
	assert.Equal(t, "GetUser", snap.Functions[0].Name)
	require.NotNil(t, snap.Libraries)
	assert.Equal(t, "example.com/sample", snap.Libraries.Module)
}

func TestGraphCommand(t *testing.T) {
	dir := sampleRepo(t)
	out := filepath.Join(t.TempDir(), "components.puml")

	cmd := graphCmd()
	cmd.SetArgs([]string{"--path", dir, "--output", out, "--title", "sample"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@startuml")
	assert.Contains(t, string(data), "component [internal/users]")
}

func TestWriteOrPrint_CreatesParentDirs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b", "doc.md")
	require.NoError(t, writeOrPrint(out, "content"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}
