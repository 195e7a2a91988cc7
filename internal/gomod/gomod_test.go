package gomod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge-hq/docforge/pkg/model"
)

const sampleGoMod = `module github.com/example/project

go 1.22

require (
	github.com/rs/zerolog v1.34.0
	github.com/stretchr/testify v1.11.1 // indirect
)

require gopkg.in/yaml.v3 v3.0.1

replace github.com/example/old => github.com/example/new v1.2.3

replace (
	github.com/a/b v1.0.0 => ../local
)
`

func TestParse(t *testing.T) {
	info := Parse(sampleGoMod)

	assert.Equal(t, "github.com/example/project", info.Module)

	require.Len(t, info.Dependencies, 3)
	assert.Equal(t, model.Library{Name: "github.com/rs/zerolog", Version: "v1.34.0"}, info.Dependencies[0])
	assert.Equal(t, model.Library{
		Name:    "github.com/stretchr/testify",
		Version: "v1.11.1",
		Comment: "indirect",
	}, info.Dependencies[1])
	assert.Equal(t, model.Library{Name: "gopkg.in/yaml.v3", Version: "v3.0.1"}, info.Dependencies[2])

	require.Len(t, info.Replace, 2)
	assert.Equal(t, model.ReplaceDirective{
		Old: "github.com/example/old",
		New: "github.com/example/new v1.2.3",
	}, info.Replace[0])
	assert.Equal(t, model.ReplaceDirective{
		Old: "github.com/a/b v1.0.0",
		New: "../local",
	}, info.Replace[1])
}

func TestParse_Empty(t *testing.T) {
	info := Parse("")
	assert.Empty(t, info.Module)
	assert.Empty(t, info.Dependencies)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"),
		[]byte("module example.com/m\n\nrequire github.com/google/uuid v1.6.0\n"), 0o644))

	info, err := ParseFile(dir)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "example.com/m", info.Module)
	require.Len(t, info.Dependencies, 1)
	assert.Equal(t, "github.com/google/uuid", info.Dependencies[0].Name)
}

func TestParseFile_Missing(t *testing.T) {
	info, err := ParseFile(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, info)
}
