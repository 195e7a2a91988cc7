package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge-hq/docforge/pkg/model"
)

func TestBuild(t *testing.T) {
	facts := []model.PackageFact{
		{File: "internal/alpha/a.go", Component: "internal/alpha", Package: "alpha",
			Imports: []string{"fmt"}},
		{File: "internal/alpha/b.go", Component: "internal/alpha", Package: "alpha",
			Imports: []string{"strings"}},
		{File: "internal/beta/b.go", Component: "internal/beta", Package: "beta",
			Imports: []string{"example.com/proj/internal/alpha", "fmt"}},
		{File: "main.go", Component: "root", Package: "main",
			Imports: []string{"example.com/proj/internal/alpha", "example.com/proj/internal/beta"}},
	}

	components, err := Build(facts)
	require.NoError(t, err)
	require.Len(t, components, 3)

	alpha := components["internal/alpha"]
	assert.Equal(t, "alpha", alpha.Package)
	assert.Equal(t, []string{"internal/alpha/a.go", "internal/alpha/b.go"}, alpha.Files)
	assert.Empty(t, alpha.Dependencies)
	assert.Equal(t, []string{"internal/beta", "root"}, alpha.Dependents)

	beta := components["internal/beta"]
	assert.Equal(t, []string{"internal/alpha"}, beta.Dependencies)
	assert.Equal(t, []string{"root"}, beta.Dependents)

	root := components["root"]
	assert.Equal(t, []string{"internal/alpha", "internal/beta"}, root.Dependencies)
	assert.Empty(t, root.Dependents)
}

func TestBuild_StdlibImportsIgnored(t *testing.T) {
	facts := []model.PackageFact{
		{File: "a/a.go", Component: "a", Package: "a", Imports: []string{"fmt", "os", "strings"}},
		{File: "b/b.go", Component: "b", Package: "b", Imports: []string{"context"}},
	}

	components, err := Build(facts)
	require.NoError(t, err)
	assert.Empty(t, components["a"].Dependencies)
	assert.Empty(t, components["b"].Dependents)
}

func TestBuild_DuplicateImportsSingleEdge(t *testing.T) {
	facts := []model.PackageFact{
		{File: "internal/api/a.go", Component: "internal/api", Package: "api",
			Imports: []string{"example.com/p/internal/store"}},
		{File: "internal/api/b.go", Component: "internal/api", Package: "api",
			Imports: []string{"example.com/p/internal/store"}},
		{File: "internal/store/s.go", Component: "internal/store", Package: "store"},
	}

	components, err := Build(facts)
	require.NoError(t, err)
	assert.Equal(t, []string{"internal/store"}, components["internal/api"].Dependencies)
	assert.Equal(t, []string{"internal/api"}, components["internal/store"].Dependents)
}

func TestBuild_NoSelfEdges(t *testing.T) {
	facts := []model.PackageFact{
		{File: "internal/api/a.go", Component: "internal/api", Package: "api",
			Imports: []string{"example.com/p/internal/api"}},
	}

	components, err := Build(facts)
	require.NoError(t, err)
	assert.Empty(t, components["internal/api"].Dependencies)
	assert.Empty(t, components["internal/api"].Dependents)
}
