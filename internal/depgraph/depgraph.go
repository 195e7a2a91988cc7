// Package depgraph folds per-file package facts into directory-grained
// components and derives the internal dependency graph between them. Imports
// are linked to components by matching the import path's final segment
// against declared package names; single-segment imports are treated as
// standard library and never produce edges.
package depgraph

import (
	"errors"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/docforge-hq/docforge/pkg/model"
)

// Build groups facts into components and wires dependency edges between
// them. The returned map is keyed by component name; Dependencies and
// Dependents are sorted and mirror each other.
func Build(facts []model.PackageFact) (map[string]*model.Component, error) {
	components := make(map[string]*model.Component)
	for _, fact := range facts {
		c, ok := components[fact.Component]
		if !ok {
			c = &model.Component{Name: fact.Component, Package: fact.Package}
			components[fact.Component] = c
		}
		c.Files = append(c.Files, fact.File)
	}

	// Package name -> component names declaring it. A package name declared
	// by several directories links the importer to all of them.
	byPackage := make(map[string][]string)
	for name, c := range components {
		if c.Package != "" {
			byPackage[c.Package] = append(byPackage[c.Package], name)
		}
	}

	g := graph.New(func(c *model.Component) string { return c.Name }, graph.Directed())
	for _, c := range components {
		if err := g.AddVertex(c); err != nil {
			return nil, err
		}
	}

	for _, fact := range facts {
		for _, imp := range fact.Imports {
			i := strings.LastIndex(imp, "/")
			if i < 0 {
				continue
			}
			for _, target := range byPackage[imp[i+1:]] {
				if target == fact.Component {
					continue
				}
				err := g.AddEdge(fact.Component, target)
				if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, err
				}
			}
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, err
	}

	for name, c := range components {
		sort.Strings(c.Files)
		c.Dependencies = sortedKeys(adjacency[name])
		c.Dependents = sortedKeys(predecessors[name])
	}
	return components, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
