// Package analyzer runs the full extraction pipeline over one source tree:
// file discovery, structural extraction, endpoint resolution, dependency
// graph construction and go.mod parsing, folded into a single snapshot.
// Output ordering is deterministic: identical input trees produce identical
// snapshots.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/docforge-hq/docforge/internal/config"
	"github.com/docforge-hq/docforge/internal/depgraph"
	"github.com/docforge-hq/docforge/internal/endpoints"
	"github.com/docforge-hq/docforge/internal/extract"
	"github.com/docforge-hq/docforge/internal/gomod"
	"github.com/docforge-hq/docforge/internal/grammar"
	"github.com/docforge-hq/docforge/internal/walker"
	"github.com/docforge-hq/docforge/pkg/model"
)

// Analyzer extracts a structural snapshot from a repository.
type Analyzer struct {
	project   *config.ProjectConfig
	extractor *extract.Extractor
	resolver  *endpoints.Resolver
}

// New builds an analyzer for the given project configuration. A nil config
// uses the defaults.
func New(project *config.ProjectConfig) *Analyzer {
	if project == nil {
		project = config.DefaultProjectConfig()
	}
	adapter := grammar.NewAdapter()
	if !adapter.Available() {
		log.Warn().Msg("grammar engine unavailable, all files use pattern extraction")
	}
	return &Analyzer{
		project:   project,
		extractor: extract.New(adapter),
		resolver:  endpoints.New(project.Directory()),
	}
}

// Analyze walks root and extracts everything into a snapshot.
func (a *Analyzer) Analyze(root string) (*model.Snapshot, error) {
	w, err := walker.New(root, walker.Options{
		Include: a.project.Include,
		Exclude: a.project.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring walker: %w", err)
	}
	files, err := w.Walk()
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	snap := &model.Snapshot{
		Root:       root,
		Functions:  []model.Function{},
		Structs:    map[string]model.Struct{},
		Components: map[string]*model.Component{},
		Packages:   []string{},
		Warnings:   files.Warnings,
	}

	index := model.NewStructIndex()
	var facts []model.PackageFact

	// Walker output is sorted by path, so first-wins policies below are
	// deterministic.
	for _, f := range files.Sources {
		snap.Functions = append(snap.Functions, a.extractor.ExtractFunctions(f)...)
		for _, s := range a.extractor.ExtractStructs(f) {
			index.Add(s)
			if _, exists := snap.Structs[s.Name]; !exists {
				snap.Structs[s.Name] = s
			}
		}
		facts = append(facts, a.extractor.ExtractPackageFact(f))
	}

	// Test files feed test extraction only; their imports never become
	// component edges.
	for _, f := range files.Tests {
		for _, tc := range a.extractor.ExtractTests(f) {
			switch tc.Kind {
			case model.KindBenchmark:
				snap.Tests.Benchmarks = append(snap.Tests.Benchmarks, tc)
			case model.KindExample:
				snap.Tests.Examples = append(snap.Tests.Examples, tc)
			default:
				snap.Tests.Tests = append(snap.Tests.Tests, tc)
			}
		}
	}

	snap.Endpoints = a.resolver.Resolve(files.Sources, snap.Functions, index)

	components, err := depgraph.Build(facts)
	if err != nil {
		return nil, fmt.Errorf("building dependency graph: %w", err)
	}
	snap.Components = components
	snap.Packages = packageNames(facts)

	info, err := gomod.ParseFile(root)
	if err != nil {
		return nil, fmt.Errorf("parsing go.mod: %w", err)
	}
	snap.Libraries = info

	log.Info().
		Str("root", root).
		Int("files", len(files.Sources)+len(files.Tests)).
		Int("functions", len(snap.Functions)).
		Int("structs", len(snap.Structs)).
		Int("components", len(snap.Components)).
		Msg("analysis complete")

	return snap, nil
}

func packageNames(facts []model.PackageFact) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, f := range facts {
		if f.Package == "" {
			continue
		}
		if _, ok := seen[f.Package]; ok {
			continue
		}
		seen[f.Package] = struct{}{}
		names = append(names, f.Package)
	}
	sort.Strings(names)
	return names
}
