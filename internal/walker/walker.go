// Package walker discovers Go source files under a repository root. Vendored
// trees, VCS metadata and gitignored paths are excluded; test files are kept
// but partitioned from regular sources so downstream stages can treat them
// separately.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/docforge-hq/docforge/pkg/model"
)

var skipDirs = map[string]struct{}{
	"vendor":       {},
	"node_modules": {},
	".git":         {},
	"testdata":     {},
}

// Options restricts discovery with project-level glob patterns. Patterns
// match slash-separated paths relative to the root.
type Options struct {
	Include []string
	Exclude []string
}

// Result partitions discovered files and records non-fatal skips.
type Result struct {
	Sources  []model.SourceFile
	Tests    []model.SourceFile
	Warnings []string
}

// Walker walks one repository root.
type Walker struct {
	root    string
	include []glob.Glob
	exclude []glob.Glob
	ignored *ignore.GitIgnore
}

// New compiles the filter patterns and loads the root .gitignore if present.
func New(root string, opts Options) (*Walker, error) {
	w := &Walker{root: root}

	var err error
	if w.include, err = compileAll(opts.Include); err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	if w.exclude, err = compileAll(opts.Exclude); err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		w.ignored = gi
	}
	return w, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Walk collects Go files under the root. An unreadable file is logged,
// recorded as a warning and skipped; it never aborts the walk.
func (w *Walker) Walk() (*Result, error) {
	res := &Result{}

	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path == w.root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(name) != ".go" {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !w.selected(rel) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", rel).Msg("skipping unreadable file")
			res.Warnings = append(res.Warnings, fmt.Sprintf("unreadable file %s: %v", rel, err))
			return nil
		}

		f := model.SourceFile{Path: rel, Content: content}
		if strings.HasSuffix(name, "_test.go") {
			res.Tests = append(res.Tests, f)
		} else {
			res.Sources = append(res.Sources, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", w.root, err)
	}

	sortFiles(res.Sources)
	sortFiles(res.Tests)
	return res, nil
}

func (w *Walker) selected(rel string) bool {
	if w.ignored != nil && w.ignored.MatchesPath(rel) {
		return false
	}
	for _, g := range w.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(w.include) == 0 {
		return true
	}
	for _, g := range w.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func sortFiles(files []model.SourceFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
