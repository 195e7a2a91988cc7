package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents a .docforge.yaml file in a repository
type ProjectConfig struct {
	Version string `yaml:"version"`

	// File patterns
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	// Where generated documents are written
	Output OutputConfig `yaml:"output,omitempty"`

	// External repositories declaring message types referenced by RPC
	// endpoints, keyed by the package prefix they qualify (e.g. "pb").
	ExternalRepositories map[string]ExternalRepo `yaml:"external_repositories,omitempty"`
}

// OutputConfig holds document output paths
type OutputConfig struct {
	Readme    string `yaml:"readme,omitempty"`
	Changelog string `yaml:"changelog,omitempty"`
	Diagram   string `yaml:"diagram,omitempty"`
}

// ExternalRepo describes one external repository hosting type declarations
type ExternalRepo struct {
	URL         string `yaml:"url"`
	Path        string `yaml:"path,omitempty"`
	Branch      string `yaml:"branch,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// DefaultProjectConfig returns sensible defaults
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: "1.0",
		// Globs use / as separator, so ** alone never matches top-level
		// files; the bare *.go entry covers them.
		Include: []string{"*.go", "**/*.go"},
		Exclude: []string{
			"**/vendor/**",
			"**/node_modules/**",
		},
		Output: OutputConfig{
			Readme:    "README.md",
			Changelog: "CHANGELOG.md",
			Diagram:   "docs/components.puml",
		},
	}
}

// LoadProjectConfig loads a .docforge.yaml from the given directory
func LoadProjectConfig(repoPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(repoPath, ".docforge.yaml")

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Also try .docforge.yml
		configPath = filepath.Join(repoPath, ".docforge.yml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}

	return cfg, nil
}

// RepoDirectory resolves package prefixes to external repositories. Prefixes
// are tried for an exact match first, then the longest registered prefix
// that the query starts with.
type RepoDirectory struct {
	repos    map[string]ExternalRepo
	prefixes []string
}

// Directory builds the lookup directory from the configured repositories.
func (c *ProjectConfig) Directory() *RepoDirectory {
	d := &RepoDirectory{repos: c.ExternalRepositories}
	for p := range c.ExternalRepositories {
		d.prefixes = append(d.prefixes, p)
	}
	// Longest first so prefix fallback prefers the most specific entry.
	sort.Slice(d.prefixes, func(i, j int) bool {
		if len(d.prefixes[i]) != len(d.prefixes[j]) {
			return len(d.prefixes[i]) > len(d.prefixes[j])
		}
		return d.prefixes[i] < d.prefixes[j]
	})
	return d
}

// Resolve finds the repository registered for a package prefix.
func (d *RepoDirectory) Resolve(prefix string) (ExternalRepo, bool) {
	if r, ok := d.repos[prefix]; ok {
		return r, true
	}
	for _, p := range d.prefixes {
		if strings.HasPrefix(prefix, p) {
			return d.repos[p], true
		}
	}
	return ExternalRepo{}, false
}

// Cite returns a display name and a browsable link for the repository
// registered under prefix.
func (d *RepoDirectory) Cite(prefix string) (repo, link string, ok bool) {
	r, ok := d.Resolve(prefix)
	if !ok {
		return "", "", false
	}
	repo = r.Description
	if repo == "" {
		repo = r.URL
	}
	return repo, r.BlobLink(), true
}

// BlobLink builds a browsable file URL for the repository's declared path.
func (r ExternalRepo) BlobLink() string {
	if r.Path == "" {
		return r.URL
	}
	branch := r.Branch
	if branch == "" {
		branch = "main"
	}
	return fmt.Sprintf("%s/-/blob/%s/%s", strings.TrimRight(r.URL, "/"), branch, r.Path)
}
