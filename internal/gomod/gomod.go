// Package gomod parses go.mod files into a dependency summary. Parsing is
// line-oriented: the module line, require entries (block and single-line
// forms) with their trailing comments, and replace directives.
package gomod

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/docforge-hq/docforge/pkg/model"
)

// ParseFile reads and parses the go.mod under root. A missing file is not
// an error; it yields nil.
func ParseFile(root string) (*model.ModuleInfo, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// Parse parses go.mod content.
func Parse(content string) *model.ModuleInfo {
	info := &model.ModuleInfo{Dependencies: []model.Library{}}

	inRequire := false
	inReplace := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			continue
		case strings.HasPrefix(line, "module "):
			info.Module = strings.TrimSpace(strings.TrimPrefix(line, "module "))
		case line == "require (":
			inRequire = true
		case line == "replace (":
			inReplace = true
		case line == ")":
			inRequire = false
			inReplace = false
		case inRequire:
			if lib, ok := parseRequire(line); ok {
				info.Dependencies = append(info.Dependencies, lib)
			}
		case inReplace:
			if rd, ok := parseReplace(line); ok {
				info.Replace = append(info.Replace, rd)
			}
		case strings.HasPrefix(line, "require "):
			if lib, ok := parseRequire(strings.TrimPrefix(line, "require ")); ok {
				info.Dependencies = append(info.Dependencies, lib)
			}
		case strings.HasPrefix(line, "replace "):
			if rd, ok := parseReplace(strings.TrimPrefix(line, "replace ")); ok {
				info.Replace = append(info.Replace, rd)
			}
		}
	}
	return info
}

// parseRequire parses one "path version [// comment]" entry.
func parseRequire(line string) (model.Library, bool) {
	var comment string
	if before, after, found := strings.Cut(line, "//"); found {
		line = strings.TrimSpace(before)
		comment = strings.TrimSpace(after)
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return model.Library{}, false
	}
	return model.Library{Name: fields[0], Version: fields[1], Comment: comment}, true
}

// parseReplace parses one "old [version] => new [version]" entry.
func parseReplace(line string) (model.ReplaceDirective, bool) {
	from, to, found := strings.Cut(line, "=>")
	if !found {
		return model.ReplaceDirective{}, false
	}
	return model.ReplaceDirective{
		Old: strings.Join(strings.Fields(from), " "),
		New: strings.Join(strings.Fields(to), " "),
	}, true
}
