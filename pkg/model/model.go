// Package model defines the normalized structural facts extracted from a
// source tree. Everything here is plain data, serializable to JSON without
// loss; extraction components produce these values and renderers consume them.
package model

import (
	"sort"
	"strings"
)

// SourceFile is a source file keyed by its path relative to the scanned root.
// Content is immutable once read.
type SourceFile struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
}

// StructRefs lists struct type names referenced by a function signature,
// split by position (parameters vs. returns).
type StructRefs struct {
	Request  []string `json:"request"`
	Response []string `json:"response"`
}

// Function is a function or method declaration.
// Receiver is non-empty if and only if the declaration is a method.
type Function struct {
	Name       string     `json:"name"`
	Receiver   string     `json:"receiver,omitempty"`
	Params     string     `json:"params"`
	Returns    string     `json:"returns"`
	Doc        string     `json:"comment"`
	StructRefs StructRefs `json:"struct_types"`
	File       string     `json:"file"`
	Line       int        `json:"line"`
}

// Field is a single struct field. WireName is the resolved external name
// (json tag, embedded protobuf json name, or a name derived from the
// identifier) and is always non-empty.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	WireName string `json:"json_tag"`
}

// Struct is a struct type declaration. Names are unique within a file but may
// collide across files; collisions are kept side by side in StructIndex and
// resolved by explicit lookup policy, never merged.
type Struct struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
	File   string  `json:"file"`
	Line   int     `json:"line"`
}

// TestKind classifies a test declaration by its name prefix.
type TestKind string

const (
	KindTest      TestKind = "test"
	KindBenchmark TestKind = "benchmark"
	KindExample   TestKind = "example"
)

// Test is a test, benchmark or example declaration found in a test file.
type Test struct {
	Name     string   `json:"name"`
	Kind     TestKind `json:"type"`
	Doc      string   `json:"comment"`
	Subtests []string `json:"subtests"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
}

// TestGroups holds extracted tests grouped by kind.
type TestGroups struct {
	Tests      []Test `json:"tests"`
	Benchmarks []Test `json:"benchmarks"`
	Examples   []Test `json:"examples"`
}

// RESTEndpoint is a route registration bound (best-effort) to its handler.
// Handler resolution may fail; the endpoint is still emitted with Doc empty.
type RESTEndpoint struct {
	Method          string `json:"method"`
	Path            string `json:"path"`
	Handler         string `json:"handler"`
	Router          string `json:"router"`
	Doc             string `json:"comment"`
	RequestExample  any    `json:"request_json,omitempty"`
	ResponseExample any    `json:"response_json,omitempty"`
	File            string `json:"file"`
	Line            int    `json:"line"`
}

// RPCEndpoint is a service method matching the context-plus-request /
// response-plus-error convention. SourceRepo and SourceLink cite the external
// repository declaring the request/response types when the package prefix is
// known; both stay empty on a lookup miss.
type RPCEndpoint struct {
	Method          string `json:"method"`
	RequestType     string `json:"request_type"`
	ResponseType    string `json:"response_type"`
	RequestExample  any    `json:"request_json,omitempty"`
	ResponseExample any    `json:"response_json,omitempty"`
	Doc             string `json:"comment"`
	SourceRepo      string `json:"proto_repo,omitempty"`
	SourceLink      string `json:"proto_link,omitempty"`
	File            string `json:"file"`
	Line            int    `json:"line"`
}

// Endpoints groups resolved endpoints by flavor.
type Endpoints struct {
	REST []RESTEndpoint `json:"rest"`
	RPC  []RPCEndpoint  `json:"grpc"`
}

// PackageFact records per-file package facts consumed by the dependency
// grapher. Component is the directory key ("root" for top-level files).
type PackageFact struct {
	File      string   `json:"file"`
	Component string   `json:"component"`
	Package   string   `json:"package"`
	Imports   []string `json:"imports"`
}

// Component is a directory-scoped grouping of files sharing a package
// identifier. Dependents are derived from Dependencies, never stored
// independently.
type Component struct {
	Name         string   `json:"name"`
	Package      string   `json:"package"`
	Files        []string `json:"files"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// Library is a single go.mod require entry.
type Library struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Comment string `json:"comment,omitempty"`
}

// ReplaceDirective is a go.mod replace entry.
type ReplaceDirective struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ModuleInfo is the parsed go.mod summary.
type ModuleInfo struct {
	Module       string             `json:"module"`
	Dependencies []Library          `json:"dependencies"`
	Replace      []ReplaceDirective `json:"replace,omitempty"`
}

// Snapshot is the full extraction result for one source tree.
type Snapshot struct {
	Root       string                `json:"root"`
	Functions  []Function            `json:"functions"`
	Structs    map[string]Struct     `json:"structs"`
	Tests      TestGroups            `json:"tests"`
	Endpoints  Endpoints             `json:"endpoints"`
	Components map[string]*Component `json:"components"`
	Packages   []string              `json:"packages"`
	Libraries  *ModuleInfo           `json:"libraries,omitempty"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// StructIndex is a multi-valued name index over struct declarations.
// Collisions across files are kept as ordered lists so that "first match"
// resolution policies are explicit lookups, not hidden overwrites.
type StructIndex struct {
	byName map[string][]Struct
	names  []string
	sorted bool
}

// NewStructIndex returns an empty index.
func NewStructIndex() *StructIndex {
	return &StructIndex{byName: make(map[string][]Struct)}
}

// Add appends a struct under its name. Insertion order within a name bucket
// is preserved; callers feed structs in sorted file order so "first" is
// deterministic.
func (i *StructIndex) Add(s Struct) {
	if _, ok := i.byName[s.Name]; !ok {
		i.names = append(i.names, s.Name)
		i.sorted = false
	}
	i.byName[s.Name] = append(i.byName[s.Name], s)
}

// Len returns the number of distinct struct names.
func (i *StructIndex) Len() int { return len(i.names) }

// Names returns all indexed names in sorted order.
func (i *StructIndex) Names() []string {
	if !i.sorted {
		sort.Strings(i.names)
		i.sorted = true
	}
	return i.names
}

// Exact returns the first struct recorded under exactly name.
func (i *StructIndex) Exact(name string) (Struct, bool) {
	if list, ok := i.byName[name]; ok && len(list) > 0 {
		return list[0], true
	}
	return Struct{}, false
}

// All returns every struct under name, in insertion order.
func (i *StructIndex) All(name string) []Struct {
	return i.byName[name]
}

// Lookup resolves a possibly package-qualified type name to a struct using
// the fixed priority chain: exact match, exact match on the unqualified name,
// suffix match, then substring match. Scans run over sorted names so the
// first hit is deterministic.
func (i *StructIndex) Lookup(name string) (Struct, bool) {
	if s, ok := i.Exact(name); ok {
		return s, true
	}
	clean := unqualify(name)
	if clean != name {
		if s, ok := i.Exact(clean); ok {
			return s, true
		}
	}
	for _, n := range i.Names() {
		if strings.HasSuffix(n, clean) {
			return i.byName[n][0], true
		}
	}
	for _, n := range i.Names() {
		if strings.Contains(n, clean) {
			return i.byName[n][0], true
		}
	}
	return Struct{}, false
}

func unqualify(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
