// Package endpoints discovers REST route registrations and RPC service
// methods in raw source text and enriches them with handler docs, example
// payloads and external repository citations.
package endpoints

import (
	"regexp"
	"sort"
	"strings"

	"github.com/docforge-hq/docforge/internal/patterns"
	"github.com/docforge-hq/docforge/internal/projector"
	"github.com/docforge-hq/docforge/pkg/model"
)

// RepositoryLookup cites the external repository declaring types under a
// package-qualifying prefix. Implemented by the project configuration.
type RepositoryLookup interface {
	// Cite returns a human-readable repository name and a browsable link
	// for the given prefix. ok is false when no repository is registered.
	Cite(prefix string) (repo, link string, ok bool)
}

// Resolver scans files for endpoint declarations. Route and method idioms
// are matched over raw text regardless of which extraction strategy handled
// the rest of the file.
type Resolver struct {
	repos RepositoryLookup
	proj  *projector.Projector
}

// New returns a resolver. repos may be nil when no external repositories
// are configured.
func New(repos RepositoryLookup) *Resolver {
	return &Resolver{repos: repos, proj: projector.New()}
}

// Resolve walks every file and collects REST and RPC endpoints. Results are
// ordered by file path, then line.
func (r *Resolver) Resolve(files []model.SourceFile, functions []model.Function, structs *model.StructIndex) model.Endpoints {
	var out model.Endpoints
	for _, f := range files {
		out.REST = append(out.REST, r.restFromFile(f, functions)...)
		out.RPC = append(out.RPC, r.rpcFromFile(f, structs)...)
	}
	sortByLocation(out.REST, func(e model.RESTEndpoint) (string, int) { return e.File, e.Line })
	sortByLocation(out.RPC, func(e model.RPCEndpoint) (string, int) { return e.File, e.Line })
	return out
}

// span is a claimed half-open byte interval of a file. A span claimed by an
// earlier pattern suppresses matches from later patterns, so one registration
// is never reported under two flavors.
type span struct{ start, end int }

func overlaps(claimed []span, s span) bool {
	for _, c := range claimed {
		if s.start < c.end && s.end > c.start {
			return true
		}
	}
	return false
}

func (r *Resolver) restFromFile(f model.SourceFile, functions []model.Function) []model.RESTEndpoint {
	content := string(f.Content)
	var (
		claimed []span
		out     []model.RESTEndpoint
	)
	for _, rp := range patterns.Routers {
		for _, idx := range rp.Regexp.FindAllStringSubmatchIndex(content, -1) {
			s := span{idx[0], idx[1]}
			if overlaps(claimed, s) {
				continue
			}
			claimed = append(claimed, s)

			method := "GET"
			pathGroup, handlerGroup := 1, 2
			if rp.HasVerb {
				method = content[idx[2]:idx[3]]
				pathGroup, handlerGroup = 2, 3
			}
			ep := model.RESTEndpoint{
				Method:  method,
				Path:    content[idx[2*pathGroup] : idx[2*pathGroup+1]],
				Handler: content[idx[2*handlerGroup] : idx[2*handlerGroup+1]],
				Router:  rp.Flavor,
				File:    f.Path,
				Line:    lineAt(content, idx[0]),
			}
			if h, ok := findHandler(functions, f.Path, ep.Handler); ok {
				ep.Doc = h.Doc
			}
			out = append(out, ep)
		}
	}
	return out
}

// findHandler locates the handler's declaration in the same file. First
// declaration wins.
func findHandler(functions []model.Function, file, name string) (model.Function, bool) {
	for _, fn := range functions {
		if fn.File == file && fn.Name == name {
			return fn, true
		}
	}
	return model.Function{}, false
}

func (r *Resolver) rpcFromFile(f model.SourceFile, structs *model.StructIndex) []model.RPCEndpoint {
	content := string(f.Content)
	var (
		claimed []span
		out     []model.RPCEndpoint
	)
	for _, re := range patterns.RPCMethods {
		methodIdx := groupIndex(re, "method")
		reqIdx := groupIndex(re, "request")
		respIdx := groupIndex(re, "response")
		docIdx := groupIndex(re, "doc")

		for _, idx := range re.FindAllStringSubmatchIndex(content, -1) {
			s := span{idx[0], idx[1]}
			if overlaps(claimed, s) {
				continue
			}
			claimed = append(claimed, s)

			ep := model.RPCEndpoint{
				Method:       group(content, idx, methodIdx),
				RequestType:  group(content, idx, reqIdx),
				ResponseType: group(content, idx, respIdx),
				Doc:          cleanDocBlock(group(content, idx, docIdx)),
				File:         f.Path,
				Line:         lineAt(content, idx[2*methodIdx]),
			}
			ep.RequestExample = r.exampleFor(structs, ep.RequestType)
			ep.ResponseExample = r.exampleFor(structs, ep.ResponseType)
			ep.SourceRepo, ep.SourceLink = r.cite(ep.RequestType, ep.ResponseType)
			out = append(out, ep)
		}
	}
	return out
}

// exampleFor builds a JSON example for the named type, resolving the name
// through the struct index lookup chain. Unresolvable names yield no example.
func (r *Resolver) exampleFor(structs *model.StructIndex, typeName string) any {
	if structs == nil || typeName == "" {
		return nil
	}
	s, ok := structs.Lookup(typeName)
	if !ok {
		return nil
	}
	return r.proj.Project(s)
}

// cite attributes package-qualified message types to the external repository
// declaring them. The request type's qualifier is preferred; the response
// type's is the fallback.
func (r *Resolver) cite(requestType, responseType string) (repo, link string) {
	if r.repos == nil {
		return "", ""
	}
	for _, t := range []string{requestType, responseType} {
		prefix, _, found := strings.Cut(t, ".")
		if !found {
			continue
		}
		if repo, link, ok := r.repos.Cite(prefix); ok {
			return repo, link
		}
	}
	return "", ""
}

func sortByLocation[T any](items []T, key func(T) (string, int)) {
	sort.SliceStable(items, func(i, j int) bool {
		fi, li := key(items[i])
		fj, lj := key(items[j])
		if fi != fj {
			return fi < fj
		}
		return li < lj
	})
}

func groupIndex(re *regexp.Regexp, name string) int {
	for i, n := range re.SubexpNames() {
		if n == name {
			return i
		}
	}
	return -1
}

func group(content string, idx []int, g int) string {
	if g < 0 || 2*g+1 >= len(idx) || idx[2*g] < 0 {
		return ""
	}
	return content[idx[2*g]:idx[2*g+1]]
}

func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

func cleanDocBlock(block string) string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, strings.TrimSpace(strings.TrimLeft(line, "/")))
	}
	return strings.Join(lines, "\n")
}
