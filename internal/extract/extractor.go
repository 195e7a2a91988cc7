// Package extract turns source files into declaration records. Each file is
// parsed with the grammar adapter first; when the engine is unavailable or
// fails on that file, extraction degrades to the pattern matcher for that
// file only. Both paths emit records under the same schema and invariants.
package extract

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/docforge-hq/docforge/internal/grammar"
	"github.com/docforge-hq/docforge/internal/patterns"
	"github.com/docforge-hq/docforge/pkg/model"
)

// Extractor extracts function, struct and test declarations from files.
type Extractor struct {
	grammar *grammar.Adapter
}

// New creates an extractor using the given grammar adapter.
func New(adapter *grammar.Adapter) *Extractor {
	return &Extractor{grammar: adapter}
}

var (
	pointerTypeRef = regexp.MustCompile(`\*\s*([a-zA-Z_][a-zA-Z0-9_.]*)`)
	typeRef        = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_.]*`)
	packageDecl    = regexp.MustCompile(`(?m)^package\s+(\w+)`)
	singleImport   = regexp.MustCompile(`(?m)^import\s+"([^"]+)"`)
	importBlock    = regexp.MustCompile(`(?ms)^import\s*\(([^)]+)\)`)
	quotedPath     = regexp.MustCompile(`"([^"]+)"`)
)

var basicTypes = map[string]struct{}{
	"string": {}, "int": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
	"uint": {}, "uint8": {}, "uint16": {}, "uint32": {}, "uint64": {},
	"float32": {}, "float64": {}, "bool": {}, "byte": {}, "rune": {},
	"error": {}, "context": {}, "Context": {},
}

func isBasicType(name string) bool {
	if _, ok := basicTypes[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "[]") || strings.HasPrefix(name, "map[")
}

// ExtractFunctions returns all function and method declarations in a file,
// ordered by line.
func (e *Extractor) ExtractFunctions(file model.SourceFile) []model.Function {
	var fns []model.Function
	if tree := e.grammar.Parse(file.Content); tree != nil {
		defer tree.Close()
		fns = e.functionsFromTree(tree, file)
	} else {
		if e.grammar.Available() {
			log.Warn().Str("file", file.Path).Msg("grammar parse failed, degrading to patterns")
		}
		fns = e.functionsFromPatterns(file)
	}
	sort.SliceStable(fns, func(i, j int) bool { return fns[i].Line < fns[j].Line })
	return fns
}

func (e *Extractor) functionsFromTree(tree *grammar.Tree, file model.SourceFile) []model.Function {
	nodes := tree.FindNodesByType("method_declaration")
	nodes = append(nodes, tree.FindNodesByType("function_declaration")...)

	var fns []model.Function
	for _, n := range nodes {
		isMethod := n.Type() == "method_declaration"

		var name, receiver, params, returns string
		paramLists := 0
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "identifier", "field_identifier":
				if name == "" {
					name = tree.TextOf(c)
				}
			case "parameter_list":
				paramLists++
				switch {
				case isMethod && paramLists == 1:
					receiver = trimParens(tree.TextOf(c))
				case params == "":
					params = trimParens(tree.TextOf(c))
				case returns == "":
					returns = trimParens(tree.TextOf(c))
				}
			case "type_identifier", "pointer_type", "slice_type", "array_type",
				"map_type", "qualified_type", "function_type", "generic_type",
				"interface_type", "channel_type":
				if name != "" && returns == "" {
					returns = tree.TextOf(c)
				}
			}
		}
		if name == "" {
			// Partial match without a name is discarded, not an error.
			continue
		}

		fns = append(fns, model.Function{
			Name:       name,
			Receiver:   receiver,
			Params:     params,
			Returns:    returns,
			Doc:        tree.CommentsBefore(n),
			StructRefs: extractStructRefs(params, returns),
			File:       file.Path,
			Line:       tree.Line(n),
		})
	}
	return fns
}

func (e *Extractor) functionsFromPatterns(file model.SourceFile) []model.Function {
	content := string(file.Content)
	var fns []model.Function
	for _, idx := range patterns.Function.FindAllStringSubmatchIndex(content, -1) {
		match := submatches(content, idx)
		name := patterns.Group(patterns.Function, match, "name")
		if name == "" {
			continue
		}
		receiver := trimParens(strings.TrimSpace(patterns.Group(patterns.Function, match, "receiver")))
		params := strings.TrimSpace(patterns.Group(patterns.Function, match, "params"))
		returns := trimParens(strings.TrimSpace(patterns.Group(patterns.Function, match, "returns")))

		fns = append(fns, model.Function{
			Name:       name,
			Receiver:   receiver,
			Params:     params,
			Returns:    returns,
			Doc:        cleanDocBlock(patterns.Group(patterns.Function, match, "doc")),
			StructRefs: extractStructRefs(params, returns),
			File:       file.Path,
			Line:       lineAt(content, groupStart(patterns.Function, idx, "name")),
		})
	}
	return fns
}

// ExtractStructs returns all struct declarations carrying at least one field,
// ordered by line.
func (e *Extractor) ExtractStructs(file model.SourceFile) []model.Struct {
	var structs []model.Struct
	if tree := e.grammar.Parse(file.Content); tree != nil {
		defer tree.Close()
		structs = e.structsFromTree(tree, file)
	} else {
		structs = e.structsFromPatterns(file)
	}
	sort.SliceStable(structs, func(i, j int) bool { return structs[i].Line < structs[j].Line })
	return structs
}

func (e *Extractor) structsFromTree(tree *grammar.Tree, file model.SourceFile) []model.Struct {
	var structs []model.Struct
	for _, decl := range tree.FindNodesByType("type_declaration") {
		spec := childOfType(decl, "type_spec")
		if spec == nil {
			continue
		}
		nameNode := childOfType(spec, "type_identifier")
		structType := childOfType(spec, "struct_type")
		if nameNode == nil || structType == nil {
			continue
		}

		fields := e.fieldsFromTree(tree, structType)
		if len(fields) == 0 {
			continue
		}
		structs = append(structs, model.Struct{
			Name:   tree.TextOf(nameNode),
			Fields: fields,
			File:   file.Path,
			Line:   tree.Line(decl),
		})
	}
	return structs
}

func (e *Extractor) fieldsFromTree(tree *grammar.Tree, structType *sitter.Node) []model.Field {
	list := childOfType(structType, "field_declaration_list")
	if list == nil {
		return nil
	}

	var fields []model.Field
	for i := 0; i < int(list.ChildCount()); i++ {
		decl := list.Child(i)
		if decl.Type() != "field_declaration" {
			continue
		}

		var name, fieldType, tag string
		for j := 0; j < int(decl.ChildCount()); j++ {
			c := decl.Child(j)
			switch c.Type() {
			case "field_identifier":
				if name == "" {
					name = tree.TextOf(c)
				}
			case "type_identifier", "pointer_type", "slice_type", "map_type",
				"array_type", "qualified_type", "generic_type", "channel_type",
				"interface_type", "struct_type", "function_type":
				fieldType = tree.TextOf(c)
			case "raw_string_literal":
				tag = strings.Trim(tree.TextOf(c), "`")
			case "interpreted_string_literal":
				if s, err := strconv.Unquote(tree.TextOf(c)); err == nil {
					tag = s
				}
			}
		}
		if name == "" {
			continue
		}
		if fieldType == "" {
			fieldType = "unknown"
		}
		fields = append(fields, model.Field{
			Name:     name,
			Type:     fieldType,
			WireName: resolveWireName(tag, name),
		})
	}
	return fields
}

func (e *Extractor) structsFromPatterns(file model.SourceFile) []model.Struct {
	content := string(file.Content)
	var structs []model.Struct
	for _, idx := range patterns.Struct.FindAllStringSubmatchIndex(content, -1) {
		match := submatches(content, idx)
		name := patterns.Group(patterns.Struct, match, "name")
		body := patterns.Group(patterns.Struct, match, "body")
		if name == "" {
			continue
		}

		fields := fieldsFromBody(body)
		if len(fields) == 0 {
			continue
		}
		structs = append(structs, model.Struct{
			Name:   name,
			Fields: fields,
			File:   file.Path,
			Line:   lineAt(content, idx[0]),
		})
	}
	return structs
}

func fieldsFromBody(body string) []model.Field {
	var fields []model.Field
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		m := patterns.Field.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := patterns.Group(patterns.Field, m, "name")
		fields = append(fields, model.Field{
			Name:     name,
			Type:     patterns.Group(patterns.Field, m, "type"),
			WireName: resolveWireName(patterns.Group(patterns.Field, m, "tag"), name),
		})
	}
	return fields
}

// ExtractTests returns test, benchmark and example declarations. Names are
// classified by prefix in fixed order (Test, Benchmark, Example), first match
// wins; anything else is excluded entirely.
func (e *Extractor) ExtractTests(file model.SourceFile) []model.Test {
	var tests []model.Test
	if tree := e.grammar.Parse(file.Content); tree != nil {
		defer tree.Close()
		tests = e.testsFromTree(tree, file)
	} else {
		tests = e.testsFromPatterns(file)
	}
	sort.SliceStable(tests, func(i, j int) bool { return tests[i].Line < tests[j].Line })
	return tests
}

func classifyTest(name string) (model.TestKind, bool) {
	switch {
	case strings.HasPrefix(name, "Test"):
		return model.KindTest, true
	case strings.HasPrefix(name, "Benchmark"):
		return model.KindBenchmark, true
	case strings.HasPrefix(name, "Example"):
		return model.KindExample, true
	}
	return "", false
}

func (e *Extractor) testsFromTree(tree *grammar.Tree, file model.SourceFile) []model.Test {
	var tests []model.Test
	for _, n := range tree.FindNodesByType("function_declaration") {
		nameNode := childOfType(n, "identifier")
		if nameNode == nil {
			continue
		}
		name := tree.TextOf(nameNode)
		kind, ok := classifyTest(name)
		if !ok {
			continue
		}

		tests = append(tests, model.Test{
			Name:     name,
			Kind:     kind,
			Doc:      tree.CommentsBefore(n),
			Subtests: subtestNames(tree.TextOf(n)),
			File:     file.Path,
			Line:     tree.Line(n),
		})
	}
	return tests
}

func (e *Extractor) testsFromPatterns(file model.SourceFile) []model.Test {
	content := string(file.Content)
	var tests []model.Test
	for _, idx := range patterns.Test.FindAllStringSubmatchIndex(content, -1) {
		match := submatches(content, idx)
		name := patterns.Group(patterns.Test, match, "name")
		kind, ok := classifyTest(name)
		if !ok {
			continue
		}

		body := matchBraces(content, idx[1])
		tests = append(tests, model.Test{
			Name:     name,
			Kind:     kind,
			Doc:      cleanDocBlock(patterns.Group(patterns.Test, match, "doc")),
			Subtests: subtestNames(body),
			File:     file.Path,
			Line:     lineAt(content, groupStart(patterns.Test, idx, "name")),
		})
	}
	return tests
}

func subtestNames(body string) []string {
	var names []string
	for _, m := range patterns.Subtest.FindAllStringSubmatch(body, -1) {
		names = append(names, m[1])
	}
	return names
}

// ExtractPackageFact records the file's package identifier and import paths
// for the dependency grapher. Lexical scan only; files without a package
// clause yield a zero fact.
func (e *Extractor) ExtractPackageFact(file model.SourceFile) model.PackageFact {
	content := string(file.Content)
	fact := model.PackageFact{
		File:      file.Path,
		Component: ComponentKey(file.Path),
	}
	if m := packageDecl.FindStringSubmatch(content); m != nil {
		fact.Package = m[1]
	}
	fact.Imports = extractImports(content)
	return fact
}

// ComponentKey maps a file path to its component key: the containing
// directory, with top-level files grouped under "root".
func ComponentKey(path string) string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "/" || dir == "" {
		return "root"
	}
	return dir
}

func extractImports(content string) []string {
	if m := importBlock.FindStringSubmatch(content); m != nil {
		var imports []string
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "//") {
				continue
			}
			if q := quotedPath.FindStringSubmatch(line); q != nil {
				imports = append(imports, q[1])
			}
		}
		return imports
	}
	if m := singleImport.FindStringSubmatch(content); m != nil {
		return []string{m[1]}
	}
	return nil
}

// extractStructRefs collects struct type names referenced in a signature:
// pointer types from the parameters, any non-basic type from the returns.
func extractStructRefs(params, returns string) model.StructRefs {
	refs := model.StructRefs{Request: []string{}, Response: []string{}}
	for _, m := range pointerTypeRef.FindAllStringSubmatch(params, -1) {
		if !isBasicType(m[1]) {
			refs.Request = append(refs.Request, m[1])
		}
	}
	for _, name := range typeRef.FindAllString(returns, -1) {
		if !isBasicType(name) {
			refs.Response = append(refs.Response, name)
		}
	}
	return refs
}

// cleanDocBlock strips comment markers from a captured //-line block.
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

func trimParens(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func lineAt(content string, offset int) int {
	if offset < 0 || offset > len(content) {
		return 0
	}
	return strings.Count(content[:offset], "\n") + 1
}

// matchBraces returns the body between the already-consumed opening brace at
// start and its matching close. An unterminated body returns the rest of the
// content.
func matchBraces(content string, start int) string {
	depth := 1
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start:i]
			}
		}
	}
	return content[start:]
}

func submatches(content string, idx []int) []string {
	match := make([]string, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] >= 0 {
			match[i/2] = content[idx[i]:idx[i+1]]
		}
	}
	return match
}

func groupStart(re *regexp.Regexp, idx []int, name string) int {
	for i, n := range re.SubexpNames() {
		if n == name && 2*i < len(idx) {
			return idx[2*i]
		}
	}
	return idx[0]
}

func childOfType(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == kind {
			return c
		}
	}
	return nil
}
