// Package patterns is the fixed regex library used when the grammar engine is
// unavailable or fails on a file, plus the router and RPC idioms scanned over
// raw text. The set is versioned as a whole; individual expressions are not
// swapped at runtime.
//
// Known limitation of degraded mode: parameter lists and receivers are
// matched with [^)]* character classes, so nested parentheses (function-typed
// parameters, generics) are captured best-effort. That imprecision is part of
// the degraded-mode contract, not a bug to paper over.
package patterns

import "regexp"

// Version identifies the pattern set revision.
const Version = "1"

// Function matches a function or method declaration with its preceding
// //-comment block; one blank line between the block and the declaration is
// tolerated. Named groups: doc, receiver, name, params, returns.
var Function = regexp.MustCompile(
	`(?m)(?:^|\n)(?P<doc>(?:[ \t]*//.*\n)*)(?:[ \t]*\n)?[ \t]*func\s+` +
		`(?P<receiver>\([^)]+\)\s+)?` +
		`(?P<name>\w+)` +
		`\s*\((?P<params>[^)]*)\)` +
		`\s*(?P<returns>\([^)]*\)|[\w\[\]*.\s]+?)?` +
		`\s*\{`)

// Struct matches a type declaration with a brace-delimited struct body.
// An unterminated body simply does not match. Named groups: name, body.
var Struct = regexp.MustCompile(`type\s+(?P<name>\w+)\s+struct\s*\{(?P<body>[^}]*)\}`)

// Field matches one field line inside a struct body.
// Named groups: name, type, tag.
var Field = regexp.MustCompile("^(?P<name>\\w+)\\s+(?P<type>[^\\s`]+)(?:\\s+`(?P<tag>[^`]+)`)?")

// Test matches test, benchmark and example declarations in test files.
// Named groups: doc, name.
var Test = regexp.MustCompile(
	`(?m)(?:^|\n)(?P<doc>(?:[ \t]*//.*\n)*)(?:[ \t]*\n)?[ \t]*func\s+` +
		`(?P<name>(?:Test|Benchmark|Example)\w+)` +
		`\s*\([^)]*\)\s*\{`)

// Subtest matches named sub-cases registered through .Run("name", func...).
var Subtest = regexp.MustCompile(`\.Run\s*\(\s*"([^"]+)"\s*,\s*func`)

// JSONTag extracts the json key from a struct tag string.
var JSONTag = regexp.MustCompile(`json:"([^"]+)"`)

// ProtobufJSONName extracts the embedded json name from a protobuf tag.
var ProtobufJSONName = regexp.MustCompile(`protobuf:"[^"]*json=([^,"]+)`)

// RouterPattern is one route-registration idiom. Patterns are tried in the
// order of Routers; the first pattern matching a source span wins and later
// patterns never double-count that span.
type RouterPattern struct {
	// Flavor tags which framework idiom matched.
	Flavor string
	Regexp *regexp.Regexp
	// HasVerb is true when capture group 1 is the HTTP verb. Without it the
	// verb defaults to GET and groups shift to (path, handler).
	HasVerb bool
}

// Routers is the fixed, ordered list of REST route idioms: two fluent-router
// styles, the standard-library dispatch style, and a third-party mux style.
var Routers = []RouterPattern{
	{
		Flavor:  "gin",
		Regexp:  regexp.MustCompile(`router\.(GET|POST|PUT|DELETE|PATCH)\s*\(\s*"([^"]+)"\s*,\s*(\w+)`),
		HasVerb: true,
	},
	{
		Flavor:  "echo",
		Regexp:  regexp.MustCompile(`e\.(GET|POST|PUT|DELETE|PATCH)\s*\(\s*"([^"]+)"\s*,\s*(\w+)`),
		HasVerb: true,
	},
	{
		Flavor:  "net/http",
		Regexp:  regexp.MustCompile(`http\.(?:HandleFunc|Handle)\s*\(\s*"([^"]+)"\s*,\s*(\w+)`),
		HasVerb: false,
	},
	{
		Flavor:  "mux",
		Regexp:  regexp.MustCompile(`mux\.HandleFunc\s*\(\s*"([^"]+)"\s*,\s*(\w+)`),
		HasVerb: false,
	},
}

// RPCMethods are the two accepted phrasings of the service-method convention:
// an explicitly named ctx parameter, or a qualified context type used
// positionally. Named groups: doc, method, request, response.
var RPCMethods = []*regexp.Regexp{
	regexp.MustCompile(
		`(?m)(?:^|\n)(?P<doc>(?:[ \t]*//.*\n)*)(?:[ \t]*\n)?[ \t]*func\s+\([^)]+\)\s*` +
			`(?P<method>\w+)` +
			`\s*\(\s*ctx\s+[\w.]*Context\s*,\s*(?:\w+\s+)?\*?(?P<request>[\w.]+)\s*\)` +
			`\s*\(\s*\*?(?P<response>[\w.]+)\s*,\s*error\s*\)`),
	regexp.MustCompile(
		`(?m)(?:^|\n)(?P<doc>(?:[ \t]*//.*\n)*)(?:[ \t]*\n)?[ \t]*func\s+\([^)]+\)\s*` +
			`(?P<method>\w+)` +
			`\s*\([^)]*context\.Context[^)]*,\s*\*?(?P<request>[\w.]+)\s*\)` +
			`\s*\(\s*\*?(?P<response>[\w.]+)\s*,\s*error\s*\)`),
}

// Group returns the named capture from a FindStringSubmatch result, or ""
// when absent.
func Group(re *regexp.Regexp, match []string, name string) string {
	for i, n := range re.SubexpNames() {
		if n == name && i < len(match) {
			return match[i]
		}
	}
	return ""
}
