// Package grammar wraps the tree-sitter Go grammar behind a fail-soft
// adapter. Parsing never returns an error: an adapter constructed without an
// engine, or a buffer the engine rejects, yields a nil tree and callers
// degrade to pattern-based extraction for that file.
package grammar

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Adapter owns the process-wide tree-sitter parser. Construct it once and
// inject it into the extraction components; tests substitute
// NewUnavailableAdapter to exercise the fallback path deterministically.
type Adapter struct {
	parser *sitter.Parser
}

// NewAdapter creates an adapter backed by the Go grammar.
func NewAdapter() *Adapter {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &Adapter{parser: p}
}

// NewUnavailableAdapter creates an adapter with no engine. Every Parse call
// returns nil.
func NewUnavailableAdapter() *Adapter {
	return &Adapter{}
}

// Available reports whether the grammar engine loaded.
func (a *Adapter) Available() bool {
	return a.parser != nil
}

// Tree pairs a parsed syntax tree with the buffer it was parsed from.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// Parse parses src and returns the tree, or nil if the engine is unavailable
// or parsing failed. Callers must Close the returned tree.
func (a *Adapter) Parse(src []byte) *Tree {
	if a.parser == nil {
		return nil
	}
	tree, err := a.parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return nil
	}
	return &Tree{tree: tree, source: src}
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
	}
}

// Root returns the root node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// FindNodesByType collects every node of the given kind, in document order.
func (t *Tree) FindNodesByType(kind string) []*sitter.Node {
	var nodes []*sitter.Node
	t.Walk(func(n *sitter.Node) {
		if n.Type() == kind {
			nodes = append(nodes, n)
		}
	})
	return nodes
}

// Walk visits every node in the tree in document order.
func (t *Tree) Walk(fn func(*sitter.Node)) {
	cursor := sitter.NewTreeCursor(t.Root())
	defer cursor.Close()

	for {
		fn(cursor.CurrentNode())

		if cursor.GoToFirstChild() {
			continue
		}
		for {
			if cursor.GoToNextSibling() {
				break
			}
			if !cursor.GoToParent() {
				return
			}
		}
	}
}

// TextOf returns the source text covered by a node.
func (t *Tree) TextOf(n *sitter.Node) string {
	return n.Content(t.source)
}

// Line returns the 1-based line a node starts on.
func (t *Tree) Line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// CommentsBefore collects the contiguous //-comment block immediately above a
// node, permitting exactly one blank line between the block and the node.
// Comment markers are stripped; absent comments yield an empty string.
func (t *Tree) CommentsBefore(n *sitter.Node) string {
	lines := strings.Split(string(t.source), "\n")
	row := int(n.StartPoint().Row)

	var comments []string
	for i := row - 1; i >= 0 && i < len(lines); {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "//"):
			comments = append([]string{strings.TrimSpace(strings.TrimLeft(line, "/"))}, comments...)
			i--
		case line == "":
			// One blank line directly above the node is allowed.
			if i == row-1 {
				i--
				continue
			}
			return strings.Join(comments, "\n")
		default:
			return strings.Join(comments, "\n")
		}
	}
	return strings.Join(comments, "\n")
}
