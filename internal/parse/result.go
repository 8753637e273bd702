package parse

import (
	"context"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/coderift/drift/internal/gast"
)

// SourceRange is a lossless-at-range-level back-pointer into the original
// source bytes.
type SourceRange struct {
	StartByte, EndByte     uint
	StartLine, StartColumn uint
	EndLine, EndColumn     uint
}

func rangeFromNode(n tree_sitter.Node) SourceRange {
	start, end := n.StartPosition(), n.EndPosition()
	return SourceRange{
		StartByte:   n.StartByte(),
		EndByte:     n.EndByte(),
		StartLine:   start.Row,
		StartColumn: start.Column,
		EndLine:     end.Row,
		EndColumn:   end.Column,
	}
}

// Symbol is one named entity pulled out by a language query.
type Symbol struct {
	Kind  string // function, method, class, interface, struct, enum, type
	Name  string
	Range SourceRange
}

// ImportRef is one import/use/include statement.
type ImportRef struct {
	Raw   string
	Range SourceRange
}

// CallSite is a call expression captured for the resolver (internal/resolve)
// to later bind to a callee.
type CallSite struct {
	CalleeName string
	Range      SourceRange
}

// ParseError describes a syntax error tree-sitter recovered from, with its
// source range so the UI/report layer can point at it directly.
type ParseError struct {
	Message string
	Range   SourceRange
}

// Result is the uniform output of parsing one file, regardless of
// language: the extracted symbol/import/call lists, parse errors, and the
// normalized GAST root. The tree-sitter tree itself is not kept.
type Result struct {
	Language    string
	Functions   []Symbol
	Classes     []Symbol
	Imports     []ImportRef
	CallSites   []CallSite
	Errors      []ParseError
	GAST        *gast.Node
	ContentHash uint64
}

// Parse runs lang's parser over content, extracting symbols via the
// language's compiled query and normalizing the tree into a GAST root.
// The tree-sitter handle is checked out from m and returned before Parse
// returns, so callers never see it directly.
func Parse(ctx context.Context, m *Manager, lang string, content []byte, contentHash uint64) (Result, error) {
	parser, query, err := m.Checkout(lang)
	if err != nil {
		return Result{}, err
	}
	defer m.Return(lang, parser)

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return Result{}, fmt.Errorf("parse: tree-sitter returned no tree for language %q", lang)
	}
	defer tree.Close()

	root := tree.RootNode()

	result := Result{Language: lang, ContentHash: contentHash}
	result.Errors = collectErrors(root)

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(query, root, content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, cap := range match.Captures {
			name := query.CaptureNames()[cap.Index]
			node := cap.Node
			switch {
			case name == "function":
				result.Functions = append(result.Functions, Symbol{Kind: "function", Name: captureText(content, node), Range: rangeFromNode(node)})
			case name == "method":
				result.Functions = append(result.Functions, Symbol{Kind: "method", Name: captureText(content, node), Range: rangeFromNode(node)})
			case name == "class" || name == "struct" || name == "interface" || name == "enum" || name == "type":
				result.Classes = append(result.Classes, Symbol{Kind: name, Name: captureText(content, node), Range: rangeFromNode(node)})
			case name == "import":
				result.Imports = append(result.Imports, ImportRef{Raw: captureText(content, node), Range: rangeFromNode(node)})
			case name == "call":
				if callee := calleeName(node, content); callee != "" {
					result.CallSites = append(result.CallSites, CallSite{CalleeName: callee, Range: rangeFromNode(node)})
				}
			}
		}
	}

	result.GAST = gast.Normalize(lang, root, content)
	return result, nil
}

func captureText(content []byte, n tree_sitter.Node) string {
	s, e := n.StartByte(), n.EndByte()
	if int(e) > len(content) {
		e = uint(len(content))
	}
	if s >= e {
		return ""
	}
	return string(content[s:e])
}

// calleeName recovers the invoked name from a captured call-expression node
// without depending on per-grammar field names: the callee expression is
// the named child immediately preceding the trailing argument list, and its
// identifier is whichever leaf that subtree's rightmost descent bottoms out
// on (plain call: the leaf itself; member/selector/attribute call: the
// right-most member name).
func calleeName(n tree_sitter.Node, content []byte) string {
	nc := int(n.NamedChildCount())
	if nc < 2 {
		return ""
	}
	callee := n.NamedChild(uint(nc - 2))
	if callee == nil {
		return ""
	}
	return descendToIdentifier(*callee, content)
}

func descendToIdentifier(n tree_sitter.Node, content []byte) string {
	switch n.Kind() {
	case "identifier", "field_identifier", "property_identifier", "name", "type_identifier":
		return captureText(content, n)
	}
	nc := int(n.NamedChildCount())
	if nc == 0 {
		return captureText(content, n)
	}
	return descendToIdentifier(*n.NamedChild(uint(nc-1)), content)
}

func collectErrors(root tree_sitter.Node) []ParseError {
	var errs []ParseError
	var walk func(n tree_sitter.Node)
	walk = func(n tree_sitter.Node) {
		if n.IsError() || n.IsMissing() {
			errs = append(errs, ParseError{Message: "syntax error", Range: rangeFromNode(n)})
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			if child := n.Child(uint(i)); child != nil {
				walk(*child)
			}
		}
	}
	walk(root)
	return errs
}
