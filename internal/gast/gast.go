// Package gast normalizes every supported language's tree-sitter parse
// tree into a small, closed set of cross-language node kinds (the
// "Generic AST"), each carrying a lossless-at-range-level back-pointer
// into the original source. See spec §4.4.
package gast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Kind is one of the ~40 normalized node kinds every language maps into.
type Kind string

const (
	KindFile        Kind = "File"
	KindFunction    Kind = "Function"
	KindMethod      Kind = "Method"
	KindClass       Kind = "Class"
	KindInterface   Kind = "Interface"
	KindStruct      Kind = "Struct"
	KindEnum        Kind = "Enum"
	KindTrait       Kind = "Trait"
	KindModule      Kind = "Module"
	KindNamespace   Kind = "Namespace"
	KindImport      Kind = "Import"
	KindExport      Kind = "Export"
	KindField       Kind = "Field"
	KindProperty    Kind = "Property"
	KindParameter   Kind = "Parameter"
	KindVariable    Kind = "Variable"
	KindConstant    Kind = "Constant"
	KindAssignment  Kind = "Assignment"
	KindCall        Kind = "Call"
	KindIf          Kind = "If"
	KindFor         Kind = "For"
	KindWhile       Kind = "While"
	KindSwitch      Kind = "Switch"
	KindTry         Kind = "Try"
	KindCatch       Kind = "Catch"
	KindReturn      Kind = "Return"
	KindThrow       Kind = "Throw"
	KindBlock       Kind = "Block"
	KindBinaryOp    Kind = "BinaryOp"
	KindUnaryOp     Kind = "UnaryOp"
	KindLiteral     Kind = "Literal"
	KindIdentifier  Kind = "Identifier"
	KindComment     Kind = "Comment"
	KindDecorator   Kind = "Decorator"
	KindAnnotation  Kind = "Annotation"
	KindTypeRef     Kind = "TypeRef"
	KindLambda      Kind = "Lambda"
	KindUsing       Kind = "Using"
	KindPackage     Kind = "Package"
	KindConstructor Kind = "Constructor"
	KindDelegate    Kind = "Delegate"
	KindEvent       Kind = "Event"
	KindUnknown     Kind = "Unknown"
)

// SourceRange back-points a GAST node into its originating tree-sitter
// node's byte and line/column range. Range-level losslessness means every
// GAST node can be mapped back to exactly the source text it summarizes,
// even though the node-kind vocabulary itself is lossy.
type SourceRange struct {
	StartByte, EndByte     uint
	StartLine, StartColumn uint
	EndLine, EndColumn     uint
}

// Node is one normalized tree node. Children preserve source order.
type Node struct {
	Kind     Kind
	Name     string
	Range    SourceRange
	Children []*Node
	native   string // the language-specific tree-sitter node type, kept for debugging
}

func rangeOf(n tree_sitter.Node) SourceRange {
	start, end := n.StartPosition(), n.EndPosition()
	return SourceRange{
		StartByte: n.StartByte(), EndByte: n.EndByte(),
		StartLine: start.Row, StartColumn: start.Column,
		EndLine: end.Row, EndColumn: end.Column,
	}
}

// Normalize walks a tree-sitter root node for the given language, mapping
// each native node type to a GAST Kind via that language's table.
func Normalize(language string, root tree_sitter.Node, content []byte) *Node {
	table := tableFor(language)
	return normalizeNode(root, content, table)
}

func normalizeNode(n tree_sitter.Node, content []byte, table map[string]Kind) *Node {
	kind, ok := table[n.Kind()]
	if !ok {
		kind = KindUnknown
	}

	node := &Node{
		Kind:   kind,
		Range:  rangeOf(n),
		native: n.Kind(),
	}
	if isNameable(kind) {
		node.Name = identifierChildText(n, content)
	}

	count := int(n.ChildCount())
	node.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		node.Children = append(node.Children, normalizeNode(*child, content, table))
	}
	return node
}

func isNameable(k Kind) bool {
	switch k {
	case KindFunction, KindMethod, KindClass, KindInterface, KindStruct, KindEnum,
		KindTrait, KindModule, KindNamespace, KindField, KindProperty, KindVariable,
		KindConstant, KindConstructor, KindDelegate, KindEvent:
		return true
	default:
		return false
	}
}

// identifierChildText finds the first direct identifier-like child and
// returns its source text, which covers the common "name: (identifier)"
// shape across every grammar in the table.
func identifierChildText(n tree_sitter.Node, content []byte) string {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "type_identifier", "field_identifier", "property_identifier", "name":
			s, e := child.StartByte(), child.EndByte()
			if int(e) <= len(content) && s < e {
				return string(content[s:e])
			}
		}
	}
	return ""
}

// Walk visits every node of the tree in pre-order depth-first order.
func Walk(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, c := range root.Children {
		Walk(c, visit)
	}
}

// CountNodes returns the total node count, i.e. how many nodes one Walk
// over root visits.
func CountNodes(root *Node) int {
	n := 0
	Walk(root, func(*Node) { n++ })
	return n
}
