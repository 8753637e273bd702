package gast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableForKnownLanguages(t *testing.T) {
	for _, lang := range []string{"go", "javascript", "typescript", "python", "rust", "cpp", "java", "csharp", "zig", "php"} {
		table := tableFor(lang)
		assert.NotEmpty(t, table, "expected non-empty node-kind table for %s", lang)
	}
}

func TestTypeScriptTableExtendsJavaScript(t *testing.T) {
	assert.Equal(t, KindClass, tsTable["class_declaration"], "expected typescript table to inherit javascript's class_declaration mapping")
	assert.Equal(t, KindInterface, tsTable["interface_declaration"], "expected typescript-specific interface_declaration mapping")
}

func TestWalkVisitsAllNodes(t *testing.T) {
	root := &Node{
		Kind: KindFile,
		Children: []*Node{
			{Kind: KindFunction, Children: []*Node{{Kind: KindBlock}}},
			{Kind: KindClass},
		},
	}
	count := 0
	Walk(root, func(*Node) { count++ })
	assert.Equal(t, 4, count, "expected 4 nodes visited")
	assert.Equal(t, 4, CountNodes(root))
}

func TestUnknownLanguageReturnsEmptyTable(t *testing.T) {
	assert.Empty(t, tableFor("cobol"), "expected empty table for unsupported language")
}
