package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_BasicPatterns(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		isDir    bool
		expected bool
	}{
		{"simple file match", "drift.db", "drift.db", false, true},
		{"simple file no match", "drift.db", "main.go", false, false},
		{"directory pattern matches directory", "node_modules/", "node_modules", true, true},
		{"directory pattern matches files inside", "node_modules/", "node_modules/react/index.js", false, true},
		{"directory pattern no match outside", "node_modules/", "src/main.go", false, false},
		{"absolute pattern match", "/build", "build", true, true},
		{"wildcard suffix", "*.log", "scan.log", false, true},
		{"wildcard prefix", "tmp*", "tmpfile.txt", false, true},
		{"negation re-includes", "!important.log", "important.log", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gp := NewGitignoreParser()
			if tt.name == "negation re-includes" {
				gp.AddPattern("*.log")
			}
			gp.AddPattern(tt.pattern)
			got := gp.ShouldIgnore(tt.path, tt.isDir)
			assert.Equal(t, tt.expected, got, "ShouldIgnore(%q, dir=%v)", tt.path, tt.isDir)
		})
	}
}

func TestGitignoreParser_Negation(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("*.log")
	gp.AddPattern("!keep.log")

	assert.True(t, gp.ShouldIgnore("debug.log", false), "expected debug.log to be ignored")
	assert.False(t, gp.ShouldIgnore("keep.log", false), "expected keep.log to be re-included by negation")
}

func TestGitignoreParser_ExclusionPatternsAreGlobs(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("vendor/")
	gp.AddPattern("*.tmp")

	globs := gp.GetExclusionPatterns()
	require.Len(t, globs, 2)
}
