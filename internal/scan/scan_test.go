package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDetectLanguageByExtension(t *testing.T) {
	cases := map[string]string{
		"main.go":   "go",
		"app.tsx":   "typescript",
		"script.py": "python",
		"lib.rs":    "rust",
		"README.md": "",
		"run.sh":    "",
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path, nil), "DetectLanguage(%q)", path)
	}
}

func TestDetectLanguageByShebang(t *testing.T) {
	content := []byte("#!/usr/bin/env python3\nprint('hi')\n")
	assert.Equal(t, "python", DetectLanguage("build", content), "expected shebang fallback to python")
}

func TestWalkRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "vendor/\n*.log\n")
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "vendor/dep.go", "package dep\n")
	writeFile(t, dir, "debug.log", "noise\n")

	s := NewScanner(dir, Options{RespectGitignore: true})

	var seen []string
	err := s.Walk(context.Background(), func(path string, info os.FileInfo) error {
		rel, _ := filepath.Rel(dir, path)
		seen = append(seen, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)

	want := map[string]bool{".gitignore": true, "main.go": true}
	for _, s := range seen {
		assert.True(t, want[s], "unexpected file surfaced past gitignore: %s", s)
	}
	assert.Len(t, seen, 2, "expected exactly .gitignore and main.go")
}

func TestReadFileHashesContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n")

	s := NewScanner(dir, Options{})
	info, err := os.Stat(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	f, err := s.ReadFile(filepath.Join(dir, "a.go"), info)
	require.NoError(t, err)
	assert.NotZero(t, f.ContentHash, "expected non-zero content hash")
	assert.Equal(t, SkipNone, f.Skipped, "expected file to be read")
}

func TestReadFileSkipsOversized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.go", "package a\n")

	s := NewScanner(dir, Options{MaxFileSizeBytes: 1})
	info, err := os.Stat(filepath.Join(dir, "big.go"))
	require.NoError(t, err)
	f, err := s.ReadFile(filepath.Join(dir, "big.go"), info)
	require.NoError(t, err)
	assert.Equal(t, SkipTooLarge, f.Skipped)
}

func TestRunDiscoversFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "sub/helper.go", "package sub\n")

	s := NewScanner(dir, Options{})
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
}
