package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherBatchesChangesAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")

	s := NewScanner(dir, Options{})
	w, err := NewWatcher(s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nvar x = 1\n"), 0o644))

	select {
	case batch := <-w.Changed:
		assert.NotEmpty(t, batch)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced change batch")
	}

	cancel()
	<-done
}

func TestWatcherIgnoresExcludedPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "*.log\n")
	writeFile(t, dir, "main.go", "package main\n")

	s := NewScanner(dir, Options{RespectGitignore: true})
	w, err := NewWatcher(s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte("noise\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nvar y = 1\n"), 0o644))

	select {
	case batch := <-w.Changed:
		for _, p := range batch {
			assert.NotEqual(t, "debug.log", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced change batch")
	}

	cancel()
	<-done
}
