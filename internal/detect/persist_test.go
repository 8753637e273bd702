package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

func openPersistTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT INTO files (id, path, content_hash, byte_size, language, mtime_epoch) VALUES (?, ?, ?, ?, ?, ?)`,
		Args: []any{1, "main.go", int64(1), int64(1), "go", int64(0)},
	}}})
	require.NoError(t, s.Drain(context.Background()))
	return s
}

func TestPersistFindingsWritesToDetections(t *testing.T) {
	s := openPersistTestStore(t)
	findings := []Finding{{
		DetectorID: "handler-naming",
		Category:   "naming",
		FileID:     ids.FileID(1),
		Line:       10,
		Snippet:    "HandleRequest",
		Confidence: 0.9,
		PatternID:  ids.PatternID(1),
	}}
	PersistFindings(s, "scan-1", findings)
	require.NoError(t, s.Drain(context.Background()))

	var count int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM detections").Scan(&count))
	assert.Equal(t, 1, count)
}
