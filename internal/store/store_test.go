package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIngestCommitsThroughToReaders(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Ingest(Batch{Rows: []Row{{
		SQL:  `INSERT INTO files (id, path, content_hash, byte_size, language, mtime_epoch) VALUES (?, ?, ?, ?, ?, ?)`,
		Args: []any{1, "main.go", int64(123), int64(10), "go", int64(0)},
	}}})
	require.NoError(t, s.Drain(ctx))

	var count int
	require.NoError(t, s.Reader().QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestHealthReportsQueueDepthAfterDrain(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Ingest(Batch{Rows: []Row{{
		SQL:  `INSERT INTO files (id, path, content_hash, byte_size, language, mtime_epoch) VALUES (?, ?, ?, ?, ?, ?)`,
		Args: []any{1, "a.go", int64(1), int64(1), "go", int64(0)},
	}}})
	require.NoError(t, s.Drain(ctx))

	h := s.Health()
	assert.Zero(t, h.QueuedBatches)
}

func TestMarshalViolationsValidatesAgainstSchema(t *testing.T) {
	rows := []ViolationListRow{{
		ViolationID: 1,
		File:        "main.go",
		Line:        10,
		PatternID:   2,
		Severity:    "warning",
		Message:     "pattern 2 deviates from the dominant convention",
		Fingerprint: "deadbeef",
		IsNew:       true,
	}}
	data, err := MarshalViolations(rows)
	require.NoError(t, err)
	assert.Contains(t, string(data), "deadbeef")
}

func TestMarshalPatternsValidatesAgainstSchema(t *testing.T) {
	rows := []PatternListRow{{PatternID: 1, Category: "Universal", Status: "Approved"}}
	data, err := MarshalPatterns(rows)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Universal")
}
