package aggregate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

func TestAggregatorPersistWritesPatternsAndLocations(t *testing.T) {
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT INTO files (id, path, content_hash, byte_size, language, mtime_epoch) VALUES (?, ?, ?, ?, ?, ?)`,
		Args: []any{1, "main.go", int64(1), int64(1), "go", int64(0)},
	}}})
	require.NoError(t, s.Drain(context.Background()))

	ag := NewAggregator()
	pid := ids.PatternID(1)
	ag.Ingest([]Pattern{
		{PatternID: pid, Category: "api", Location: Location{FileID: 1, Line: 10}},
		{PatternID: pid, Category: "api", Location: Location{FileID: 1, Line: 20}},
	})

	ag.Persist(s)
	require.NoError(t, s.Drain(context.Background()))

	var patternCount, locCount int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM aggregated_patterns").Scan(&patternCount))
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM pattern_locations").Scan(&locCount))
	assert.Equal(t, 1, patternCount)
	assert.Equal(t, 2, locCount)
}
