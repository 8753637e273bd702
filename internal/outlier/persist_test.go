package outlier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

func TestPersistWritesToOutliers(t *testing.T) {
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT INTO files (id, path, content_hash, byte_size, language, mtime_epoch) VALUES (?, ?, ?, ?, ?, ?)`,
		Args: []any{1, "main.go", int64(1), int64(1), "go", int64(0)},
	}}})
	require.NoError(t, s.Drain(context.Background()))

	Persist(s, ids.PatternID(1), []Outlier{
		{FileID: 1, Line: 42, Method: MethodZScore, Deviation: 3.2, Significance: SignificanceHigh},
	})
	require.NoError(t, s.Drain(context.Background()))

	var count int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM outliers").Scan(&count))
	assert.Equal(t, 1, count)
}
