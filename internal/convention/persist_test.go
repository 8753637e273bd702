package convention

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

func TestPersistWritesToConventions(t *testing.T) {
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT INTO aggregated_patterns (pattern_id, category, occurrences, file_spread) VALUES (?, ?, ?, ?)`,
		Args: []any{1, "naming", 18, 5},
	}}})
	require.NoError(t, s.Drain(context.Background()))

	g := &Gene{
		ID:             "naming.getter",
		Category:       CategoryUniversal,
		Status:         StatusApproved,
		PosteriorMeans: map[string]float64{"camelCase": 0.9, "snake_case": 0.1},
	}
	Persist(s, ids.PatternID(1), "project", g, 1000, 2000)
	require.NoError(t, s.Drain(context.Background()))

	var count int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM conventions").Scan(&count))
	assert.Equal(t, 1, count)
}
