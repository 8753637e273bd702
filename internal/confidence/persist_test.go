package confidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

func TestPersistScoresWritesToConfidenceScores(t *testing.T) {
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT INTO aggregated_patterns (pattern_id, category, occurrences, file_spread) VALUES (?, ?, ?, ?)`,
		Args: []any{1, "api", 2, 1},
	}}})
	require.NoError(t, s.Drain(context.Background()))

	PersistScores(s, map[ids.PatternID]Score{
		1: {Alpha: 3, Beta: 1, Tier: TierEstablished, Momentum: MomentumStable, ScanID: "scan-1"},
	})
	require.NoError(t, s.Drain(context.Background()))

	var count int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM confidence_scores").Scan(&count))
	assert.Equal(t, 1, count)
}
