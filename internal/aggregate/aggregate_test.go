package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
)

func TestOccurrencesInvariant(t *testing.T) {
	ag := NewAggregator()
	pid := ids.PatternID(1)
	ag.Ingest([]Pattern{
		{PatternID: pid, Category: "api", Location: Location{FileID: 1, Line: 10}},
		{PatternID: pid, Category: "api", Location: Location{FileID: 1, Line: 20}},
		{PatternID: pid, Category: "api", Location: Location{FileID: 2, Line: 5}},
	})
	a, ok := ag.Get(pid)
	require.True(t, ok, "expected pattern present")
	sum := 0
	for _, locs := range a.LocationsByFile {
		sum += len(locs)
	}
	assert.Equal(t, sum, a.Occurrences(), "occurrences invariant violated")
	assert.Equal(t, 2, a.FileSpread())
}

func TestIdempotentIngest(t *testing.T) {
	ag := NewAggregator()
	pid := ids.PatternID(1)
	obs := []Pattern{{PatternID: pid, Category: "api", Location: Location{FileID: 1, Line: 10}}}

	ag.Ingest(obs)
	ag.Ingest(obs)

	a, _ := ag.Get(pid)
	assert.Equal(t, 1, a.Occurrences(), "expected idempotent ingest to leave occurrences at 1")
}

func TestAutoMergeAboveThreshold(t *testing.T) {
	ag := NewAggregator()
	a, b := ids.PatternID(1), ids.PatternID(2)
	locs := []Location{{FileID: 1, Line: 1}, {FileID: 1, Line: 2}, {FileID: 2, Line: 3}, {FileID: 2, Line: 4}}
	for _, l := range locs {
		ag.Ingest([]Pattern{{PatternID: a, Category: "api", Location: l}})
		ag.Ingest([]Pattern{{PatternID: b, Category: "api", Location: l}})
	}

	ag.DetectMerges()

	_, ok := ag.Get(b)
	assert.False(t, ok, "expected b merged away after identical-location auto-merge")

	merged, ok := ag.Get(a)
	require.True(t, ok)
	assert.Equal(t, 4, merged.Occurrences())
}

func TestReconcileRebuildsFileIndex(t *testing.T) {
	ag := NewAggregator()
	pid := ids.PatternID(1)
	ag.Ingest([]Pattern{{PatternID: pid, Category: "api", Location: Location{FileID: 1, Line: 1}}})
	ag.Reconcile()
	a, _ := ag.Get(pid)
	assert.Len(t, a.LocationsByFile[1], 1, "expected reconcile to rebuild the file index")
}
