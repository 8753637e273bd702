package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordTracksCurrentAndPreviousFreq(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.Record("p1", "scan-1", t0, 2, 10, 2)
	tr.Record("p1", "scan-2", t0.AddDate(0, 0, 1), 5, 10, 4)

	assert.Equal(t, 0.5, tr.CurrentFreq("p1"))
	assert.Equal(t, 0.2, tr.PreviousFreq("p1"))
	assert.Equal(t, 2, tr.AgeScans("p1"))
}

func TestRecordSameScanIDIsIdempotent(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.Record("p1", "scan-1", t0, 1, 4, 1)
	tr.Record("p1", "scan-1", t0, 3, 4, 1)

	assert.Equal(t, 1, tr.AgeScans("p1"), "expected duplicate scan to be ignored, age stayed 1")
	assert.Equal(t, 0.25, tr.CurrentFreq("p1"), "expected first recording to stick")
}

func TestUnseenPatternReportsZeroValues(t *testing.T) {
	tr := NewTracker()
	assert.Zero(t, tr.CurrentFreq("missing"))
	assert.Zero(t, tr.PreviousFreq("missing"))
	assert.Zero(t, tr.AgeScans("missing"))
	assert.Zero(t, tr.DaysSinceSeen("missing", time.Now()))
}

func TestDaysSinceSeenMeasuresFromLastRecordedScan(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Record("p1", "scan-1", t0, 1, 1, 1)

	asOf := t0.AddDate(0, 0, 95)
	assert.Equal(t, 95, tr.DaysSinceSeen("p1", asOf))
}

func TestObservationAssemblesMomentumFields(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Record("p1", "scan-1", t0, 2, 10, 2)
	tr.Record("p1", "scan-2", t0.AddDate(0, 0, 1), 8, 10, 5)

	obs := tr.Observation("p1", "scan-2", 8, 10, []int{3, 5}, t0.AddDate(0, 0, 1))
	assert.Equal(t, 0.2, obs.PreviousFreq)
	assert.Equal(t, 0.8, obs.CurrentFreq)
	assert.Equal(t, 2, obs.AgeScans)
	assert.Equal(t, "scan-2", obs.ScanID, "expected scan id to round-trip")
}

func TestPruneDropsStalePatterns(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.Record("stale", "scan-1", t0, 1, 1, 1)
	tr.Record("fresh", "scan-1", t0.AddDate(0, 0, 100), 1, 1, 1)

	tr.Prune(t0.AddDate(0, 0, 100), 30*24*time.Hour)

	assert.Zero(t, tr.AgeScans("stale"), "expected stale pattern to be pruned")
	assert.Equal(t, 1, tr.AgeScans("fresh"), "expected fresh pattern to survive pruning")
}

func TestShouldExcludeFromChurnFiltersNonSignalFiles(t *testing.T) {
	cases := map[string]bool{
		"go.sum":                   true,
		"CHANGELOG.md":             true,
		"docs/guide.md":            true,
		"vendor/foo/bar.go":        true,
		"internal/scan/scanner.go": false,
		"cmd/drift/main.go":        false,
	}
	for path, want := range cases {
		assert.Equal(t, want, ShouldExcludeFromChurn(path), "ShouldExcludeFromChurn(%q)", path)
	}
}

func TestFilterChangedFilesKeepsOnlySignalFiles(t *testing.T) {
	in := []string{"internal/scan/scanner.go", "go.sum", "docs/readme.md", "internal/store/store.go"}
	got := FilterChangedFiles(in)
	want := []string{"internal/scan/scanner.go", "internal/store/store.go"}
	assert.Equal(t, want, got)
}
