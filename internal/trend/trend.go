// Package trend tracks how a pattern's occurrence frequency moves from scan
// to scan. It feeds internal/confidence's momentum factor (PreviousFreq,
// CurrentFreq, DaysSinceSeen) and internal/convention's last-seen decay with
// an actual time series instead of a single before/after snapshot.
//
// The shape is borrowed from a commit-churn frequency analyzer that
// aggregates per-file edit rate from git log output, but that signal
// doesn't exist here: this package has no git dependency, and the thing
// that needs a frequency trend is a detected pattern's occurrence rate
// across scans, not a file's edit rate across commits. The aggregation
// shape (group by key, keep first/last seen timestamps, compute a rate)
// carries over directly; the git plumbing underneath it does not.
package trend

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coderift/drift/internal/confidence"
)

// ScanPoint is one scan's observation of a pattern's occurrence frequency.
type ScanPoint struct {
	ScanID     string
	RecordedAt time.Time
	Frequency  float64 // occurrences / total observations that scan
	FileSpread int
}

// Series is the ordered history of a single pattern's ScanPoints, oldest
// first.
type Series struct {
	PatternID string
	Points    []ScanPoint
}

func (s *Series) last() *ScanPoint {
	if len(s.Points) == 0 {
		return nil
	}
	return &s.Points[len(s.Points)-1]
}

func (s *Series) previous() *ScanPoint {
	if len(s.Points) < 2 {
		return nil
	}
	return &s.Points[len(s.Points)-2]
}

// Tracker holds an in-memory frequency Series per pattern ID. A scan engine
// records one point per pattern per completed scan; Tracker never shells
// out or reads history from disk, it just accumulates what it's told.
type Tracker struct {
	mu     sync.RWMutex
	series map[string]*Series
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{series: make(map[string]*Series)}
}

// Record appends a frequency observation for patternID. occurrences/total
// is the frequency for this scan; fileSpread is how many distinct files
// contributed an occurrence. Recording the scanID of the pattern's most
// recent point again is a no-op; only that last point is compared, so an
// older scanID is appended again.
func (t *Tracker) Record(patternID, scanID string, recordedAt time.Time, occurrences, total, fileSpread int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.series[patternID]
	if !ok {
		s = &Series{PatternID: patternID}
		t.series[patternID] = s
	}
	if last := s.last(); last != nil && last.ScanID == scanID {
		return
	}

	freq := 0.0
	if total > 0 {
		freq = float64(occurrences) / float64(total)
	}
	s.Points = append(s.Points, ScanPoint{
		ScanID:     scanID,
		RecordedAt: recordedAt,
		Frequency:  freq,
		FileSpread: fileSpread,
	})
}

// CurrentFreq returns the most recently recorded frequency for patternID, or
// 0 if it has never been observed.
func (t *Tracker) CurrentFreq(patternID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.series[patternID]
	if !ok {
		return 0
	}
	if p := s.last(); p != nil {
		return p.Frequency
	}
	return 0
}

// PreviousFreq returns the frequency recorded the scan before the most
// recent one, or 0 if there is no prior scan (a brand new pattern has no
// momentum yet).
func (t *Tracker) PreviousFreq(patternID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.series[patternID]
	if !ok {
		return 0
	}
	if p := s.previous(); p != nil {
		return p.Frequency
	}
	return 0
}

// AgeScans returns how many scans a pattern has been observed across,
// feeding confidence's age factor.
func (t *Tracker) AgeScans(patternID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.series[patternID]
	if !ok {
		return 0
	}
	return len(s.Points)
}

// DaysSinceSeen returns the whole number of days between asOf and the last
// recorded scan for patternID. A pattern that has never been observed
// reports 0; callers distinguish "never seen" with AgeScans == 0.
func (t *Tracker) DaysSinceSeen(patternID string, asOf time.Time) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.series[patternID]
	if !ok {
		return 0
	}
	p := s.last()
	if p == nil {
		return 0
	}
	days := int(asOf.Sub(p.RecordedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Observation assembles a confidence.Observation for patternID, filling in
// the momentum and temporal-decay fields (PreviousFreq, CurrentFreq,
// DaysSinceSeen, AgeScans) from the tracked series and the caller-supplied
// per-scan trial counts. Call Record for this scan before Observation so
// CurrentFreq reflects the scan being scored.
func (t *Tracker) Observation(patternID, scanID string, conforming, total int, perFileCounts []int, asOf time.Time) confidence.Observation {
	return confidence.Observation{
		Conforming:    conforming,
		Total:         total,
		PerFileCounts: perFileCounts,
		AgeScans:      t.AgeScans(patternID),
		PreviousFreq:  t.PreviousFreq(patternID),
		CurrentFreq:   t.CurrentFreq(patternID),
		DaysSinceSeen: t.DaysSinceSeen(patternID, asOf),
		ScanID:        scanID,
	}
}

// Prune discards patterns whose last recorded scan is older than maxAge, so
// a long-lived Tracker doesn't grow unbounded as patterns disappear.
func (t *Tracker) Prune(asOf time.Time, maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, s := range t.series {
		if p := s.last(); p == nil || asOf.Sub(p.RecordedAt) > maxAge {
			delete(t.series, id)
		}
	}
}

// excludedPatterns are glob patterns for changed-file paths that shouldn't
// count toward the convention re-learn churn ratio: docs, lockfiles,
// generated and vendored code change often but carry no convention signal.
// Carried over from a standard commit-churn-filter exclusion list.
var excludedPatterns = []string{
	"CHANGELOG*", "HISTORY*", "CHANGES*", "NEWS*", "RELEASE*",
	"*.md", "*.rst", "*.txt",
	"docs/*", "doc/*", "documentation/*",
	"*.min.js", "*.min.css", "*.bundle.js", "*.bundle.css", "*.generated.*",
	"*.d.ts",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "go.sum", "Cargo.lock", "composer.lock", "Gemfile.lock",
	"dist/*", "build/*", "out/*", "target/*", "bin/*", "obj/*",
	"vendor/*", "node_modules/*", "third_party/*",
	".idea/*", ".vscode/*",
	"coverage/*", "test-results/*",
}

var excludedExact = map[string]bool{
	"CHANGELOG.md": true, "go.sum": true, "package-lock.json": true,
	"yarn.lock": true, "pnpm-lock.yaml": true, "Cargo.lock": true,
	"composer.lock": true, "Gemfile.lock": true,
}

// ShouldExcludeFromChurn reports whether path should be dropped from the
// changed-file set before computing the convention re-learn ratio.
func ShouldExcludeFromChurn(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	lowerPath := strings.ToLower(normalized)
	base := filepath.Base(path)
	lowerBase := strings.ToLower(base)

	if excludedExact[base] {
		return true
	}
	for _, pattern := range excludedPatterns {
		if matchesPattern(lowerPath, lowerBase, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func matchesPattern(lowerPath, lowerBase, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return lowerBase == pattern || lowerPath == pattern
	}
	if matched, _ := filepath.Match(pattern, lowerPath); matched {
		return true
	}
	if matched, _ := filepath.Match(pattern, lowerBase); matched {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(lowerPath, prefix+"/") || strings.Contains(lowerPath, "/"+prefix+"/") {
			return true
		}
	}
	return false
}

// FilterChangedFiles drops files that shouldn't count toward a re-learn
// churn ratio, returning only the ones with real convention signal.
func FilterChangedFiles(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if !ShouldExcludeFromChurn(f) {
			out = append(out, f)
		}
	}
	return out
}
