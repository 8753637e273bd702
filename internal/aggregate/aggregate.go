// Package aggregate implements the seven-phase cross-file pattern
// aggregation pipeline: grouping, merge, Jaccard/MinHash dedup, hierarchy
// construction, counter reconciliation, and scheduling the gold-layer
// refresh. Idempotent and restartable: repeated observations of the same
// (pattern_id, file, line) collapse into one location. See spec §4.9.
package aggregate

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/coderift/drift/internal/ids"
)

// Location is one file/line occurrence of a pattern.
type Location struct {
	FileID ids.FileID
	Line   uint
}

// Pattern is one detector observation fed into aggregation (the
// detect.Finding shape, duplicated here to avoid an import cycle between
// detect and aggregate).
type Pattern struct {
	PatternID ids.PatternID
	Category  string
	Location  Location
}

// Aggregated mirrors spec §3's AggregatedPattern: total occurrences, file
// spread, outlier count (populated later by internal/outlier), optional
// parent in the dedup hierarchy, and per-file locations.
type Aggregated struct {
	PatternID     ids.PatternID
	Category      string
	Locations     []Location
	LocationsByFile map[ids.FileID][]Location
	OutlierCount  int
	ParentPattern ids.PatternID // zero means no parent
	Children      []ids.PatternID
}

// Occurrences returns the invariant-checked occurrence count: always
// Σ locations, never tracked as a separate counter that could drift.
func (a *Aggregated) Occurrences() int { return len(a.Locations) }

// FileSpread returns the count of distinct files containing this pattern.
func (a *Aggregated) FileSpread() int { return len(a.LocationsByFile) }

// jaccardMergeThreshold flags a merge candidate; jaccardAutoMergeThreshold
// auto-merges with name-aliasing preserved (phase 3, §4.9).
const (
	jaccardMergeThreshold     = 0.85
	jaccardAutoMergeThreshold = 0.95
	minHashPopulationCutover  = 50000
	hierarchyCoverageMin      = 0.9
)

// Aggregator runs the seven phases over a batch of raw pattern
// observations, producing the final Aggregated set plus the merge/hierarchy
// decisions made along the way.
type Aggregator struct {
	byID map[ids.PatternID]*Aggregated
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byID: make(map[ids.PatternID]*Aggregated)}
}

// Ingest runs phase 1 (group) and phase 2 (merge) for one batch of
// observations. Calling Ingest twice with the same observations is a
// no-op beyond the first call — duplicate (pattern, file, line) triples
// collapse via the location set, satisfying idempotent ingest (§8).
func (ag *Aggregator) Ingest(patterns []Pattern) {
	seen := make(map[ids.PatternID]map[Location]bool)
	for _, p := range patterns {
		agg, ok := ag.byID[p.PatternID]
		if !ok {
			agg = &Aggregated{PatternID: p.PatternID, Category: p.Category, LocationsByFile: make(map[ids.FileID][]Location)}
			ag.byID[p.PatternID] = agg
		}
		if seen[p.PatternID] == nil {
			seen[p.PatternID] = existingLocationSet(agg)
		}
		if seen[p.PatternID][p.Location] {
			continue
		}
		seen[p.PatternID][p.Location] = true
		agg.Locations = append(agg.Locations, p.Location)
		agg.LocationsByFile[p.Location.FileID] = append(agg.LocationsByFile[p.Location.FileID], p.Location)
	}
}

func existingLocationSet(a *Aggregated) map[Location]bool {
	s := make(map[Location]bool, len(a.Locations))
	for _, l := range a.Locations {
		s[l] = true
	}
	return s
}

// MergeCandidate is a pair of patterns whose location-set Jaccard
// similarity crossed the merge threshold (phase 3).
type MergeCandidate struct {
	A, B       ids.PatternID
	Similarity float64
	AutoMerged bool
}

// DetectMerges runs phase 3 (pairwise Jaccard) or, above
// minHashPopulationCutover patterns, phase 4's MinHash-LSH approximation,
// returning every candidate at or above jaccardMergeThreshold. Candidates
// at or above jaccardAutoMergeThreshold are auto-merged in place (B folded
// into A, in PatternID order); B's id is dropped, not kept as an alias.
func (ag *Aggregator) DetectMerges() []MergeCandidate {
	idsList := ag.sortedIDs()
	var candidates []MergeCandidate

	if len(idsList) > minHashPopulationCutover {
		candidates = ag.detectMergesMinHash(idsList)
	} else {
		candidates = ag.detectMergesExact(idsList)
	}

	for _, c := range candidates {
		if c.Similarity >= jaccardAutoMergeThreshold {
			ag.merge(c.A, c.B)
		}
	}
	return candidates
}

func (ag *Aggregator) sortedIDs() []ids.PatternID {
	out := make([]ids.PatternID, 0, len(ag.byID))
	for id := range ag.byID {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ag *Aggregator) detectMergesExact(idsList []ids.PatternID) []MergeCandidate {
	var candidates []MergeCandidate
	for i := 0; i < len(idsList); i++ {
		for j := i + 1; j < len(idsList); j++ {
			a, b := ag.byID[idsList[i]], ag.byID[idsList[j]]
			if a.Category != b.Category {
				continue
			}
			sim := jaccard(locationSetOf(a), locationSetOf(b))
			if sim >= jaccardMergeThreshold {
				candidates = append(candidates, MergeCandidate{A: idsList[i], B: idsList[j], Similarity: sim, AutoMerged: sim >= jaccardAutoMergeThreshold})
			}
		}
	}
	return candidates
}

// detectMergesMinHash bounds the cost for large populations via MinHash
// signatures (xxhash-seeded, §4.9 phase 4) instead of exact pairwise
// Jaccard. Patterns sharing a full signature are treated as merge
// candidates; this under-approximates true Jaccard but bounds the
// comparison cost to O(n) signature builds instead of O(n^2) pair checks.
const minHashSignatureSize = 16

func (ag *Aggregator) detectMergesMinHash(idsList []ids.PatternID) []MergeCandidate {
	signatures := make(map[ids.PatternID][minHashSignatureSize]uint64, len(idsList))
	for _, id := range idsList {
		signatures[id] = minHashSignature(locationSetOf(ag.byID[id]))
	}

	bySignature := make(map[[minHashSignatureSize]uint64][]ids.PatternID)
	for _, id := range idsList {
		sig := signatures[id]
		bySignature[sig] = append(bySignature[sig], id)
	}

	var candidates []MergeCandidate
	for _, group := range bySignature {
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := ag.byID[group[i]], ag.byID[group[j]]
				if a.Category != b.Category {
					continue
				}
				sim := jaccard(locationSetOf(a), locationSetOf(b))
				if sim < jaccardMergeThreshold {
					continue
				}
				candidates = append(candidates, MergeCandidate{A: group[i], B: group[j], Similarity: sim, AutoMerged: sim >= jaccardAutoMergeThreshold})
			}
		}
	}
	return candidates
}

func minHashSignature(set map[Location]bool) [minHashSignatureSize]uint64 {
	var sig [minHashSignatureSize]uint64
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	for loc := range set {
		h := xxhash.New()
		_, _ = h.Write([]byte{byte(loc.FileID), byte(loc.FileID >> 8), byte(loc.FileID >> 16), byte(loc.FileID >> 24)})
		_, _ = h.Write([]byte{byte(loc.Line), byte(loc.Line >> 8), byte(loc.Line >> 16), byte(loc.Line >> 24)})
		base := h.Sum64()
		for i := range sig {
			seeded := base ^ (uint64(i+1) * 0x9E3779B97F4A7C15)
			if seeded < sig[i] {
				sig[i] = seeded
			}
		}
	}
	return sig
}

func locationSetOf(a *Aggregated) map[Location]bool {
	s := make(map[Location]bool, len(a.Locations))
	for _, l := range a.Locations {
		s[l] = true
	}
	return s
}

func jaccard(a, b map[Location]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for l := range a {
		if b[l] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// merge folds B's locations into A. A survives; B is removed from the
// aggregator, so Get(B) reports not found afterwards. No alias from B's
// PatternID to A is recorded.
func (ag *Aggregator) merge(a, b ids.PatternID) {
	pa, pb := ag.byID[a], ag.byID[b]
	if pa == nil || pb == nil {
		return
	}
	seen := existingLocationSet(pa)
	for _, l := range pb.Locations {
		if seen[l] {
			continue
		}
		seen[l] = true
		pa.Locations = append(pa.Locations, l)
		pa.LocationsByFile[l.FileID] = append(pa.LocationsByFile[l.FileID], l)
	}
	delete(ag.byID, b)
}

// BuildHierarchy runs phase 5: if A's locations are a ⩾90%-covered subset
// of B's and A's category matches B's (the "strictly a specialization"
// condition is approximated here by subset coverage within the same
// category, since predicate strictness itself lives in the detector, not
// the aggregator), A.Parent is set to B.
func (ag *Aggregator) BuildHierarchy() {
	idsList := ag.sortedIDs()
	for i := 0; i < len(idsList); i++ {
		for j := 0; j < len(idsList); j++ {
			if i == j {
				continue
			}
			a, b := ag.byID[idsList[i]], ag.byID[idsList[j]]
			if a == nil || b == nil || a.Category != b.Category {
				continue
			}
			if a.ParentPattern != 0 {
				continue
			}
			coverage := subsetCoverage(locationSetOf(a), locationSetOf(b))
			if coverage >= hierarchyCoverageMin && len(a.Locations) < len(b.Locations) {
				a.ParentPattern = b.PatternID
				b.Children = append(b.Children, a.PatternID)
			}
		}
	}
}

func subsetCoverage(small, large map[Location]bool) float64 {
	if len(small) == 0 {
		return 0
	}
	covered := 0
	for l := range small {
		if large[l] {
			covered++
		}
	}
	return float64(covered) / float64(len(small))
}

// Reconcile runs phase 6: recomputes every Aggregated's derived counters
// from its authoritative Locations slice, guaranteeing the §8 invariant
// `occurrences == Σ locations_by_file[f].length` holds even after merges.
func (ag *Aggregator) Reconcile() {
	for _, a := range ag.byID {
		rebuilt := make(map[ids.FileID][]Location, len(a.LocationsByFile))
		for _, l := range a.Locations {
			rebuilt[l.FileID] = append(rebuilt[l.FileID], l)
		}
		a.LocationsByFile = rebuilt
	}
}

// Snapshot returns every currently aggregated pattern, for phase 7's gold
// refresh scheduling and for persistence.
func (ag *Aggregator) Snapshot() []*Aggregated {
	out := make([]*Aggregated, 0, len(ag.byID))
	for _, a := range ag.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatternID < out[j].PatternID })
	return out
}

// Get returns one aggregated pattern by id.
func (ag *Aggregator) Get(id ids.PatternID) (*Aggregated, bool) {
	a, ok := ag.byID[id]
	return a, ok
}
