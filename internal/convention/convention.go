// Package convention implements the Bayesian convention discovery engine of
// spec §4.12: a Dirichlet-Multinomial model over each gene's alternatives,
// a contested-gap rule, five-way category assignment, and the
// promotion/expiry/review lifecycle. Operator overrides round-trip through
// a human-editable `.drift.kdl` file read with kdl-go; this file is the
// only KDL document the module reads (project settings are TOML).
package convention

import (
	"fmt"
	"sort"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/coderift/drift/internal/confidence"
)

// Category is the five-way classification of §4.12.
type Category string

const (
	CategoryUniversal      Category = "Universal"
	CategoryProjectSpecific Category = "ProjectSpecific"
	CategoryEmerging       Category = "Emerging"
	CategoryLegacy         Category = "Legacy"
	CategoryContested      Category = "Contested"
)

// Status is the gene's lifecycle state.
type Status string

const (
	StatusDiscovered Status = "Discovered"
	StatusApproved   Status = "Approved"
	StatusReview     Status = "Review" // see DESIGN.md §9: Approved demotes here, not straight to Expired
	StatusExpired    Status = "Expired"
)

// Discovery thresholds, spec §4.12.
const (
	minOccurrences  = 3
	minFileSpread   = 2
	dominanceRatio  = 0.60
	contestedGap    = 0.20
	universalSpread = 0.80
	promotionSpread = 5
	expiryDays      = 90
	reviewDays      = 90
	relearnFraction = 0.10
)

// Alternative is one observed allele of a convention gene (e.g. one of
// three naming styles for a category of identifier).
type Alternative struct {
	Name  string
	Count int
}

// Gene is one discovered or candidate convention (spec §3 Convention).
type Gene struct {
	ID                string
	Category          Category
	Status            Status
	Alternatives      []Alternative
	Dominant          string
	PosteriorMeans    map[string]float64
	FileSpread        int
	TotalFiles        int // denominator for the universal-spread check
	Tier              confidence.Tier
	Momentum          confidence.Momentum
	DaysSinceSeen     int
	OperatorOverride  bool // operator action pins Status regardless of automatic rules
}

// total sums all alternative counts.
func (g *Gene) total() int {
	n := 0
	for _, a := range g.Alternatives {
		n += a.Count
	}
	return n
}

// posteriorMeans computes the Dirichlet-Multinomial posterior mean per
// allele with a uniform Dirichlet(1,...,1) prior: (count+1)/(total+k).
func posteriorMeans(alts []Alternative) map[string]float64 {
	k := len(alts)
	total := 0
	for _, a := range alts {
		total += a.Count
	}
	out := make(map[string]float64, k)
	for _, a := range alts {
		out[a.Name] = (float64(a.Count) + 1) / (float64(total) + float64(k))
	}
	return out
}

// Discover evaluates the §4.12 discovery triggers for a candidate gene:
// minimum occurrences >= 3, file spread >= 2, and a dominance ratio
// (posterior mean of the leading allele) >= 0.60. Returns the built Gene
// and whether it met the trigger.
func Discover(id string, alternatives []Alternative, fileSpread, totalFiles int) (*Gene, bool) {
	g := &Gene{ID: id, Alternatives: alternatives, FileSpread: fileSpread, TotalFiles: totalFiles, Status: StatusDiscovered}
	total := g.total()
	if total < minOccurrences || fileSpread < minFileSpread {
		return g, false
	}
	g.PosteriorMeans = posteriorMeans(alternatives)
	dominant, topMean := dominantAllele(g.PosteriorMeans)
	g.Dominant = dominant
	if topMean < dominanceRatio {
		return g, false
	}
	return g, true
}

func dominantAllele(means map[string]float64) (string, float64) {
	var best string
	var bestMean float64 = -1
	names := make([]string, 0, len(means))
	for n := range means {
		names = append(names, n)
	}
	sort.Strings(names) // deterministic tie-break
	for _, n := range names {
		if means[n] > bestMean {
			best, bestMean = n, means[n]
		}
	}
	return best, bestMean
}

// topTwo returns the two highest posterior means, for the contested rule.
func topTwo(means map[string]float64) (top, second float64) {
	vals := make([]float64, 0, len(means))
	for _, v := range means {
		vals = append(vals, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	if len(vals) > 0 {
		top = vals[0]
	}
	if len(vals) > 1 {
		second = vals[1]
	}
	return top, second
}

// IsContested applies §4.12's contested rule: if the gap between the top
// two alternatives is under 20 percentage points, the gene is Contested
// and the minority must not be flagged as a deviation.
func IsContested(means map[string]float64) bool {
	if len(means) < 2 {
		return false
	}
	top, second := topTwo(means)
	return (top - second) < contestedGap
}

// AssignCategory applies the §4.12 category rules in priority order:
// Contested first (it overrides the others), then Universal, Emerging,
// Legacy, else ProjectSpecific.
func AssignCategory(g *Gene) Category {
	if IsContested(g.PosteriorMeans) {
		return CategoryContested
	}
	spreadFraction := 0.0
	if g.TotalFiles > 0 {
		spreadFraction = float64(g.FileSpread) / float64(g.TotalFiles)
	}
	if spreadFraction >= universalSpread && g.Tier == confidence.TierEstablished {
		return CategoryUniversal
	}
	if g.Momentum == confidence.MomentumRising && tierAtLeast(g.Tier, confidence.TierEmerging) {
		return CategoryEmerging
	}
	if g.Momentum == confidence.MomentumFalling || g.DaysSinceSeen > expiryDays {
		return CategoryLegacy
	}
	return CategoryProjectSpecific
}

var tierRank = map[confidence.Tier]int{
	confidence.TierUncertain:   0,
	confidence.TierTentative:   1,
	confidence.TierEmerging:    2,
	confidence.TierEstablished: 3,
}

func tierAtLeast(t, floor confidence.Tier) bool {
	return tierRank[t] >= tierRank[floor]
}

// AdvanceLifecycle applies promotion, review-demotion, and expiry rules to
// a Gene in place, skipping any gene with an operator override (operator
// decisions always win over the automatic rules).
func AdvanceLifecycle(g *Gene) {
	if g.OperatorOverride {
		return
	}
	switch g.Status {
	case StatusDiscovered:
		if g.Tier == confidence.TierEstablished && g.FileSpread >= promotionSpread {
			g.Status = StatusApproved
		}
	case StatusApproved:
		if g.DaysSinceSeen > reviewDays {
			g.Status = StatusReview
		}
	case StatusReview:
		if g.DaysSinceSeen <= reviewDays {
			// re-observed: automatic re-promotion, per DESIGN.md §9 decision
			g.Status = StatusApproved
		} else if g.DaysSinceSeen > expiryDays {
			g.Status = StatusExpired
		}
	}
}

// ShouldFullRelearn implements the L3 invalidation rule of §4.12: a
// full re-learn is required when more than 10% of files changed since the
// last learn pass; otherwise an incremental update suffices.
func ShouldFullRelearn(changedFiles, totalFiles int) bool {
	if totalFiles <= 0 {
		return true
	}
	return float64(changedFiles)/float64(totalFiles) > relearnFraction
}

// ReviewEntry is one operator decision persisted to .drift.kdl, allowing a
// reviewer to approve/reject a discovered-but-unreviewed convention outside
// the store, re-ingested on the next scan.
type ReviewEntry struct {
	GeneID   string
	Decision string // "approved" | "rejected"
	Note     string
}

// LoadReviewFile parses a .drift.kdl document into its review entries:
// one `convention "<id>"` node per gene with optional `decision` and
// `note` children.
func LoadReviewFile(content string) ([]ReviewEntry, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse .drift.kdl: %w", err)
	}
	var entries []ReviewEntry
	for _, n := range doc.Nodes {
		if nodeName(n) != "convention" {
			continue
		}
		entry := ReviewEntry{}
		if id, ok := firstStringArg(n); ok {
			entry.GeneID = id
		}
		for _, cn := range n.Children {
			switch nodeName(cn) {
			case "decision":
				if s, ok := firstStringArg(cn); ok {
					entry.Decision = s
				}
			case "note":
				if s, ok := firstStringArg(cn); ok {
					entry.Note = s
				}
			}
		}
		if entry.GeneID != "" {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// SaveReviewFile renders review entries back to KDL text. Hand-formatted
// rather than routed through a generic encoder, since the document shape
// is fixed and small (one `convention` node per gene).
func SaveReviewFile(entries []ReviewEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "convention %q {\n", e.GeneID)
		if e.Decision != "" {
			fmt.Fprintf(&b, "    decision %q\n", e.Decision)
		}
		if e.Note != "" {
			fmt.Fprintf(&b, "    note %q\n", e.Note)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// ApplyReview folds one operator ReviewEntry onto a Gene, pinning its
// status and marking it override-protected from the automatic lifecycle
// rules.
func ApplyReview(g *Gene, entry ReviewEntry) {
	switch entry.Decision {
	case "approved":
		g.Status = StatusApproved
		g.OperatorOverride = true
	case "rejected":
		g.Status = StatusExpired
		g.OperatorOverride = true
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if n == nil || len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
