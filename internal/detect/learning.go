package detect

import (
	"sync"

	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

// Extractor pulls the alternative value a LearningDetector should tally
// out of one GAST node, e.g. an indentation style or a naming casing.
// Returning ok=false means the node doesn't participate in this detector's
// alternative space.
type Extractor func(n *gast.Node) (alternative string, ok bool)

// LearningDetector runs a two-pass dominant-alternative scheme: Learn
// tallies every alternative's occurrence count across the whole project,
// and Detect (run only after learning completes) flags any file whose
// alternative differs from the project-wide dominant one. This is the
// same tally-then-flag shape a per-project naming-convention detector
// needs, generalized from a single closed rule set to an open Extractor.
type LearningDetector struct {
	NoOpFileChange
	id        string
	category  string
	languages []string
	extractor Extractor

	mu     sync.Mutex
	tally  map[string]int
	sealed bool
	dominant string
}

func NewLearningDetector(id, category string, languages []string, extractor Extractor) *LearningDetector {
	return &LearningDetector{
		id:        id,
		category:  category,
		languages: languages,
		extractor: extractor,
		tally:     make(map[string]int),
	}
}

func (l *LearningDetector) ID() string          { return l.id }
func (l *LearningDetector) Category() string    { return l.category }
func (l *LearningDetector) Languages() []string { return l.languages }

func (l *LearningDetector) Learn(ctx *FileContext) {
	gast.Walk(ctx.GAST, func(n *gast.Node) {
		alt, ok := l.extractor(n)
		if !ok {
			return
		}
		l.mu.Lock()
		l.tally[alt]++
		l.mu.Unlock()
	})
}

// Seal freezes the tally into a dominant alternative. Must be called
// after the learning pass and before Detect is ever invoked.
func (l *LearningDetector) Seal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sealed {
		return
	}
	best, bestCount := "", -1
	for alt, count := range l.tally {
		if count > bestCount {
			best, bestCount = alt, count
		}
	}
	l.dominant = best
	l.sealed = true
}

func (l *LearningDetector) Detect(ctx *FileContext) []Finding {
	if !l.sealed {
		l.Seal()
	}
	var findings []Finding
	total := 0
	for _, c := range l.tally {
		total += c
	}

	gast.Walk(ctx.GAST, func(n *gast.Node) {
		alt, ok := l.extractor(n)
		if !ok || alt == l.dominant {
			return
		}
		confidence := 0.5
		if total > 0 {
			confidence = float64(l.tally[l.dominant]) / float64(total)
		}
		findings = append(findings, Finding{
			DetectorID: l.id,
			Category:   l.category,
			FileID:     ctx.FileID,
			Line:       n.Range.StartLine + 1,
			Snippet:    alt,
			Confidence: confidence,
			PatternID:  ids.NewPatternID(l.id, l.dominant),
		})
	})
	return findings
}

// Dominant returns the alternative found to be project-wide conventional,
// for use by internal/convention when recording a discovered rule.
func (l *LearningDetector) Dominant() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dominant
}
