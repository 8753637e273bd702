package detect

import (
	"regexp"

	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

// BaseDetector matches a fixed regex or GAST node-kind pattern with no
// learning phase: the rule is the same whether this is the first file
// scanned or the thousandth. Grounded on the closed
// naming/path-pattern tables a component detector matches against.
type BaseDetector struct {
	NoOpFileChange
	id         string
	category   string
	languages  []string
	kindFilter gast.Kind
	namePattern *regexp.Regexp
}

// NewBaseDetector builds a detector that fires whenever a GAST node of
// kindFilter has a Name matching namePattern (nil matches any name).
func NewBaseDetector(id, category string, languages []string, kindFilter gast.Kind, namePattern *regexp.Regexp) *BaseDetector {
	return &BaseDetector{
		id:          id,
		category:    category,
		languages:   languages,
		kindFilter:  kindFilter,
		namePattern: namePattern,
	}
}

func (b *BaseDetector) ID() string          { return b.id }
func (b *BaseDetector) Category() string    { return b.category }
func (b *BaseDetector) Languages() []string { return b.languages }
func (b *BaseDetector) Learn(*FileContext)  {}

func (b *BaseDetector) Detect(ctx *FileContext) []Finding {
	var findings []Finding
	gast.Walk(ctx.GAST, func(n *gast.Node) {
		if n.Kind != b.kindFilter {
			return
		}
		if b.namePattern != nil && !b.namePattern.MatchString(n.Name) {
			return
		}
		findings = append(findings, Finding{
			DetectorID: b.id,
			Category:   b.category,
			FileID:     ctx.FileID,
			Line:       n.Range.StartLine + 1,
			Snippet:    n.Name,
			Confidence: 1.0,
			PatternID:  ids.NewPatternID(b.id, n.Name),
		})
	})
	return findings
}
