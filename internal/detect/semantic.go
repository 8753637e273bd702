package detect

import (
	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

// ResolutionLookup is the narrow slice of internal/resolve's sealed
// snapshot a SemanticDetector needs: whether a call site resolved to a
// callee at all, and at what confidence. Declared locally so detect never
// imports resolve directly. resolve.Index offers this lookup under the
// name ResolveLookup, so *resolve.Index does not satisfy the interface
// as is.
type ResolutionLookup interface {
	Resolve(fileID ids.FileID, calleeName string, line uint) (resolved bool, confidence float64)
}

// SemanticDetector flags call sites that the resolution index could not
// bind with confidence, or bound only through a low-confidence strategy —
// e.g. a call to a name that looks like a DI-injected dependency but
// never resolved. Unlike BaseDetector/LearningDetector it requires the
// resolution pass to have completed first.
type SemanticDetector struct {
	NoOpFileChange
	id         string
	category   string
	languages  []string
	index      ResolutionLookup
	minConfidence float64
}

func NewSemanticDetector(id, category string, languages []string, index ResolutionLookup, minConfidence float64) *SemanticDetector {
	return &SemanticDetector{
		id:            id,
		category:      category,
		languages:     languages,
		index:         index,
		minConfidence: minConfidence,
	}
}

func (s *SemanticDetector) ID() string          { return s.id }
func (s *SemanticDetector) Category() string    { return s.category }
func (s *SemanticDetector) Languages() []string { return s.languages }
func (s *SemanticDetector) Learn(*FileContext)  {}

func (s *SemanticDetector) Detect(ctx *FileContext) []Finding {
	if s.index == nil {
		return nil
	}
	var findings []Finding
	gast.Walk(ctx.GAST, func(n *gast.Node) {
		if n.Kind != gast.KindCall {
			return
		}
		resolved, confidence := s.index.Resolve(ctx.FileID, n.Name, n.Range.StartLine+1)
		if resolved && confidence >= s.minConfidence {
			return
		}
		findings = append(findings, Finding{
			DetectorID: s.id,
			Category:   s.category,
			FileID:     ctx.FileID,
			Line:       n.Range.StartLine + 1,
			Snippet:    n.Name,
			Confidence: confidence,
			PatternID:  ids.NewPatternID(s.id, n.Name),
		})
	})
	return findings
}
