package detect

import "github.com/coderift/drift/internal/gast"

// Visitor dispatches one file to every detector registered for that
// file's language. Each detector's Learn/Detect walks the GAST itself, so
// a file's tree is walked once per applicable detector; the visitor does
// not share a single walk between detectors.
type Visitor struct {
	registry *Registry
}

func NewVisitor(r *Registry) *Visitor {
	return &Visitor{registry: r}
}

// Run executes the learning pass (if learn is true) or the detection pass
// over ctx, returning every finding emitted by applicable detectors.
func (v *Visitor) Run(ctx *FileContext, learn bool) []Finding {
	detectors := v.registry.ForLanguage(ctx.Language)
	if len(detectors) == 0 {
		return nil
	}

	if learn {
		for _, d := range detectors {
			d.Learn(ctx)
		}
		return nil
	}

	var findings []Finding
	for _, d := range detectors {
		findings = append(findings, d.Detect(ctx)...)
	}
	return findings
}

// NodeCount reports how many GAST nodes one detector's walk touches for
// ctx, for telemetry/property-test purposes.
func (v *Visitor) NodeCount(ctx *FileContext) int {
	return gast.CountNodes(ctx.GAST)
}
