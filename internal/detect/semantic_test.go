package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

type stubLookup struct {
	resolved   bool
	confidence float64
}

func (s stubLookup) Resolve(fileID ids.FileID, calleeName string, line uint) (bool, float64) {
	return s.resolved, s.confidence
}

func TestSemanticDetectorFlagsUnresolvedCalls(t *testing.T) {
	root := &gast.Node{
		Kind: gast.KindFile,
		Children: []*gast.Node{
			{Kind: gast.KindCall, Name: "doSomething"},
		},
	}
	d := NewSemanticDetector("unresolved-call", "resolution", []string{"go"}, stubLookup{resolved: false}, 0.5)
	findings := d.Detect(fileCtx(root))
	require.Len(t, findings, 1)
}

func TestSemanticDetectorSkipsConfidentCalls(t *testing.T) {
	root := &gast.Node{
		Kind: gast.KindFile,
		Children: []*gast.Node{
			{Kind: gast.KindCall, Name: "doSomething"},
		},
	}
	d := NewSemanticDetector("unresolved-call", "resolution", []string{"go"}, stubLookup{resolved: true, confidence: 0.9}, 0.5)
	findings := d.Detect(fileCtx(root))
	assert.Empty(t, findings, "expected no findings for a confidently resolved call")
}
