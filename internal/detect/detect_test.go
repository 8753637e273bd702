package detect

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/gast"
)

func fileCtx(root *gast.Node) *FileContext {
	return &FileContext{FileID: 1, Language: "go", GAST: root}
}

func TestBaseDetectorMatchesKindAndName(t *testing.T) {
	root := &gast.Node{
		Kind: gast.KindFile,
		Children: []*gast.Node{
			{Kind: gast.KindFunction, Name: "HandleRequest"},
			{Kind: gast.KindFunction, Name: "compute"},
		},
	}
	d := NewBaseDetector("handler-naming", "naming", []string{"go"}, gast.KindFunction, regexp.MustCompile(`^Handle`))
	findings := d.Detect(fileCtx(root))
	require.Len(t, findings, 1)
	assert.Equal(t, "HandleRequest", findings[0].Snippet)
}

func TestLearningDetectorFlagsMinorityAlternative(t *testing.T) {
	extractor := func(n *gast.Node) (string, bool) {
		if n.Kind != gast.KindVariable {
			return "", false
		}
		return n.Name, true
	}
	d := NewLearningDetector("quote-style", "style", []string{"go"}, extractor)

	majority := &gast.Node{Kind: gast.KindFile, Children: []*gast.Node{
		{Kind: gast.KindVariable, Name: "double"},
		{Kind: gast.KindVariable, Name: "double"},
		{Kind: gast.KindVariable, Name: "double"},
	}}
	minority := &gast.Node{Kind: gast.KindFile, Children: []*gast.Node{
		{Kind: gast.KindVariable, Name: "single"},
	}}

	d.Learn(fileCtx(majority))
	d.Learn(fileCtx(minority))
	d.Seal()

	assert.Equal(t, "double", d.Dominant(), "expected dominant alternative 'double'")

	findings := d.Detect(fileCtx(minority))
	require.Len(t, findings, 1)
	assert.Equal(t, "single", findings[0].Snippet)

	findings = d.Detect(fileCtx(majority))
	assert.Empty(t, findings, "expected no findings against the dominant file")
}

func TestRegistryGroupsByLanguage(t *testing.T) {
	r := NewRegistry()
	r.Register(NewBaseDetector("a", "cat", []string{"go"}, gast.KindFunction, nil))
	r.Register(NewBaseDetector("b", "cat", []string{"python"}, gast.KindFunction, nil))

	assert.Len(t, r.ForLanguage("go"), 1)
	assert.Len(t, r.ForLanguage("python"), 1)
	assert.Len(t, r.All(), 2)
}
