package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/ids"
)

// TestSameFileBeatsImport verifies S3: a same-file definition wins over an
// import of the same name, with strategy SameFile and confidence >= 0.95.
func TestSameFileBeatsImport(t *testing.T) {
	b := NewBuilder()
	b.AddDefinitions(1, []Definition{{FileID: 1, Name: "foo"}})
	b.AddExports(2, []Definition{{FileID: 2, Name: "foo"}})
	b.AddImports(1, []ImportEdge{{FileID: 1, Name: "foo", Module: "m"}})

	idx := b.Seal()
	res := idx.Resolve(CallSite{FileID: 1, CalleeName: "foo"})

	require.True(t, res.Resolved)
	assert.Equal(t, StrategySameFile, res.Strategy)
	assert.GreaterOrEqual(t, res.Confidence, 0.95)
	assert.Equal(t, ids.FileID(1), res.CalleeFileID, "expected same-file callee")
}

func TestImportChainWhenNoSameFileDefinition(t *testing.T) {
	b := NewBuilder()
	b.AddExports(2, []Definition{{FileID: 2, Name: "bar"}})
	b.AddImports(1, []ImportEdge{{FileID: 1, Name: "bar", Module: "m"}})

	idx := b.Seal()
	res := idx.Resolve(CallSite{FileID: 1, CalleeName: "bar"})
	require.True(t, res.Resolved)
	assert.Equal(t, StrategyImportChain, res.Strategy)
}

func TestFuzzyMatchAboveThresholdCappedBelowExported(t *testing.T) {
	b := NewBuilder()
	b.AddDefinitions(2, []Definition{{FileID: 2, Name: "computeTotal"}})

	idx := b.Seal()
	res := idx.Resolve(CallSite{FileID: 1, CalleeName: "computTotal"})
	require.True(t, res.Resolved, "expected a fuzzy match for a near-identical name")
	assert.Equal(t, StrategyFuzzy, res.Strategy)
	assert.Less(t, res.Confidence, strategy5Floor, "fuzzy confidence must stay below strategy 5 floor")
}

func TestUnresolvedCallDoesNotBlock(t *testing.T) {
	idx := NewBuilder().Seal()
	res := idx.Resolve(CallSite{FileID: 1, CalleeName: "totallyUnknownName"})
	assert.False(t, res.Resolved)
	assert.Equal(t, StrategyUnresolved, res.Strategy, "expected Unresolved strategy marker")
}
