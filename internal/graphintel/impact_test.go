package graphintel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/callgraph"
)

func TestComputeImpactWeighsEntryPointsAndSensitivity(t *testing.T) {
	g := buildChainGraph()
	sens := FunctionSensitivity{4: SensitivityCredentials}
	e := NewEngine(g, sens, 10)

	entryPoints := map[callgraph.FunctionID]bool{1: true}
	impact := ComputeImpact(e, 2, entryPoints, 20)
	assert.NotZero(t, impact.AffectedCount, "expected nonzero blast radius")
	assert.Equal(t, SensitivityCredentials, impact.SensitivityMax, "expected sensitivity to propagate through callees")
	assert.Greater(t, impact.RiskScore, 0, "expected a positive risk score")
}

func TestFindDeadCodeSkipsFalsePositiveClasses(t *testing.T) {
	g := callgraph.NewGraph(0)
	g.AddFunction(callgraph.Function{ID: 1, IsEntryPoint: true})
	g.AddFunction(callgraph.Function{ID: 2})

	classify := func(id callgraph.FunctionID) []FalsePositiveClass {
		if id == 1 {
			return []FalsePositiveClass{FPEntryPoint}
		}
		return nil
	}

	dead := FindDeadCode(g, []callgraph.FunctionID{1, 2}, classify)
	require.Len(t, dead, 1)
	assert.Equal(t, callgraph.FunctionID(2), dead[0].FunctionID)
}

func TestFindDeadCodeSkipsFunctionsWithInboundEdges(t *testing.T) {
	g := buildChainGraph()
	classify := func(callgraph.FunctionID) []FalsePositiveClass { return nil }
	dead := FindDeadCode(g, []callgraph.FunctionID{1, 2, 3, 4}, classify)
	for _, d := range dead {
		assert.Equal(t, callgraph.FunctionID(1), d.FunctionID, "expected only the root of the chain to be flagged dead")
	}
}
