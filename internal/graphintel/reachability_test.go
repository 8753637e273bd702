package graphintel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/callgraph"
)

func buildChainGraph() *callgraph.Graph {
	g := callgraph.NewGraph(0)
	for i := 1; i <= 4; i++ {
		g.AddFunction(callgraph.Function{ID: callgraph.FunctionID(i), FileID: 1, Name: "f"})
	}
	g.AddEdge(callgraph.Edge{CallerID: 1, CalleeID: 2, Confidence: 1})
	g.AddEdge(callgraph.Edge{CallerID: 2, CalleeID: 3, Confidence: 1})
	g.AddEdge(callgraph.Edge{CallerID: 3, CalleeID: 4, Confidence: 1})
	return g
}

func TestQueryCachesResult(t *testing.T) {
	g := buildChainGraph()
	e := NewEngine(g, nil, 10)
	r1 := e.Query(1, DirectionForward, 20)
	require.Len(t, r1.Reached, 4, "expected 4 reached (including root)")
	r2 := e.Query(1, DirectionForward, 20)
	assert.Len(t, r2.Reached, len(r1.Reached), "expected cached result to match")
}

func TestInvalidateClearsCache(t *testing.T) {
	g := buildChainGraph()
	e := NewEngine(g, nil, 10)
	e.Query(1, DirectionForward, 20)
	e.Invalidate()
	assert.Empty(t, e.cache.values, "expected cache cleared after invalidate")
}

func TestMaxSensitivityPropagatesFromReachedFunctions(t *testing.T) {
	g := buildChainGraph()
	sens := FunctionSensitivity{4: SensitivityCredentials}
	e := NewEngine(g, sens, 10)
	r := e.Query(1, DirectionForward, 20)
	assert.Equal(t, SensitivityCredentials, r.MaxSensitivity, "expected max sensitivity Credentials")
}

func TestFindPathReturnsRootFirstTargetLast(t *testing.T) {
	g := buildChainGraph()
	e := NewEngine(g, nil, 10)
	path := e.FindPath(1, 4, DirectionForward, 20)
	require.NotEmpty(t, path, "expected path from 1 to 4")
	assert.Equal(t, callgraph.FunctionID(1), path[0])
	assert.Equal(t, callgraph.FunctionID(4), path[len(path)-1])
}

func TestFindPathUnreachableReturnsNil(t *testing.T) {
	g := buildChainGraph()
	g.AddFunction(callgraph.Function{ID: 99, FileID: 1, Name: "isolated"})
	e := NewEngine(g, nil, 10)
	path := e.FindPath(1, 99, DirectionForward, 20)
	assert.Nil(t, path, "expected nil path to an isolated function")
}
