package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardReachabilityBFS(t *testing.T) {
	g := NewGraph(0)
	g.AddFunction(Function{ID: 1, Name: "a"})
	g.AddFunction(Function{ID: 2, Name: "b"})
	g.AddFunction(Function{ID: 3, Name: "c"})
	g.AddEdge(Edge{CallerID: 1, CalleeID: 2, Strategy: "same_file", Confidence: 0.9})
	g.AddEdge(Edge{CallerID: 2, CalleeID: 3, Strategy: "same_file", Confidence: 0.9})

	result := g.Forward([]FunctionID{1}, 5)
	_, ok := result.Reached[3]
	require.True(t, ok, "expected function 3 reachable from 1")
	assert.Equal(t, 1, result.Reached[2])
	assert.Equal(t, 2, result.Reached[3])
}

func TestRemoveFileRewritesInboundEdgesToStale(t *testing.T) {
	g := NewGraph(0)
	g.AddFunction(Function{ID: 1, FileID: 10, Name: "caller"})
	g.AddFunction(Function{ID: 2, FileID: 20, Name: "callee"})
	g.AddEdge(Edge{CallerID: 1, CalleeID: 2, Strategy: "same_file", Confidence: 0.9})

	g.RemoveFile(20)

	_, ok := g.Function(2)
	assert.False(t, ok, "expected function 2 removed")

	edges := g.out[1]
	require.Len(t, edges, 1)
	assert.Equal(t, FunctionID(0), edges[0].CalleeID)
	assert.EqualValues(t, "stale", edges[0].Strategy)
}

func TestMaxDepthSaturates(t *testing.T) {
	g := NewGraph(0)
	g.AddFunction(Function{ID: 1})
	g.AddFunction(Function{ID: 2})
	g.AddFunction(Function{ID: 3})
	g.AddEdge(Edge{CallerID: 1, CalleeID: 2})
	g.AddEdge(Edge{CallerID: 2, CalleeID: 3})

	result := g.Forward([]FunctionID{1}, 1)
	_, ok := result.Reached[3]
	assert.False(t, ok, "function 3 should not be reached at depth cap 1")
	assert.True(t, result.Saturated, "expected Saturated=true when the cap truncated the search")
}
