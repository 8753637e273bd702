package graphintel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/callgraph"
)

func TestMinimumTestSetOrdersBySelectivity(t *testing.T) {
	g := callgraph.NewGraph(0)
	for i := 1; i <= 5; i++ {
		g.AddFunction(callgraph.Function{ID: callgraph.FunctionID(i)})
	}
	// test 10 reaches {1,2,3}; test 11 reaches only {1}
	g.AddFunction(callgraph.Function{ID: 10})
	g.AddFunction(callgraph.Function{ID: 11})
	g.AddEdge(callgraph.Edge{CallerID: 10, CalleeID: 1})
	g.AddEdge(callgraph.Edge{CallerID: 10, CalleeID: 2})
	g.AddEdge(callgraph.Edge{CallerID: 2, CalleeID: 3})
	g.AddEdge(callgraph.Edge{CallerID: 11, CalleeID: 1})

	e := NewEngine(g, nil, 10)
	tests := []TestFunction{{FunctionID: 10}, {FunctionID: 11}}
	coverage := BuildCoverageMap(e, tests, 20)

	changed := map[callgraph.FunctionID]bool{1: true}
	selected := MinimumTestSet(coverage, changed)
	require.Len(t, selected, 2, "expected both tests selected")
	assert.Equal(t, callgraph.FunctionID(11), selected[0], "expected the more selective test (11) first")
}

func TestMinimumTestSetExcludesUnrelatedTests(t *testing.T) {
	g := callgraph.NewGraph(0)
	g.AddFunction(callgraph.Function{ID: 1})
	g.AddFunction(callgraph.Function{ID: 2})
	g.AddFunction(callgraph.Function{ID: 10})
	g.AddEdge(callgraph.Edge{CallerID: 10, CalleeID: 1})

	e := NewEngine(g, nil, 10)
	coverage := BuildCoverageMap(e, []TestFunction{{FunctionID: 10}}, 20)

	changed := map[callgraph.FunctionID]bool{2: true}
	selected := MinimumTestSet(coverage, changed)
	assert.Empty(t, selected, "expected no tests selected for an unrelated change")
}
