package graphintel

import (
	"sort"

	"github.com/coderift/drift/internal/callgraph"
)

// TestFunction is one detected test entry point (spec §4.15 test topology).
type TestFunction struct {
	FunctionID callgraph.FunctionID
	Framework  string
}

// TestCoverageMap is each test's reachable production-function set,
// computed once per scan and reused for minimum test set selection.
type TestCoverageMap map[callgraph.FunctionID]map[callgraph.FunctionID]bool

// BuildCoverageMap maps each test function to the production functions
// reachable from its body, via forward reachability over the call graph.
func BuildCoverageMap(engine *Engine, tests []TestFunction, maxDepth int) TestCoverageMap {
	coverage := make(TestCoverageMap, len(tests))
	for _, tf := range tests {
		reached := engine.Query(tf.FunctionID, DirectionForward, maxDepth)
		set := make(map[callgraph.FunctionID]bool, len(reached.Reached))
		for fn := range reached.Reached {
			set[fn] = true
		}
		coverage[tf.FunctionID] = set
	}
	return coverage
}

// selectivity is the size of a test's reachable set — a proxy for how
// "specific" a failure localizes to, per §4.15's selectivity ordering
// (fewest-functions-reached first).
func selectivity(coverage TestCoverageMap, test callgraph.FunctionID) int {
	return len(coverage[test])
}

// MinimumTestSet returns the union of tests whose reachable set
// intersects the changed-function set, sorted by selectivity ascending
// (spec §4.15).
func MinimumTestSet(coverage TestCoverageMap, changed map[callgraph.FunctionID]bool) []callgraph.FunctionID {
	var relevant []callgraph.FunctionID
	for test, reached := range coverage {
		for fn := range changed {
			if reached[fn] {
				relevant = append(relevant, test)
				break
			}
		}
	}
	sort.Slice(relevant, func(i, j int) bool {
		si, sj := selectivity(coverage, relevant[i]), selectivity(coverage, relevant[j])
		if si != sj {
			return si < sj
		}
		return relevant[i] < relevant[j]
	})
	return relevant
}
