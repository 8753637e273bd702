package graphintel

import (
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/coderift/drift/internal/callgraph"
	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

// TaintRole is one step's position in a flow (spec §6 Taint flow record).
type TaintRole string

const (
	RoleSource     TaintRole = "Source"
	RolePropagator TaintRole = "Propagator"
	RoleSanitizer  TaintRole = "Sanitizer"
	RoleSink       TaintRole = "Sink"
)

// Registry is the TOML-driven sources/sinks/sanitizers/propagators table
// per framework (spec §4.14).
type Registry struct {
	Sources     []SourceRule     `toml:"sources"`
	Sinks       []SinkRule       `toml:"sinks"`
	Sanitizers  []SanitizerRule  `toml:"sanitizers"`
	Propagators []PropagatorRule `toml:"propagators"`
}

type SourceRule struct {
	Framework  string `toml:"framework"`
	Match      string `toml:"match"`
	TaintLabel string `toml:"taint_label"`
}

type SinkRule struct {
	Framework string `toml:"framework"`
	Match     string `toml:"match"`
	CWE       string `toml:"cwe"`
}

type SanitizerRule struct {
	Framework  string   `toml:"framework"`
	Match      string   `toml:"match"`
	ClearsCWEs []string `toml:"clears_cwes"`
}

type PropagatorRule struct {
	Framework string `toml:"framework"`
	Match     string `toml:"match"`
	// ArgFlow is "argIndex->return" or "argIndex->argIndex", per §6.
	ArgFlow string `toml:"arg_flow"`
}

// LoadRegistry parses a taint-registry TOML document (spec §6).
func LoadRegistry(content []byte) (*Registry, error) {
	var r Registry
	if err := toml.Unmarshal(content, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// TaintStep is one step of a TaintFlow's code-flow trail.
type TaintStep struct {
	FileID  ids.FileID
	Line    uint
	Role    TaintRole
	Snippet string
}

// TaintFlow is the §6 derived-output record. Flows built by
// AnalyzeIntraprocedural hold a single RoleSink step; the source and the
// assignments that carried the taint are not recorded as steps.
type TaintFlow struct {
	CWE      string
	Severity string
	Steps    []TaintStep
}

// FunctionSummary is a function's interprocedural taint contract: which
// parameters, if tainted, taint the return value, and which sinks are
// transitively reachable regardless of which parameter is tainted (spec
// §4.14). Phase 2 fills in ReachableSinks from callees;
// TaintedParamsToReturn is taken as given from the initial summaries.
type FunctionSummary struct {
	TaintedParamsToReturn map[int]bool // param index -> whether tainting it taints the return
	ReachableSinks        map[string]bool // sink CWE tags transitively reachable from this function
}

// symbolicValue tracks one SSA-like name's taint label within a function
// body during phase 1's intraprocedural pass.
type symbolicValue struct {
	name    string
	tainted bool
	label   string
	cleared map[string]bool // CWEs a sanitizer has cleared this value for
}

// Analyzer runs the two-phase taint analysis of §4.14 against a function's
// GAST body plus the call graph's interprocedural summaries.
type Analyzer struct {
	registry *Registry
	graph    *callgraph.Graph
}

// NewAnalyzer creates a taint Analyzer bound to a registry and call graph.
func NewAnalyzer(registry *Registry, graph *callgraph.Graph) *Analyzer {
	return &Analyzer{registry: registry, graph: graph}
}

// AnalyzeIntraprocedural runs phase 1 over one function body: a
// mini data-flow pass over assignments and calls tracking taint labels on
// symbolic names, clearing a value at a matching sanitizer for the CWEs
// that sanitizer lists, and recording a flow when a value still tainted
// for the sink's CWE reaches a sink. Each recorded flow holds only the
// sink step.
func (a *Analyzer) AnalyzeIntraprocedural(fn *callgraph.Function, body *gast.Node) []TaintFlow {
	values := make(map[string]*symbolicValue)
	var flows []TaintFlow

	var walk func(n *gast.Node, trail []TaintStep)
	walk = func(n *gast.Node, trail []TaintStep) {
		if n == nil {
			return
		}
		switch n.Kind {
		case gast.KindCall:
			a.handleCall(fn, n, values, &flows, trail)
		case gast.KindAssignment:
			a.handleAssignment(n, values)
		}
		for _, c := range n.Children {
			walk(c, trail)
		}
	}
	walk(body, nil)
	return flows
}

func (a *Analyzer) handleAssignment(n *gast.Node, values map[string]*symbolicValue) {
	if len(n.Children) < 2 {
		return
	}
	target := n.Children[0]
	source := n.Children[1]
	if target.Kind != gast.KindIdentifier && target.Kind != gast.KindVariable {
		return
	}
	sv := &symbolicValue{name: target.Name}
	switch source.Kind {
	case gast.KindIdentifier:
		if existing, ok := values[source.Name]; ok {
			sv.tainted = existing.tainted
			sv.label = existing.label
			sv.cleared = existing.cleared
		}
	case gast.KindCall:
		if rule := a.matchSource(source.Name); rule != nil {
			sv.tainted = true
			sv.label = rule.TaintLabel
		} else {
			// Heuristic propagation: a call result inherits taint if any of
			// its identifier arguments is already tainted, covering the
			// common wrapper/helper case without a full propagator model.
			for _, arg := range source.Children {
				if arg.Kind != gast.KindIdentifier {
					continue
				}
				if existing, ok := values[arg.Name]; ok && existing.tainted {
					sv.tainted = true
					sv.label = existing.label
					break
				}
			}
		}
	}
	values[target.Name] = sv
}

func (a *Analyzer) handleCall(fn *callgraph.Function, n *gast.Node, values map[string]*symbolicValue, flows *[]TaintFlow, trail []TaintStep) {
	if rule := a.matchSanitizer(n.Name); rule != nil {
		for _, arg := range n.Children {
			if arg.Kind == gast.KindIdentifier {
				if sv, ok := values[arg.Name]; ok && sv.tainted {
					// sanitized only for the CWEs this rule clears
					if sv.cleared == nil {
						sv.cleared = make(map[string]bool)
					}
					for _, c := range rule.ClearsCWEs {
						sv.cleared[c] = true
					}
				}
			}
		}
		return
	}
	if rule := a.matchSink(n.Name); rule != nil {
		for _, arg := range n.Children {
			if arg.Kind != gast.KindIdentifier {
				continue
			}
			sv, ok := values[arg.Name]
			if !ok || !sv.tainted || sv.cleared[rule.CWE] {
				continue
			}
			steps := append(append([]TaintStep(nil), trail...),
				TaintStep{FileID: fn.FileID, Line: uint(n.Range.StartLine + 1), Role: RoleSink, Snippet: n.Name})
			*flows = append(*flows, TaintFlow{CWE: rule.CWE, Severity: severityForCWE(rule.CWE), Steps: steps})
		}
	}
}

func (a *Analyzer) matchSource(name string) *SourceRule {
	for i := range a.registry.Sources {
		if a.registry.Sources[i].Match == name {
			return &a.registry.Sources[i]
		}
	}
	return nil
}

func (a *Analyzer) matchSink(name string) *SinkRule {
	for i := range a.registry.Sinks {
		if a.registry.Sinks[i].Match == name {
			return &a.registry.Sinks[i]
		}
	}
	return nil
}

func (a *Analyzer) matchSanitizer(name string) *SanitizerRule {
	for i := range a.registry.Sanitizers {
		if a.registry.Sanitizers[i].Match == name {
			return &a.registry.Sanitizers[i]
		}
	}
	return nil
}

// sanitizerClears reports whether any registered sanitizer matching name
// clears the given CWE — sanitizer recognition is per-CWE, so a SQL escape
// does not clear an XSS sink (spec §4.14).
func (a *Analyzer) sanitizerClears(name, cwe string) bool {
	rule := a.matchSanitizer(name)
	if rule == nil {
		return false
	}
	for _, c := range rule.ClearsCWEs {
		if c == cwe {
			return true
		}
	}
	return false
}

func severityForCWE(cwe string) string {
	switch cwe {
	case "CWE-89", "CWE-78": // SQL injection, OS command injection
		return "Critical"
	case "CWE-79": // XSS
		return "High"
	default:
		return "Medium"
	}
}

// PropagateInterprocedural runs phase 2: fixed-point propagation of
// per-function taint summaries along the call graph (spec §4.14). Each
// round revisits every function in order, exactly as given, and rounds
// repeat until no summary changes or maxIterations rounds have run; there
// is no grouping into strongly connected components. Only ReachableSinks
// is merged in from direct callees; TaintedParamsToReturn is copied from
// initial unchanged.
func PropagateInterprocedural(graph *callgraph.Graph, initial map[callgraph.FunctionID]FunctionSummary, order []callgraph.FunctionID, maxIterations int) map[callgraph.FunctionID]FunctionSummary {
	summaries := make(map[callgraph.FunctionID]FunctionSummary, len(initial))
	for id, s := range initial {
		summaries[id] = s
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, id := range order {
			fn, ok := graph.Function(id)
			if !ok {
				continue
			}
			_ = fn
			current := summaries[id]
			merged := mergeCalleeSinks(graph, id, current, summaries)
			if !summaryEqual(current, merged) {
				summaries[id] = merged
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return summaries
}

func mergeCalleeSinks(graph *callgraph.Graph, id callgraph.FunctionID, current FunctionSummary, summaries map[callgraph.FunctionID]FunctionSummary) FunctionSummary {
	merged := FunctionSummary{
		TaintedParamsToReturn: copyBoolIntMap(current.TaintedParamsToReturn),
		ReachableSinks:        copyBoolMap(current.ReachableSinks),
	}
	if merged.ReachableSinks == nil {
		merged.ReachableSinks = make(map[string]bool)
	}
	forward := graph.Forward([]callgraph.FunctionID{id}, 1)
	for callee, depth := range forward.Reached {
		if depth != 1 {
			continue
		}
		calleeSummary, ok := summaries[callee]
		if !ok {
			continue
		}
		for cwe := range calleeSummary.ReachableSinks {
			merged.ReachableSinks[cwe] = true
		}
	}
	return merged
}

func copyBoolIntMap(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func summaryEqual(a, b FunctionSummary) bool {
	if len(a.ReachableSinks) != len(b.ReachableSinks) {
		return false
	}
	for k := range a.ReachableSinks {
		if !b.ReachableSinks[k] {
			return false
		}
	}
	if len(a.TaintedParamsToReturn) != len(b.TaintedParamsToReturn) {
		return false
	}
	for k, v := range a.TaintedParamsToReturn {
		if b.TaintedParamsToReturn[k] != v {
			return false
		}
	}
	return true
}

// ReverseTopologicalOrder computes a simple reverse-topological visiting
// order over the graph's functions using Kahn's algorithm on the
// condensation-free case (cycles are broken by visiting any remaining node
// with zero current in-degree, which is sufficient to drive
// PropagateInterprocedural's fixed-point loop to convergence for graphs
// the spec targets).
func ReverseTopologicalOrder(graph *callgraph.Graph, functionIDs []callgraph.FunctionID) []callgraph.FunctionID {
	inDegree := make(map[callgraph.FunctionID]int, len(functionIDs))
	for _, id := range functionIDs {
		inDegree[id] = 0
	}
	for _, id := range functionIDs {
		forward := graph.Forward([]callgraph.FunctionID{id}, 1)
		for callee, depth := range forward.Reached {
			if depth == 1 {
				if _, tracked := inDegree[callee]; tracked {
					inDegree[callee]++
				}
			}
		}
	}

	var order []callgraph.FunctionID
	remaining := make(map[callgraph.FunctionID]bool, len(functionIDs))
	for _, id := range functionIDs {
		remaining[id] = true
	}
	for len(remaining) > 0 {
		var zero []callgraph.FunctionID
		for id := range remaining {
			if inDegree[id] == 0 {
				zero = append(zero, id)
			}
		}
		if len(zero) == 0 {
			// cycle: take any remaining node to guarantee progress
			for id := range remaining {
				zero = append(zero, id)
				break
			}
		}
		sort.Slice(zero, func(i, j int) bool { return zero[i] < zero[j] })
		for _, id := range zero {
			order = append(order, id)
			delete(remaining, id)
			forward := graph.Forward([]callgraph.FunctionID{id}, 1)
			for callee, depth := range forward.Reached {
				if depth == 1 {
					inDegree[callee]--
				}
			}
		}
	}
	// Reverse: callees' summaries must be available before their callers'.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
