package graphintel

import "github.com/coderift/drift/internal/callgraph"

// FalsePositiveClass names one of the ten well-defined dead-code
// false-positive classes of spec §4.15.
type FalsePositiveClass string

const (
	FPEntryPoint        FalsePositiveClass = "EntryPoint"
	FPFrameworkHook      FalsePositiveClass = "FrameworkHook"
	FPExportedSymbol     FalsePositiveClass = "ExportedSymbol"
	FPDynamicDispatch    FalsePositiveClass = "DynamicDispatch"
	FPTestOnlyCaller     FalsePositiveClass = "TestOnlyCaller"
	FPInterfaceImpl      FalsePositiveClass = "InterfaceImplementation"
	FPReflectionTarget   FalsePositiveClass = "ReflectionTarget"
	FPGeneratedCode      FalsePositiveClass = "GeneratedCode"
	FPMainFunction       FalsePositiveClass = "MainFunction"
	FPBuildTagGuarded    FalsePositiveClass = "BuildTagGuarded"
)

// Impact is the §6 Impact record: blast radius weighted by entry-point
// ancestors and the maximum sensitivity encountered.
type Impact struct {
	Root            callgraph.FunctionID
	AffectedCount   int
	SensitivityMax  Sensitivity
	RiskScore       int // 0-100
}

// ComputeImpact runs the §4.15 blast-radius calculation: transitive
// callers union transitive callees of root, weighted by the count of
// entry-point ancestors among the callers and the max sensitivity reached
// in either direction.
func ComputeImpact(engine *Engine, root callgraph.FunctionID, entryPoints map[callgraph.FunctionID]bool, maxDepth int) Impact {
	callers := engine.Query(root, DirectionInverse, maxDepth)
	callees := engine.Query(root, DirectionForward, maxDepth)

	affected := make(map[callgraph.FunctionID]bool, len(callers.Reached)+len(callees.Reached))
	for fn := range callers.Reached {
		affected[fn] = true
	}
	for fn := range callees.Reached {
		affected[fn] = true
	}

	entryAncestors := 0
	for fn := range callers.Reached {
		if entryPoints[fn] {
			entryAncestors++
		}
	}

	maxSensitivity := callers.MaxSensitivity
	if callees.MaxSensitivity > maxSensitivity {
		maxSensitivity = callees.MaxSensitivity
	}

	risk := riskScore(len(affected), entryAncestors, maxSensitivity)
	return Impact{Root: root, AffectedCount: len(affected), SensitivityMax: maxSensitivity, RiskScore: risk}
}

// riskScore blends blast-radius size, entry-point exposure, and
// sensitivity into a bounded 0-100 score. Entry-point exposure and
// sensitivity dominate: a small blast radius reaching a Credentials field
// from a public entry point should still read as high risk.
func riskScore(affectedCount, entryAncestors int, sensitivity Sensitivity) int {
	sizeComponent := affectedCount
	if sizeComponent > 40 {
		sizeComponent = 40
	}
	entryComponent := entryAncestors * 10
	if entryComponent > 30 {
		entryComponent = 30
	}
	sensitivityComponent := int(sensitivity) * 8 // 0,8,16,24,32
	score := sizeComponent + entryComponent + sensitivityComponent
	if score > 100 {
		score = 100
	}
	return score
}

// DeadCodeCandidate is a function with no inbound call edges after
// filtering the ten false-positive classes.
type DeadCodeCandidate struct {
	FunctionID callgraph.FunctionID
}

// FindDeadCode walks every function in the graph, flagging those with no
// inbound edges that also don't fall into any false-positive class.
func FindDeadCode(graph *callgraph.Graph, functionIDs []callgraph.FunctionID, classify func(callgraph.FunctionID) []FalsePositiveClass) []DeadCodeCandidate {
	var out []DeadCodeCandidate
	for _, id := range functionIDs {
		inbound := graph.Inverse([]callgraph.FunctionID{id}, 1)
		hasCaller := false
		for fn, depth := range inbound.Reached {
			if depth == 1 && fn != id {
				hasCaller = true
				break
			}
		}
		if hasCaller {
			continue
		}
		if len(classify(id)) > 0 {
			continue
		}
		out = append(out, DeadCodeCandidate{FunctionID: id})
	}
	return out
}
