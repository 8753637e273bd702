// Package resolve builds the per-scan resolution index: a sharded,
// concurrently-populated table of defined/imported/exported names per file,
// sealed into an immutable snapshot that answers call-site resolution
// queries via six ranked strategies. See spec §4.6.
package resolve

import (
	"sort"
	"strings"
	"sync"

	"github.com/hbollon/go-edlib"

	"github.com/coderift/drift/internal/ids"
)

// Strategy names the resolution path that bound a call site, in priority
// order (first match wins; recorded on the resulting edge).
type Strategy string

const (
	StrategySameFile   Strategy = "same_file"
	StrategyReceiver   Strategy = "receiver_type"
	StrategyDI         Strategy = "dependency_injection"
	StrategyImportChain Strategy = "import_chain"
	StrategyExported   Strategy = "exported_name"
	StrategyFuzzy      Strategy = "fuzzy"
	StrategyUnresolved Strategy = "unresolved"
)

// baseConfidence is the high/medium/low band each strategy contributes
// before any per-call adjustment, per §4.6's ranked list.
var baseConfidence = map[Strategy]float64{
	StrategySameFile:    0.97,
	StrategyReceiver:    0.92,
	StrategyDI:          0.80,
	StrategyImportChain: 0.65,
	StrategyExported:    0.55,
	StrategyFuzzy:       0.0, // computed from the similarity score, capped below strategy 5
}

// strategy5Floor is the minimum confidence strategy 5 (exported-name match)
// ever records; strategy 6's contribution must never reach it (§9 open
// question, resolved in DESIGN.md).
const strategy5Floor = 0.55
const fuzzyEpsilon = 0.01

// Definition is one symbol defined in a file, available for same-file and
// exported-name resolution.
type Definition struct {
	FileID ids.FileID
	Name   string
	// ReceiverType is non-empty for methods with a known receiver/class type.
	ReceiverType string
}

// ImportEdge records that FileID imports a name (possibly renamed) from a
// module; Module is the raw import path/specifier as written in source,
// not yet resolved to a FileID (cross-file resolution happens by name
// matching against every other file's exports, per §4.6 strategy 4/5).
type ImportEdge struct {
	FileID ids.FileID
	Name   string
	Module string
}

// CallSite is one unresolved call the resolver will attempt to bind.
type CallSite struct {
	FileID       ids.FileID
	CalleeName   string
	Line         uint
	ReceiverType string // empty when the call has no known receiver
	// LooksInjected is true when the callee name or its enclosing
	// parameter matches a recognized DI hint (constructor parameter named
	// after an interface, `@Inject`-style annotation, etc.). Set by whoever
	// builds the CallSite; ResolveLookup always leaves it false.
	LooksInjected bool
}

// Resolution is the outcome of binding one CallSite.
type Resolution struct {
	CalleeFileID ids.FileID
	CalleeName   string
	Strategy     Strategy
	Confidence   float64
	Resolved     bool
}

// Builder accumulates per-file contributions concurrently via sharded
// locks, then Seal()s into a read-only Index. No further mutation is
// permitted after Seal: the index is built once per scan, then frozen.
type Builder struct {
	shards []shard
}

type shard struct {
	mu          sync.Mutex
	definitions []Definition
	imports     []ImportEdge
	exports     []Definition
}

const shardCount = 32

// NewBuilder creates an empty, concurrency-ready Builder.
func NewBuilder() *Builder {
	return &Builder{shards: make([]shard, shardCount)}
}

func (b *Builder) shardFor(fileID ids.FileID) *shard {
	return &b.shards[uint32(fileID)%shardCount]
}

// AddDefinitions records one file's defined symbols.
func (b *Builder) AddDefinitions(fileID ids.FileID, defs []Definition) {
	s := b.shardFor(fileID)
	s.mu.Lock()
	s.definitions = append(s.definitions, defs...)
	s.mu.Unlock()
}

// AddImports records one file's import edges.
func (b *Builder) AddImports(fileID ids.FileID, imports []ImportEdge) {
	s := b.shardFor(fileID)
	s.mu.Lock()
	s.imports = append(s.imports, imports...)
	s.mu.Unlock()
}

// AddExports records one file's exported symbols (a subset of its
// definitions visible to strategy 5 regardless of import relationship).
func (b *Builder) AddExports(fileID ids.FileID, exports []Definition) {
	s := b.shardFor(fileID)
	s.mu.Lock()
	s.exports = append(s.exports, exports...)
	s.mu.Unlock()
}

// Seal finalizes every shard into one immutable Index. Called exactly once
// per scan, after every file's contribution has been added.
func (b *Builder) Seal() *Index {
	idx := &Index{
		byFileAndName: make(map[ids.FileID]map[string][]Definition),
		byName:        make(map[string][]Definition),
		exportedByName: make(map[string][]Definition),
		importsByFile: make(map[ids.FileID][]ImportEdge),
	}
	for i := range b.shards {
		s := &b.shards[i]
		for _, d := range s.definitions {
			if idx.byFileAndName[d.FileID] == nil {
				idx.byFileAndName[d.FileID] = make(map[string][]Definition)
			}
			idx.byFileAndName[d.FileID][d.Name] = append(idx.byFileAndName[d.FileID][d.Name], d)
			idx.byName[d.Name] = append(idx.byName[d.Name], d)
			idx.allNames = append(idx.allNames, d.Name)
		}
		for _, e := range s.exports {
			idx.exportedByName[e.Name] = append(idx.exportedByName[e.Name], e)
		}
		for _, imp := range s.imports {
			idx.importsByFile[imp.FileID] = append(idx.importsByFile[imp.FileID], imp)
		}
	}
	sort.Strings(idx.allNames)
	idx.allNames = dedupSorted(idx.allNames)
	idx.sealed = true
	return idx
}

func dedupSorted(s []string) []string {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Index is the sealed resolution snapshot. Safe for concurrent read-only
// use by every subsequent pipeline stage; WithFuzzyThreshold is its only
// setter and is not safe to call concurrently with Resolve.
type Index struct {
	byFileAndName  map[ids.FileID]map[string][]Definition
	byName         map[string][]Definition
	exportedByName map[string][]Definition
	importsByFile  map[ids.FileID][]ImportEdge
	allNames       []string
	sealed         bool
	fuzzyThreshold float64
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler similarity strategy 6
// requires to bind a call (default 0.85, per §4.6).
func (idx *Index) WithFuzzyThreshold(t float64) *Index {
	idx.fuzzyThreshold = t
	return idx
}

func (idx *Index) threshold() float64 {
	if idx.fuzzyThreshold <= 0 {
		return 0.85
	}
	return idx.fuzzyThreshold
}

// Resolve binds one call site using the six strategies of §4.6, in order;
// the first strategy that produces a match wins and its name is recorded.
func (idx *Index) Resolve(call CallSite) Resolution {
	// Strategy 1: same-file direct definition.
	if defs, ok := idx.byFileAndName[call.FileID][call.CalleeName]; ok && len(defs) > 0 {
		return Resolution{CalleeFileID: defs[0].FileID, CalleeName: call.CalleeName, Strategy: StrategySameFile, Confidence: baseConfidence[StrategySameFile], Resolved: true}
	}

	// Strategy 2: method call resolved via receiver type.
	if call.ReceiverType != "" {
		for _, d := range idx.byName[call.CalleeName] {
			if d.ReceiverType == call.ReceiverType {
				return Resolution{CalleeFileID: d.FileID, CalleeName: call.CalleeName, Strategy: StrategyReceiver, Confidence: baseConfidence[StrategyReceiver], Resolved: true}
			}
		}
	}

	// Strategy 3: dependency-injection hint.
	if call.LooksInjected {
		if defs, ok := idx.byName[call.CalleeName]; ok && len(defs) > 0 {
			return Resolution{CalleeFileID: defs[0].FileID, CalleeName: call.CalleeName, Strategy: StrategyDI, Confidence: baseConfidence[StrategyDI], Resolved: true}
		}
	}

	// Strategy 4: import chain — the exporting module's file exports this name.
	for _, imp := range idx.importsByFile[call.FileID] {
		if imp.Name != call.CalleeName {
			continue
		}
		if defs, ok := idx.exportedByName[call.CalleeName]; ok && len(defs) > 0 {
			return Resolution{CalleeFileID: defs[0].FileID, CalleeName: call.CalleeName, Strategy: StrategyImportChain, Confidence: baseConfidence[StrategyImportChain], Resolved: true}
		}
	}

	// Strategy 5: exported-name match across the whole project.
	if defs, ok := idx.exportedByName[call.CalleeName]; ok && len(defs) > 0 {
		return Resolution{CalleeFileID: defs[0].FileID, CalleeName: call.CalleeName, Strategy: StrategyExported, Confidence: baseConfidence[StrategyExported], Resolved: true}
	}

	// Strategy 6: fuzzy name match, above threshold only, capped below
	// strategy 5's recorded floor (§9 open question resolution).
	best, bestScore := "", 0.0
	for _, name := range idx.allNames {
		if name == call.CalleeName {
			continue
		}
		score, err := edlib.StringsSimilarity(strings.ToLower(call.CalleeName), strings.ToLower(name), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore >= idx.threshold() {
		defs := idx.byName[best]
		if len(defs) > 0 {
			capped := bestScore
			if capped >= strategy5Floor {
				capped = strategy5Floor - fuzzyEpsilon
			}
			return Resolution{CalleeFileID: defs[0].FileID, CalleeName: best, Strategy: StrategyFuzzy, Confidence: capped, Resolved: true}
		}
	}

	return Resolution{CalleeName: call.CalleeName, Strategy: StrategyUnresolved, Resolved: false}
}

// ResolveLookup has the parameters and results of the Resolve method of
// detect.ResolutionLookup, the narrow interface the SemanticDetector family
// uses so internal/detect never imports internal/resolve. Because the
// method is named ResolveLookup and Index.Resolve takes a CallSite, *Index
// does not itself satisfy that interface.
func (idx *Index) ResolveLookup(fileID ids.FileID, calleeName string, line uint) (bool, float64) {
	res := idx.Resolve(CallSite{FileID: fileID, CalleeName: calleeName, Line: line})
	return res.Resolved, res.Confidence
}
