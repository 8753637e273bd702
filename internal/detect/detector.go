// Package detect implements the detection engine: a closed set of
// detector variants, each walking a file's GAST in its own Detect call,
// plus a TOML-defined pattern extension mechanism. See spec §4.5.
package detect

import (
	"sync"

	"github.com/coderift/drift/internal/gast"
	"github.com/coderift/drift/internal/ids"
)

// Finding is one raw detection emitted by a Detector, before aggregation.
type Finding struct {
	DetectorID string
	Category   string
	FileID     ids.FileID
	Line       uint
	Snippet    string
	Confidence float64
	PatternID  ids.PatternID
}

// FileContext carries everything a Detector needs to examine one file: its
// GAST, language, raw content for snippet extraction, and any pre-extracted
// string literals (populated by the go-fast fast path for JS/TS).
type FileContext struct {
	FileID   ids.FileID
	Path     string
	Language string
	Content  []byte
	GAST     *gast.Node
	Literals []Literal
}

// Literal is one string literal pulled out ahead of the GAST walk, so
// literal-pattern detectors never need to descend the tree themselves.
type Literal struct {
	Value string
	Line  uint
}

// Detector is implemented by every pattern family. Learn is called once
// per file during the learning pass (LearningDetector uses it to build a
// frequency table); Detect emits findings during the single detection
// pass. OnFileChange lets a detector invalidate cached per-file state on
// incremental re-scans; detectors that hold no such state can embed
// NoOpFileChange.
type Detector interface {
	ID() string
	Category() string
	Languages() []string
	Learn(ctx *FileContext)
	Detect(ctx *FileContext) []Finding
}

// FileChangeAware is implemented by detectors that cache per-file state
// across scans and need to evict it when a file is modified or removed.
type FileChangeAware interface {
	OnFileChange(fileID ids.FileID)
}

// NoOpFileChange satisfies FileChangeAware for detectors with no
// per-file cache to invalidate.
type NoOpFileChange struct{}

func (NoOpFileChange) OnFileChange(ids.FileID) {}

// Registry is the closed set of registered detectors, keyed by ID.
// Registration happens at startup from compiled-in defaults plus any TOML
// pattern file; the set is never mutated once a scan begins.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
	byLang    map[string][]Detector
}

func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
		byLang:    make(map[string][]Detector),
	}
}

func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detectors[d.ID()] = d
	for _, lang := range d.Languages() {
		r.byLang[lang] = append(r.byLang[lang], d)
	}
}

func (r *Registry) ForLanguage(lang string) []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Detector(nil), r.byLang[lang]...)
}

func (r *Registry) Get(id string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[id]
	return d, ok
}

func (r *Registry) All() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		out = append(out, d)
	}
	return out
}
