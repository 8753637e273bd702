// Package ids provides interned small-integer handles for file paths and
// symbol names, plus the stable content hash used to key patterns across
// scans and processes.
package ids

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// FileID is a small stable handle for an interned file path.
type FileID uint32

// SymbolID is a small stable handle for an interned qualified symbol name.
type SymbolID uint32

// PatternID is a stable 64-bit hash of a detector id plus its normalized
// pattern body. Unlike FileID/SymbolID it does not require a shared
// interner to compare equal across processes or scans.
type PatternID uint64

// NewPatternID hashes a detector id and pattern body into a stable id.
func NewPatternID(detectorID, body string) PatternID {
	h := xxhash.New()
	_, _ = h.WriteString(detectorID)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(body)
	return PatternID(h.Sum64())
}

// Interner is a concurrent build-time string interner. During a scan,
// Intern is safe to call from many goroutines; Seal freezes the table into
// a read-only snapshot for the query phase. Interners are process-wide but
// re-created per run — persisted rows store the interned string bodies,
// not the handles.
type Interner struct {
	mu      sync.RWMutex
	byValue map[string]uint32
	byID    []string
	sealed  bool
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{byValue: make(map[string]uint32, 1024)}
}

// Intern returns the handle for s, allocating one if s hasn't been seen.
// After Seal, a string already interned still returns its handle; a new
// string panics — mutation after seal is a programmer error.
func (in *Interner) Intern(s string) uint32 {
	in.mu.RLock()
	if id, ok := in.byValue[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.sealed {
		panic("ids: Intern called on a sealed Interner")
	}
	if id, ok := in.byValue[s]; ok {
		return id
	}
	id := uint32(len(in.byID))
	in.byID = append(in.byID, s)
	in.byValue[s] = id
	return id
}

// Lookup returns the interned string for id, if any.
func (in *Interner) Lookup(id uint32) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.byID) {
		return "", false
	}
	return in.byID[id], true
}

// Seal freezes the interner against further mutation.
func (in *Interner) Seal() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.sealed = true
}

// Len returns the number of interned entries.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byID)
}

// PathInterner normalizes path separators before interning so that FileIDs
// are stable across platforms for the same logical path.
type PathInterner struct {
	*Interner
}

// NewPathInterner creates a PathInterner.
func NewPathInterner() *PathInterner {
	return &PathInterner{Interner: NewInterner()}
}

// InternPath normalizes p to forward slashes and interns it as a FileID.
func (p *PathInterner) InternPath(path string) FileID {
	normalized := filepath.ToSlash(path)
	return FileID(p.Intern(normalized))
}

// LookupPath returns the normalized path for a FileID.
func (p *PathInterner) LookupPath(id FileID) (string, bool) {
	return p.Lookup(uint32(id))
}

// SymbolInterner supports intern-by-concat for qualified symbol names
// (e.g. "pkg.Type.Method"): InternQualified takes the parts, joins them
// with "." and interns the joined string.
type SymbolInterner struct {
	*Interner
}

// NewSymbolInterner creates a SymbolInterner.
func NewSymbolInterner() *SymbolInterner {
	return &SymbolInterner{Interner: NewInterner()}
}

// InternQualified interns the dot-joined qualified name and returns a SymbolID.
func (s *SymbolInterner) InternQualified(parts ...string) SymbolID {
	return SymbolID(s.Intern(strings.Join(parts, ".")))
}
