// Package scan implements the engine's parallel filesystem walk: gitignore
// and .driftignore exclusion, content hashing, language detection, and the
// cancellation/backpressure contract the rest of the pipeline depends on.
// See spec §4.1.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/coderift/drift/internal/config"
	"github.com/coderift/drift/internal/store"
)

// MaxFileSize is the default per-file byte cap; files larger are skipped
// and recorded as such rather than read in full.
const MaxFileSize = 1 << 20

// File is one discovered, hashed file ready for parsing.
type File struct {
	Path        string
	RelPath     string
	ContentHash uint64
	Content     []byte
	ByteSize    int64
	Language    string
	MtimeEpoch  int64
	Skipped     SkipReason
}

// SkipReason records why a file was discovered but not read in full.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipTooLarge   SkipReason = "too_large"
	SkipBinary     SkipReason = "binary"
	SkipUnreadable SkipReason = "unreadable"
)

// Scanner walks a project root applying exclusion rules from the gitignore
// parser, a dedicated .driftignore file, and config include/exclude globs.
type Scanner struct {
	root         string
	gitignore    *config.GitignoreParser
	driftignore  *config.GitignoreParser
	excludeGlobs []string
	includeGlobs []string
	maxFileSize  int64
	cancelled    int32
}

// Options configures a Scanner beyond its root directory.
type Options struct {
	RespectGitignore  bool
	RespectDriftignore bool
	ExcludeGlobs      []string
	IncludeGlobs      []string
	MaxFileSizeBytes  int64
}

func NewScanner(root string, opts Options) *Scanner {
	s := &Scanner{
		root:         root,
		excludeGlobs: opts.ExcludeGlobs,
		includeGlobs: opts.IncludeGlobs,
		maxFileSize:  opts.MaxFileSizeBytes,
	}
	if s.maxFileSize == 0 {
		s.maxFileSize = MaxFileSize
	}
	if opts.RespectGitignore {
		gp := config.NewGitignoreParser()
		_ = gp.LoadGitignore(root)
		s.gitignore = gp
	}
	if opts.RespectDriftignore {
		dp := config.NewGitignoreParser()
		_ = dp.LoadFile(filepath.Join(root, ".driftignore"))
		s.driftignore = dp
	}
	return s
}

// Cancel requests the in-flight Walk stop at the next polled file boundary.
func (s *Scanner) Cancel() { atomic.StoreInt32(&s.cancelled, 1) }

func (s *Scanner) cancelled_() bool { return atomic.LoadInt32(&s.cancelled) != 0 }

// Walk traverses root, invoking visit for every file that survives
// exclusion rules. It returns early (wrapped in context.Canceled) if ctx is
// cancelled or Cancel was called.
func (s *Scanner) Walk(ctx context.Context, visit func(path string, info os.FileInfo) error) error {
	visited := make(map[string]bool)

	return filepath.Walk(s.root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if s.cancelled_() {
			return context.Canceled
		}
		if walkErr != nil {
			return nil
		}

		if info.IsDir() {
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			if visited[real] {
				return filepath.SkipDir
			}
			visited[real] = true

			if path != s.root && s.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.shouldExclude(path) {
			return nil
		}
		return visit(path, info)
	})
}

func (s *Scanner) relSlash(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (s *Scanner) shouldExcludeDir(path string) bool {
	rel := s.relSlash(path)
	if s.gitignore != nil && s.gitignore.ShouldIgnore(rel, true) {
		return true
	}
	if s.driftignore != nil && s.driftignore.ShouldIgnore(rel, true) {
		return true
	}
	return false
}

func (s *Scanner) shouldExclude(path string) bool {
	rel := s.relSlash(path)
	if s.gitignore != nil && s.gitignore.ShouldIgnore(rel, false) {
		return true
	}
	if s.driftignore != nil && s.driftignore.ShouldIgnore(rel, false) {
		return true
	}
	for _, pat := range s.excludeGlobs {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
	}
	if len(s.includeGlobs) > 0 {
		included := false
		for _, pat := range s.includeGlobs {
			if matched, _ := doublestar.Match(pat, rel); matched {
				included = true
				break
			}
		}
		if !included {
			return true
		}
	}
	return false
}

// ReadFile loads path, hashing and language-tagging it. Oversized or
// binary-sniffed files are returned with Content nil and Skipped set.
func (s *Scanner) ReadFile(path string, info os.FileInfo) (File, error) {
	f := File{
		Path:       path,
		RelPath:    s.relSlash(path),
		ByteSize:   info.Size(),
		MtimeEpoch: info.ModTime().Unix(),
		Language:   DetectLanguage(path, nil),
	}

	if info.Size() > s.maxFileSize {
		f.Skipped = SkipTooLarge
		return f, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		f.Skipped = SkipUnreadable
		return f, nil
	}

	if looksBinary(content) {
		f.Skipped = SkipBinary
		return f, nil
	}

	f.Content = content
	f.ContentHash = xxhash.Sum64(content)
	f.Language = DetectLanguage(path, content)
	return f, nil
}

// ToFileStat projects a File into the store's diff input shape.
func (f File) ToFileStat() store.FileStat {
	return store.FileStat{
		Path:        f.RelPath,
		ContentHash: f.ContentHash,
		ByteSize:    f.ByteSize,
		Language:    f.Language,
		MtimeEpoch:  f.MtimeEpoch,
	}
}

// looksBinary applies the same low-cost heuristic as the rest of the
// corpus: a NUL byte anywhere in the first chunk means binary.
func looksBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	for i := 0; i < n; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
