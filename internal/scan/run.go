package scan

import (
	"context"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Result is the outcome of a full project walk: every discovered file plus
// any non-fatal per-file errors. An unreadable file is not one of the
// errors: it is listed in Files with a skip reason.
type Result struct {
	Files     []File
	Errors    []error
	Cancelled bool
}

// Run walks root with a bounded number of concurrent readers (work-stealing
// via golang.org/x/sync/errgroup + a semaphore sized to GOMAXPROCS), hashing
// and language-tagging every surviving file.
func Run(ctx context.Context, s *Scanner) (Result, error) {
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var result Result

	walkErr := s.Walk(gctx, func(path string, info os.FileInfo) error {
		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			f, err := s.ReadFile(path, info)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return nil
			}
			result.Files = append(result.Files, f)
			return nil
		})
		return nil
	})

	waitErr := g.Wait()

	if walkErr == context.Canceled || s.cancelled_() {
		result.Cancelled = true
		return result, nil
	}
	if walkErr != nil {
		return result, walkErr
	}
	if waitErr != nil {
		return result, waitErr
	}
	return result, nil
}
