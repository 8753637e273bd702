package scan

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long the watcher waits after the last filesystem
// event in a burst before flushing a batch of changed paths. Editors and
// build tools commonly emit several events per save (truncate, write,
// chmod); batching avoids triggering one incremental scan per event.
const WatchDebounce = 300 * time.Millisecond

// Watcher emits on Changed the relative paths of files that changed since
// the last flush, driven by OS filesystem notifications rather than a
// repeated full walk; it runs no scan or diff itself. The engine's own scan
// loop stays synchronous and blocking (§5); Watcher is an external
// trigger an IDE integration or long-running daemon can attach to.
type Watcher struct {
	scanner *Scanner
	fsw     *fsnotify.Watcher
	Changed chan []string
	errs    chan error
}

// NewWatcher recursively registers every non-excluded directory under
// s.root with the OS notifier and returns a Watcher ready for Run.
func NewWatcher(s *Scanner) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		scanner: s,
		fsw:     fsw,
		Changed: make(chan []string, 1),
		errs:    make(chan error, 1),
	}

	if err := w.addDirs(); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirs() error {
	return filepath.Walk(w.scanner.root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != w.scanner.root && w.scanner.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run drains filesystem events until ctx is cancelled, emitting batches of
// changed relative paths on Changed after WatchDebounce has elapsed since
// the last event. Excluded paths (vendor/, build output, gitignored
// files) are dropped before ever entering a batch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := map[string]struct{}{}
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]string, 0, len(pending))
		for p := range pending {
			batch = append(batch, p)
		}
		pending = map[string]struct{}{}
		select {
		case w.Changed <- batch:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				flush()
				return nil
			}
			if w.scanner.shouldExclude(ev.Name) {
				continue
			}
			pending[w.scanner.relSlash(ev.Name)] = struct{}{}

			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.scanner.shouldExcludeDir(ev.Name) {
					_ = w.fsw.Add(ev.Name)
				}
			}

			if timer == nil {
				timer = time.NewTimer(WatchDebounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timerC:
				default:
				}
			}
			timer.Reset(WatchDebounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				continue
			}
			select {
			case w.errs <- err:
			default:
			}

		case <-timerC:
			flush()
			timer = nil
			timerC = nil
		}
	}
}

// Errors surfaces non-fatal notifier errors (e.g. a watched directory
// removed out from under the watcher); Run keeps going after one.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops watching; Run's deferred fsw.Close handles the common case,
// this is for callers that never start Run.
func (w *Watcher) Close() error { return w.fsw.Close() }
