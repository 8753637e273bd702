package store

import (
	"context"
	"database/sql"

	drifterrors "github.com/coderift/drift/internal/errors"
)

// FileStat is the scanner's view of one on-disk file, keyed by path with
// its current content hash — the input to ScanDiff.
type FileStat struct {
	Path        string
	ContentHash uint64
	ByteSize    int64
	Language    string
	MtimeEpoch  int64
}

// ScanDiffResult buckets the incoming file set against the files table by
// content hash (spec §4.2 S1: incremental re-scan classifies every file as
// exactly one of Added/Modified/Unchanged/Deleted).
type ScanDiffResult struct {
	Added     []FileStat
	Modified  []FileStat
	Unchanged []FileStat
	Deleted   []string
}

// Diff compares the given file set against the current files table. It
// performs no writes; callers apply the result via ApplyDiff inside the
// scan's ingest batch.
func (s *Store) Diff(ctx context.Context, current []FileStat) (ScanDiffResult, error) {
	var result ScanDiffResult

	existing := make(map[string]uint64)
	rows, err := s.Reader().QueryContext(ctx, `SELECT path, content_hash FROM files`)
	if err != nil {
		return result, drifterrors.NewStorageError("diff_read", true, err)
	}
	func() {
		defer rows.Close()
		for rows.Next() {
			var path string
			var hash uint64
			if err = rows.Scan(&path, &hash); err != nil {
				return
			}
			existing[path] = hash
		}
	}()
	if err != nil {
		return result, drifterrors.NewStorageError("diff_scan", true, err)
	}
	if err := rows.Err(); err != nil {
		return result, drifterrors.NewStorageError("diff_rows", true, err)
	}

	seen := make(map[string]bool, len(current))
	for _, f := range current {
		seen[f.Path] = true
		prevHash, ok := existing[f.Path]
		switch {
		case !ok:
			result.Added = append(result.Added, f)
		case prevHash != f.ContentHash:
			result.Modified = append(result.Modified, f)
		default:
			result.Unchanged = append(result.Unchanged, f)
		}
	}
	for path := range existing {
		if !seen[path] {
			result.Deleted = append(result.Deleted, path)
		}
	}
	return result, nil
}

// ApplyDiff upserts Added/Modified rows and removes Deleted ones (cascading
// to functions, call_edges, detections, boundaries via ON DELETE CASCADE)
// inside one write transaction.
func (s *Store) ApplyDiff(ctx context.Context, diff ScanDiffResult) error {
	return s.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for _, f := range append(diff.Added, diff.Modified...) {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO files (path, content_hash, byte_size, language, mtime_epoch)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(path) DO UPDATE SET content_hash=excluded.content_hash,
					byte_size=excluded.byte_size, language=excluded.language,
					mtime_epoch=excluded.mtime_epoch, parse_error=NULL`,
				f.Path, f.ContentHash, f.ByteSize, f.Language, f.MtimeEpoch); err != nil {
				return err
			}
		}
		for _, path := range diff.Deleted {
			if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
				return err
			}
		}
		return nil
	})
}
