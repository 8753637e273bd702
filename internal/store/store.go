// Package store implements the engine's single embedded relational store:
// one write-serialized writer connection, a round-robin reader pool, a
// bounded batch-ingest channel, linear SQL migrations, and the post-scan
// materialized-summary refresh. See spec §4.2.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	drifterrors "github.com/coderift/drift/internal/errors"
)

// Options configures Open.
type Options struct {
	Path             string
	BusyTimeoutMs    int
	MmapSizeBytes    int64
	PageCacheBytes   int64
	ReaderPoolSize   int
	IngestBatchSize  int
	IngestChannelCap int
	InMemory         bool
}

func (o Options) withDefaults() Options {
	if o.BusyTimeoutMs == 0 {
		o.BusyTimeoutMs = 5000
	}
	if o.MmapSizeBytes == 0 {
		o.MmapSizeBytes = 256 << 20
	}
	if o.PageCacheBytes == 0 {
		o.PageCacheBytes = 64 << 20
	}
	if o.ReaderPoolSize == 0 {
		o.ReaderPoolSize = 4
	}
	if o.IngestBatchSize == 0 {
		o.IngestBatchSize = 500
	}
	if o.IngestChannelCap == 0 {
		o.IngestChannelCap = 1024
	}
	return o
}

// Store is the engine's single embedded database handle. Exactly one
// writer connection is used (mutex-protected; BEGIN IMMEDIATE for a
// file-backed store, the driver's default BEGIN in memory); readers
// come from a fixed-size query_only pool. In-memory mode routes readers
// through the writer since separate in-memory connections are independent
// databases (spec §4.2).
type Store struct {
	opts Options

	writerMu sync.Mutex
	writer   *sql.DB

	readers   []*sql.DB
	readerIdx uint64
	readerMu  sync.Mutex

	ingest *ingestWriter

	lockPath string
}

// Open opens (creating if absent) the store at opts.Path, applies pending
// migrations, and starts the ingest writer goroutine.
func Open(ctx context.Context, opts Options) (*Store, error) {
	opts = opts.withDefaults()

	dsn := opts.Path
	if opts.InMemory {
		dsn = ":memory:"
	}
	writerDSN := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(on)&_txlock=immediate", dsn, opts.BusyTimeoutMs)
	if opts.InMemory {
		writerDSN = dsn
	}

	writer, err := sql.Open("sqlite", writerDSN)
	if err != nil {
		return nil, drifterrors.NewStorageError("open", false, err)
	}
	writer.SetMaxOpenConns(1)

	if _, err := writer.ExecContext(ctx, fmt.Sprintf("PRAGMA mmap_size=%d", opts.MmapSizeBytes)); err != nil {
		return nil, drifterrors.NewStorageError("pragma_mmap", false, err)
	}
	if _, err := writer.ExecContext(ctx, fmt.Sprintf("PRAGMA cache_size=-%d", opts.PageCacheBytes/1024)); err != nil {
		return nil, drifterrors.NewStorageError("pragma_cache", false, err)
	}

	s := &Store{opts: opts, writer: writer, lockPath: dsn + ".lock"}

	if err := s.migrate(ctx); err != nil {
		return nil, err
	}

	if !opts.InMemory {
		for i := 0; i < opts.ReaderPoolSize; i++ {
			readerDSN := fmt.Sprintf("file:%s?mode=ro&_pragma=query_only(on)&_pragma=busy_timeout(%d)", dsn, opts.BusyTimeoutMs)
			rd, err := sql.Open("sqlite", readerDSN)
			if err != nil {
				return nil, drifterrors.NewStorageError("open_reader", false, err)
			}
			s.readers = append(s.readers, rd)
		}
	}

	s.ingest = newIngestWriter(s, opts.IngestChannelCap, opts.IngestBatchSize)
	return s, nil
}

// Reader returns a reader connection via round-robin dispatch. In-memory
// stores route through the writer to avoid the independent-database
// isolation problem of separate :memory: connections.
func (s *Store) Reader() *sql.DB {
	if s.opts.InMemory || len(s.readers) == 0 {
		return s.writer
	}
	s.readerMu.Lock()
	idx := s.readerIdx
	s.readerIdx++
	s.readerMu.Unlock()
	return s.readers[idx%uint64(len(s.readers))]
}

// WithWriteTx runs fn inside a BEGIN IMMEDIATE transaction on the sole
// writer connection, serialized by writerMu. Used directly by callers that
// need synchronous writes (migrations, gold-layer refresh); the bulk
// ingest path goes through Ingest/Close instead.
func (s *Store) WithWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return drifterrors.NewStorageError("begin", true, err)
	}
	if _, err := tx.ExecContext(ctx, "PRAGMA foreign_keys=on"); err != nil {
		_ = tx.Rollback()
		return drifterrors.NewStorageError("begin", true, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return drifterrors.NewStorageError("commit", true, err)
	}
	return nil
}

// Ingest submits a batch of rows to the bounded ingest channel. Blocks
// (backpressure) when the channel is full, per spec §5.
func (s *Store) Ingest(batch Batch) {
	s.ingest.submit(batch)
}

// Drain blocks until the ingest writer has committed everything queued
// up to this call and the writer goroutine has processed its backlog.
// Drain is deterministic at scan end (spec §4.2).
func (s *Store) Drain(ctx context.Context) error {
	return s.ingest.drain(ctx)
}

// Close drains the ingest writer, stops it, and closes all connections.
func (s *Store) Close() error {
	s.ingest.stop()
	for _, rd := range s.readers {
		_ = rd.Close()
	}
	return s.writer.Close()
}

// Healthcheck reports pool depth and writer-queue length; a read-only
// surface useful to external consumers without performing network I/O.
type Healthcheck struct {
	ReaderPoolSize int
	QueuedBatches  int
	LastCommitAt   time.Time
}

func (s *Store) Health() Healthcheck {
	return Healthcheck{
		ReaderPoolSize: len(s.readers),
		QueuedBatches:  s.ingest.queueDepth(),
		LastCommitAt:   s.ingest.lastCommitTime(),
	}
}
