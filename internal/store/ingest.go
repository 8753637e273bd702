package store

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// Row is a single statement plus its bound arguments. Batches are grouped
// by the writer into transactions of up to IngestBatchSize rows, per spec
// §4.2.
type Row struct {
	SQL  string
	Args []any
}

// Batch is a group of rows the caller wants committed together; they will
// never be split across two different ingest transactions, but a
// transaction may span several submitted batches up to the row cap.
type Batch struct {
	Rows []Row
}

type ingestWriter struct {
	store *Store
	ch    chan Batch
	done  chan struct{}
	wg    sync.WaitGroup

	mu         sync.Mutex
	queued     int
	lastCommit time.Time
}

func newIngestWriter(s *Store, chanCap, batchSize int) *ingestWriter {
	w := &ingestWriter{
		store: s,
		ch:    make(chan Batch, chanCap),
		done:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run(batchSize)
	return w
}

// submit blocks if the channel is full (backpressure propagates to
// producers, per spec §5).
func (w *ingestWriter) submit(b Batch) {
	w.mu.Lock()
	w.queued++
	w.mu.Unlock()
	w.ch <- b
}

func (w *ingestWriter) queueDepth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queued
}

func (w *ingestWriter) lastCommitTime() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastCommit
}

// run drains the channel, grouping rows into transactions of up to
// batchSize rows. The writer thread exits only after the channel is closed
// and every queued item has committed — drain is deterministic at scan end.
func (w *ingestWriter) run(batchSize int) {
	defer w.wg.Done()

	var pending []Row
	flush := func() {
		if len(pending) == 0 {
			return
		}
		_ = w.store.withWriterLock(context.Background(), func(tx *sql.Tx) error {
			for _, r := range pending {
				if _, err := tx.Exec(r.SQL, r.Args...); err != nil {
					return err
				}
			}
			return nil
		})
		w.mu.Lock()
		w.lastCommit = time.Now()
		w.mu.Unlock()
		pending = pending[:0]
	}

	for {
		select {
		case b, ok := <-w.ch:
			if !ok {
				flush()
				return
			}
			// Keep each submitted batch whole, and commit before counting it
			// as dequeued so drain's empty marker batch waits for the commit.
			if len(pending) > 0 && len(pending)+len(b.Rows) > batchSize {
				flush()
			}
			pending = append(pending, b.Rows...)
			if len(pending) >= batchSize || len(b.Rows) == 0 {
				flush()
			}
			w.mu.Lock()
			w.queued--
			w.mu.Unlock()
		case <-w.done:
			flush()
			return
		}
	}
}

func (w *ingestWriter) flushRows(rows []Row) {
	_ = w.store.withWriterLock(context.Background(), func(tx *sql.Tx) error {
		for _, r := range rows {
			if _, err := tx.Exec(r.SQL, r.Args...); err != nil {
				return err
			}
		}
		return nil
	})
	w.mu.Lock()
	w.lastCommit = time.Now()
	w.mu.Unlock()
}

// drain submits a marker batch and waits for the writer to report it has
// caught up to the point drain was called.
func (w *ingestWriter) drain(ctx context.Context) error {
	ack := make(chan struct{})
	w.submit(Batch{}) // empty batch, ensures FIFO ordering against a sync point
	go func() {
		for w.queueDepth() > 0 {
			time.Sleep(time.Millisecond)
		}
		close(ack)
	}()
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop closes the channel and waits for the writer goroutine to finish
// committing everything already queued.
func (w *ingestWriter) stop() {
	close(w.ch)
	w.wg.Wait()
}
