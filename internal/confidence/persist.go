package confidence

import (
	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

// PersistScores flushes the per-pattern confidence state through the
// store's batch ingest channel, one upsert per pattern into
// confidence_scores (spec §4.10, §6).
func PersistScores(s *store.Store, scores map[ids.PatternID]Score) {
	if len(scores) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(scores))
	for patternID, score := range scores {
		rows = append(rows, store.Row{
			SQL: `INSERT INTO confidence_scores (pattern_id, alpha, beta, tier, momentum, last_scan_id)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(pattern_id) DO UPDATE SET alpha=excluded.alpha, beta=excluded.beta,
				tier=excluded.tier, momentum=excluded.momentum, last_scan_id=excluded.last_scan_id`,
			Args: []any{int64(patternID), score.Alpha, score.Beta, string(score.Tier), string(score.Momentum), score.ScanID},
		})
	}
	s.Ingest(store.Batch{Rows: rows})
}
