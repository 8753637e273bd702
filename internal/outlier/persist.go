package outlier

import (
	"github.com/coderift/drift/internal/ids"
	"github.com/coderift/drift/internal/store"
)

// Persist flushes a pattern's flagged outliers through the store's batch
// ingest channel into the outliers table (spec §4.11, §6).
func Persist(s *store.Store, patternID ids.PatternID, outliers []Outlier) {
	if len(outliers) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(outliers))
	for _, o := range outliers {
		rows = append(rows, store.Row{
			SQL: `INSERT INTO outliers (pattern_id, file_id, line, method, deviation, significance)
				VALUES (?, ?, ?, ?, ?, ?)`,
			Args: []any{int64(patternID), int64(o.FileID), int64(o.Line), string(o.Method), o.Deviation, string(o.Significance)},
		})
	}
	s.Ingest(store.Batch{Rows: rows})
}
