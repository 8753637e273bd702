package aggregate

import "github.com/coderift/drift/internal/store"

// Persist flushes phase 7's reconciled snapshot through the store's batch
// ingest channel: one upsert per pattern into aggregated_patterns, plus its
// full location set into pattern_locations (spec §4.9 phase 7, §6).
func (ag *Aggregator) Persist(s *store.Store) {
	snapshot := ag.Snapshot()
	if len(snapshot) == 0 {
		return
	}

	var rows []store.Row
	for _, a := range snapshot {
		var parent any
		if a.ParentPattern != 0 {
			parent = int64(a.ParentPattern)
		}
		rows = append(rows, store.Row{
			SQL: `INSERT INTO aggregated_patterns (pattern_id, category, occurrences, file_spread, outlier_count, parent_pattern_id)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(pattern_id) DO UPDATE SET category=excluded.category,
				occurrences=excluded.occurrences, file_spread=excluded.file_spread,
				outlier_count=excluded.outlier_count, parent_pattern_id=excluded.parent_pattern_id`,
			Args: []any{int64(a.PatternID), a.Category, a.Occurrences(), a.FileSpread(), a.OutlierCount, parent},
		})
		for _, l := range a.Locations {
			rows = append(rows, store.Row{
				SQL:  `INSERT OR IGNORE INTO pattern_locations (pattern_id, file_id, line) VALUES (?, ?, ?)`,
				Args: []any{int64(a.PatternID), int64(l.FileID), int64(l.Line)},
			})
		}
	}
	s.Ingest(store.Batch{Rows: rows})
}
