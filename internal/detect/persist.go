package detect

import "github.com/coderift/drift/internal/store"

// PersistFindings flushes a detection pass's raw findings through the
// store's batch ingest channel into the detections table, tagged with the
// scan that produced them (spec §4.5, §6).
func PersistFindings(s *store.Store, scanID string, findings []Finding) {
	if len(findings) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, store.Row{
			SQL: `INSERT INTO detections (scan_id, detector_id, pattern_id, category, file_id, line, snippet, confidence)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			Args: []any{scanID, f.DetectorID, int64(f.PatternID), f.Category, int64(f.FileID), int64(f.Line), f.Snippet, f.Confidence},
		})
	}
	s.Ingest(store.Batch{Rows: rows})
}
