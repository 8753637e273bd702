package boundary

import (
	"encoding/json"

	"github.com/coderift/drift/internal/store"
)

// PersistBoundaries flushes one file's detected access points through the
// store's batch ingest channel into the boundaries table (spec §4.8, §6).
func PersistBoundaries(s *store.Store, boundaries []Boundary) {
	if len(boundaries) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(boundaries))
	for _, b := range boundaries {
		fieldsJSON, err := json.Marshal(b.Fields)
		if err != nil {
			continue
		}
		rows = append(rows, store.Row{
			SQL: `INSERT INTO boundaries (table_name, framework, operation, fields_json, file_id, line, confidence)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
			Args: []any{b.Table, b.Framework, string(b.Operation), string(fieldsJSON), int64(b.FileID), int64(b.Line), b.Confidence},
		})
	}
	if len(rows) > 0 {
		s.Ingest(store.Batch{Rows: rows})
	}
}

// PersistSensitiveFields flushes classified field names through the store's
// batch ingest channel into the sensitive_fields table.
func PersistSensitiveFields(s *store.Store, fields []SensitiveField) {
	if len(fields) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(fields))
	for _, f := range fields {
		var table any
		if f.Table != "" {
			table = f.Table
		}
		rows = append(rows, store.Row{
			SQL:  `INSERT INTO sensitive_fields (field_name, table_name, class, confidence) VALUES (?, ?, ?, ?)`,
			Args: []any{f.FieldName, table, string(f.Class), f.Confidence},
		})
	}
	s.Ingest(store.Batch{Rows: rows})
}
