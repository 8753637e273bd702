package graphintel

import (
	"encoding/json"

	"github.com/coderift/drift/internal/store"
)

type taintStepRecord struct {
	FileID  uint32    `json:"file_id"`
	Line    uint      `json:"line"`
	Role    TaintRole `json:"role"`
	Snippet string    `json:"snippet"`
}

// PersistTaintFlows flushes detected taint flows through the store's batch
// ingest channel into the taint_flows table (spec §4.14, §6).
func PersistTaintFlows(s *store.Store, flows []TaintFlow) {
	if len(flows) == 0 {
		return
	}
	rows := make([]store.Row, 0, len(flows))
	for _, f := range flows {
		steps := make([]taintStepRecord, 0, len(f.Steps))
		for _, step := range f.Steps {
			steps = append(steps, taintStepRecord{FileID: uint32(step.FileID), Line: step.Line, Role: step.Role, Snippet: step.Snippet})
		}
		stepsJSON, err := json.Marshal(steps)
		if err != nil {
			continue
		}
		rows = append(rows, store.Row{
			SQL:  `INSERT INTO taint_flows (cwe, severity, steps_json) VALUES (?, ?, ?)`,
			Args: []any{f.CWE, f.Severity, string(stepsJSON)},
		})
	}
	if len(rows) > 0 {
		s.Ingest(store.Batch{Rows: rows})
	}
}
