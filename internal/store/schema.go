package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// patternRowSchema and violationRowSchema describe the wire shape of the
// §6 derived-output lists. Callers that serialize these rows for an
// external consumer (CLI JSON output, a future HTTP surface) validate
// against them before writing, so a shape regression in ListPatterns or
// ListViolations is caught at the boundary instead of downstream.
var patternRowSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"PatternID":    {Type: "integer"},
		"Category":     {Type: "string"},
		"Confidence":   {Type: "number"},
		"Tier":         {Type: "string"},
		"Spread":       {Type: "integer"},
		"OutlierCount": {Type: "integer"},
		"LastSeen":     {Type: "integer"},
		"Status":       {Type: "string"},
	},
	Required: []string{"PatternID", "Category", "Status"},
}

var violationRowSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"ViolationID": {Type: "integer"},
		"File":        {Type: "string"},
		"Line":        {Type: "integer"},
		"PatternID":   {Type: "integer"},
		"Severity":    {Type: "string", Enum: []any{"error", "warning", "info", "hint"}},
		"Message":     {Type: "string"},
		"Fingerprint": {Type: "string"},
		"IsNew":       {Type: "boolean"},
	},
	Required: []string{"ViolationID", "File", "Severity", "Fingerprint"},
}

func resolveOrPanic(s *jsonschema.Schema) *jsonschema.Resolved {
	r, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("store: invalid built-in schema: %v", err))
	}
	return r
}

var (
	resolvedPatternSchema   = resolveOrPanic(patternRowSchema)
	resolvedViolationSchema = resolveOrPanic(violationRowSchema)
)

func validateAgainst(resolved *jsonschema.Resolved, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	return resolved.Validate(decoded)
}

// MarshalPatterns serializes rows and validates each one against
// patternRowSchema before returning, so a shape drift in PatternListRow
// is caught here rather than at a downstream consumer.
func MarshalPatterns(rows []PatternListRow) ([]byte, error) {
	for i, r := range rows {
		if err := validateAgainst(resolvedPatternSchema, r); err != nil {
			return nil, fmt.Errorf("pattern row %d failed schema validation: %w", i, err)
		}
	}
	return json.Marshal(rows)
}

// MarshalViolations serializes rows and validates each one against
// violationRowSchema before returning.
func MarshalViolations(rows []ViolationListRow) ([]byte, error) {
	for i, r := range rows {
		if err := validateAgainst(resolvedViolationSchema, r); err != nil {
			return nil, fmt.Errorf("violation row %d failed schema validation: %w", i, err)
		}
	}
	return json.Marshal(rows)
}
