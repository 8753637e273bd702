package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Cursor is a keyset pagination cursor: (sort column value, tiebreaker id).
// List queries always page this way — never OFFSET — per spec §4.2.
type Cursor struct {
	SortValue any
	ID        int64
}

// PageRequest bounds a keyset query.
type PageRequest struct {
	After    *Cursor
	PageSize int
}

func (p PageRequest) limit() int {
	if p.PageSize <= 0 {
		return 100
	}
	return p.PageSize
}

// QueryOnlyGuard wraps a reader *sql.DB to make the query_only contract
// explicit at the call site; it performs no extra I/O, it documents intent
// and is the attachment point future read-path instrumentation would use.
type QueryOnlyGuard struct {
	db *sql.DB
}

func NewQueryOnlyGuard(db *sql.DB) QueryOnlyGuard { return QueryOnlyGuard{db: db} }

func (g QueryOnlyGuard) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return g.db.QueryContext(ctx, query, args...)
}

// PatternListRow is a row of the §6 Patterns derived-output list.
type PatternListRow struct {
	PatternID    int64
	Category     string
	Confidence   float64
	Tier         string
	Spread       int
	OutlierCount int
	LastSeen     int64
	Status       string
}

// ListPatterns returns up to req.PageSize patterns ordered by pattern_id,
// keyset-paginated after req.After.
func (s *Store) ListPatterns(ctx context.Context, req PageRequest) ([]PatternListRow, *Cursor, error) {
	guard := NewQueryOnlyGuard(s.Reader())

	query := `
		SELECT ap.pattern_id, ap.category, cs.alpha / (cs.alpha + cs.beta) AS confidence,
		       cs.tier, ap.file_spread, ap.outlier_count, 0 AS last_seen, 'discovered'
		FROM aggregated_patterns ap
		LEFT JOIN confidence_scores cs ON cs.pattern_id = ap.pattern_id
		WHERE (? = 0 OR ap.pattern_id > ?)
		ORDER BY ap.pattern_id ASC
		LIMIT ?`

	after := int64(0)
	if req.After != nil {
		after = req.After.ID
	}

	rows, err := guard.QueryContext(ctx, query, after, after, req.limit())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var out []PatternListRow
	for rows.Next() {
		var r PatternListRow
		var conf sql.NullFloat64
		var tier sql.NullString
		if err := rows.Scan(&r.PatternID, &r.Category, &conf, &tier, &r.Spread, &r.OutlierCount, &r.LastSeen, &r.Status); err != nil {
			return nil, nil, err
		}
		r.Confidence = conf.Float64
		if tier.Valid {
			r.Tier = tier.String
		}
		out = append(out, r)
	}

	var next *Cursor
	if len(out) == req.limit() {
		next = &Cursor{ID: out[len(out)-1].PatternID}
	}
	return out, next, rows.Err()
}

// ViolationListRow is a row of the §6 Violations derived-output list. An
// outlier becomes at most one violation downstream, scoped to its file and
// line (spec §4.11).
type ViolationListRow struct {
	ViolationID int64
	File        string
	Line        int
	PatternID   int64
	Severity    string
	Message     string
	Fingerprint string
	IsNew       bool
}

// severityForSignificance maps an outlier's statistical significance onto
// the violation severity scale of §6.
func severityForSignificance(significance string) string {
	switch significance {
	case "Critical":
		return "error"
	case "High":
		return "warning"
	case "Moderate":
		return "info"
	default:
		return "hint"
	}
}

// violationFingerprint derives a content-based fingerprint that survives
// pure reformatting of surrounding code: it hashes the pattern, file, and
// detection method rather than the line number's column offsets (spec §8).
func violationFingerprint(patternID int64, filePath, method string) string {
	h := xxhash.New()
	_, _ = h.Write([]byte(filePath))
	_, _ = fmt.Fprintf(h, "|%d|%s", patternID, method)
	return fmt.Sprintf("%016x", h.Sum64())
}

// ListViolations returns up to req.PageSize violations ordered by outlier
// id, keyset-paginated after req.After. IsNew is always true: the store has
// no prior-scan fingerprint ledger to diff against yet (see DESIGN.md).
func (s *Store) ListViolations(ctx context.Context, req PageRequest) ([]ViolationListRow, *Cursor, error) {
	guard := NewQueryOnlyGuard(s.Reader())

	query := `
		SELECT o.id, f.path, o.line, o.pattern_id, o.significance, o.method
		FROM outliers o
		JOIN files f ON f.id = o.file_id
		WHERE (? = 0 OR o.id > ?)
		ORDER BY o.id ASC
		LIMIT ?`

	after := int64(0)
	if req.After != nil {
		after = req.After.ID
	}

	rows, err := guard.QueryContext(ctx, query, after, after, req.limit())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var out []ViolationListRow
	for rows.Next() {
		var r ViolationListRow
		var significance, method string
		if err := rows.Scan(&r.ViolationID, &r.File, &r.Line, &r.PatternID, &significance, &method); err != nil {
			return nil, nil, err
		}
		r.Severity = severityForSignificance(significance)
		r.Message = fmt.Sprintf("pattern %d deviates from the dominant convention (%s method, %s significance)", r.PatternID, method, significance)
		r.Fingerprint = violationFingerprint(r.PatternID, r.File, method)
		r.IsNew = true
		out = append(out, r)
	}

	var next *Cursor
	if len(out) == req.limit() {
		next = &Cursor{ID: out[len(out)-1].ViolationID}
	}
	return out, next, rows.Err()
}
