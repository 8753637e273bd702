package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	drifterrors "github.com/coderift/drift/internal/errors"
)

// RefreshStats summarizes what a post-scan refresh produced, useful for
// logging and the scan_history row.
type RefreshStats struct {
	HealthScore       float64
	Trend             string
	SecurityRiskLevel string
}

// RefreshGoldLayer rebuilds the two singleton materialized summary tables
// inside a single BEGIN IMMEDIATE. materialized_security is written before
// materialized_status so that a status row reading security_risk_level
// always observes the refreshed value, never a stale one (spec §4.2, S6).
func (s *Store) RefreshGoldLayer(ctx context.Context, scanID string) (RefreshStats, error) {
	var stats RefreshStats

	err := s.WithWriteTx(ctx, func(tx *sql.Tx) error {
		risk, sensitiveCount, unprotected, topTables, err := refreshSecurity(tx)
		if err != nil {
			return err
		}
		stats.SecurityRiskLevel = risk

		topJSON, err := json.Marshal(topTables)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO materialized_security (id, risk_level, sensitive_field_count, unprotected_access_points, top_risk_tables_json)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET risk_level=excluded.risk_level,
				sensitive_field_count=excluded.sensitive_field_count,
				unprotected_access_points=excluded.unprotected_access_points,
				top_risk_tables_json=excluded.top_risk_tables_json`,
			risk, sensitiveCount, unprotected, string(topJSON)); err != nil {
			return err
		}

		health, trend, fileCount, patternCount, approved, critical, warnings, err := refreshStatus(tx, risk)
		if err != nil {
			return err
		}
		stats.HealthScore = health
		stats.Trend = trend

		_, err = tx.Exec(`
			INSERT INTO materialized_status (id, health_score, trend, last_scan_at, file_count, pattern_count,
				approved_count, critical_violations, warnings, security_risk_level)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET health_score=excluded.health_score,
				trend=excluded.trend, last_scan_at=excluded.last_scan_at,
				file_count=excluded.file_count, pattern_count=excluded.pattern_count,
				approved_count=excluded.approved_count, critical_violations=excluded.critical_violations,
				warnings=excluded.warnings, security_risk_level=excluded.security_risk_level`,
			health, trend, time.Now().Unix(), fileCount, patternCount, approved, critical, warnings, risk)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`INSERT INTO health_trend (scan_id, recorded_at, health_score, trend) VALUES (?, ?, ?, ?)`,
			scanID, time.Now().Unix(), health, trend)
		return err
	})
	if err != nil {
		return stats, drifterrors.NewStorageError("refresh_gold_layer", false, err)
	}
	return stats, nil
}

func refreshSecurity(tx *sql.Tx) (risk string, sensitiveCount, unprotected int, topTables []string, err error) {
	if err = tx.QueryRow(`SELECT COUNT(*) FROM sensitive_fields`).Scan(&sensitiveCount); err != nil {
		return
	}
	if err = tx.QueryRow(`SELECT COUNT(*) FROM boundaries WHERE confidence < 0.5`).Scan(&unprotected); err != nil {
		return
	}

	var criticalFlows int
	if err = tx.QueryRow(`SELECT COUNT(*) FROM taint_flows WHERE severity = 'Critical'`).Scan(&criticalFlows); err != nil {
		return
	}

	switch {
	case criticalFlows > 0:
		risk = "Critical"
	case unprotected > 0:
		risk = "High"
	case sensitiveCount > 0:
		risk = "Medium"
	default:
		risk = "Low"
	}

	rows, qerr := tx.Query(`SELECT DISTINCT table_name FROM boundaries WHERE confidence < 0.5 ORDER BY table_name LIMIT 5`)
	if qerr != nil {
		err = qerr
		return
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		if err = rows.Scan(&t); err != nil {
			return
		}
		topTables = append(topTables, t)
	}
	err = rows.Err()
	return
}

func refreshStatus(tx *sql.Tx, securityRisk string) (health float64, trend string, fileCount, patternCount, approved, critical, warnings int, err error) {
	if err = tx.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&fileCount); err != nil {
		return
	}
	if err = tx.QueryRow(`SELECT COUNT(*) FROM aggregated_patterns`).Scan(&patternCount); err != nil {
		return
	}
	if err = tx.QueryRow(`SELECT COUNT(*) FROM conventions WHERE status = 'Approved'`).Scan(&approved); err != nil {
		return
	}
	if err = tx.QueryRow(`SELECT COUNT(*) FROM outliers WHERE significance = 'Critical'`).Scan(&critical); err != nil {
		return
	}
	if err = tx.QueryRow(`SELECT COUNT(*) FROM outliers WHERE significance IN ('Moderate', 'High')`).Scan(&warnings); err != nil {
		return
	}

	health = 1.0
	if patternCount > 0 {
		health = 1.0 - (float64(critical)*0.1+float64(warnings)*0.02)/float64(patternCount)
		if health < 0 {
			health = 0
		}
	}
	if securityRisk == "Critical" {
		health *= 0.5
	}

	var prev sql.NullFloat64
	_ = tx.QueryRow(`SELECT health_score FROM materialized_status WHERE id = 1`).Scan(&prev)
	switch {
	case !prev.Valid:
		trend = "Stable"
	case health > prev.Float64+0.01:
		trend = "Improving"
	case health < prev.Float64-0.01:
		trend = "Declining"
	default:
		trend = "Stable"
	}
	return
}

// Retention bounds the append-only telemetry tables; rows older than
// maxAge, beyond maxRows per table, are trimmed, then the WAL is
// checkpointed and, if the freelist is large, the file is incrementally
// vacuumed (spec §4.2).
type Retention struct {
	MaxAge  time.Duration
	MaxRows int
}

func (s *Store) ApplyRetention(ctx context.Context, r Retention) error {
	cutoff := time.Now().Add(-r.MaxAge).Unix()

	err := s.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM health_trend WHERE recorded_at < ?`, cutoff); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM query_telemetry WHERE recorded_at < ?`, cutoff); err != nil {
			return err
		}
		if r.MaxRows > 0 {
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM health_trend WHERE id NOT IN (
					SELECT id FROM health_trend ORDER BY recorded_at DESC LIMIT ?)`, r.MaxRows); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM query_telemetry WHERE id NOT IN (
					SELECT id FROM query_telemetry ORDER BY recorded_at DESC LIMIT ?)`, r.MaxRows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return drifterrors.NewStorageError("apply_retention", false, err)
	}

	if _, err := s.writer.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return drifterrors.NewStorageError("wal_checkpoint", true, err)
	}

	var freelist, pageCount int
	if err := s.writer.QueryRowContext(ctx, "PRAGMA freelist_count").Scan(&freelist); err != nil {
		return drifterrors.NewStorageError("freelist_count", true, err)
	}
	if err := s.writer.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return drifterrors.NewStorageError("page_count", true, err)
	}
	if pageCount > 0 && float64(freelist)/float64(pageCount) > 0.2 {
		if _, err := s.writer.ExecContext(ctx, "PRAGMA incremental_vacuum"); err != nil {
			return drifterrors.NewStorageError("incremental_vacuum", true, err)
		}
	}
	return nil
}
