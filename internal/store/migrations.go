package store

import (
	"context"
	"database/sql"
	"fmt"

	drifterrors "github.com/coderift/drift/internal/errors"
)

// migration is one linear, pure-SQL, irreversible step. Migrations never
// branch: the store refuses to open at a lower code version than the
// database's recorded user_version (spec §4.2).
type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE files (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	content_hash INTEGER NOT NULL,
	byte_size INTEGER NOT NULL,
	language TEXT NOT NULL,
	mtime_epoch INTEGER NOT NULL,
	parse_error TEXT
) STRICT;

CREATE TABLE functions (
	id INTEGER PRIMARY KEY,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	qualified_name TEXT NOT NULL,
	name TEXT NOT NULL,
	body_hash INTEGER NOT NULL,
	signature TEXT NOT NULL DEFAULT '',
	is_entry_point INTEGER NOT NULL DEFAULT 0,
	is_injectable INTEGER NOT NULL DEFAULT 0,
	is_auth_handler INTEGER NOT NULL DEFAULT 0,
	is_test_case INTEGER NOT NULL DEFAULT 0,
	is_data_accessor INTEGER NOT NULL DEFAULT 0,
	line_start INTEGER NOT NULL DEFAULT 0,
	line_end INTEGER NOT NULL DEFAULT 0
) STRICT;
CREATE INDEX idx_functions_file ON functions(file_id);
CREATE INDEX idx_functions_qname ON functions(qualified_name);

CREATE TABLE call_edges (
	id INTEGER PRIMARY KEY,
	caller_id INTEGER NOT NULL REFERENCES functions(id) ON DELETE CASCADE,
	callee_id INTEGER REFERENCES functions(id) ON DELETE SET NULL,
	resolution TEXT NOT NULL,
	confidence REAL NOT NULL
) STRICT;
CREATE INDEX idx_call_edges_caller ON call_edges(caller_id);
CREATE INDEX idx_call_edges_callee ON call_edges(callee_id);

CREATE TABLE detections (
	id INTEGER PRIMARY KEY,
	scan_id TEXT NOT NULL,
	detector_id TEXT NOT NULL,
	pattern_id INTEGER NOT NULL,
	category TEXT NOT NULL,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	line INTEGER NOT NULL,
	snippet TEXT NOT NULL,
	confidence REAL NOT NULL
) STRICT;
CREATE INDEX idx_detections_pattern ON detections(pattern_id);
CREATE INDEX idx_detections_file ON detections(file_id);

CREATE TABLE pattern_locations (
	pattern_id INTEGER NOT NULL,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	line INTEGER NOT NULL,
	PRIMARY KEY (pattern_id, file_id, line)
) STRICT;

CREATE TABLE aggregated_patterns (
	pattern_id INTEGER PRIMARY KEY,
	category TEXT NOT NULL,
	occurrences INTEGER NOT NULL,
	file_spread INTEGER NOT NULL,
	outlier_count INTEGER NOT NULL DEFAULT 0,
	parent_pattern_id INTEGER
) STRICT;

CREATE TABLE confidence_scores (
	pattern_id INTEGER PRIMARY KEY REFERENCES aggregated_patterns(pattern_id) ON DELETE CASCADE,
	alpha REAL NOT NULL,
	beta REAL NOT NULL,
	tier TEXT NOT NULL,
	momentum TEXT NOT NULL,
	last_scan_id TEXT NOT NULL DEFAULT ''
) STRICT;

CREATE TABLE outliers (
	id INTEGER PRIMARY KEY,
	pattern_id INTEGER NOT NULL,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	line INTEGER NOT NULL,
	method TEXT NOT NULL,
	deviation REAL NOT NULL,
	significance TEXT NOT NULL
) STRICT;

CREATE TABLE conventions (
	id TEXT PRIMARY KEY,
	pattern_id INTEGER NOT NULL,
	category TEXT NOT NULL,
	scope TEXT NOT NULL,
	dominance REAL NOT NULL,
	discovered_at INTEGER NOT NULL,
	last_seen INTEGER NOT NULL,
	status TEXT NOT NULL
) STRICT;

CREATE TABLE boundaries (
	id INTEGER PRIMARY KEY,
	table_name TEXT NOT NULL,
	framework TEXT NOT NULL,
	operation TEXT NOT NULL,
	fields_json TEXT NOT NULL CHECK(json_valid(fields_json)),
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	line INTEGER NOT NULL,
	confidence REAL NOT NULL
) STRICT;

CREATE TABLE sensitive_fields (
	id INTEGER PRIMARY KEY,
	field_name TEXT NOT NULL,
	table_name TEXT,
	class TEXT NOT NULL,
	confidence REAL NOT NULL
) STRICT;

CREATE TABLE taint_flows (
	id INTEGER PRIMARY KEY,
	cwe TEXT NOT NULL,
	severity TEXT NOT NULL,
	steps_json TEXT NOT NULL CHECK(json_valid(steps_json))
) STRICT;

CREATE TABLE parse_cache (
	language TEXT NOT NULL,
	content_hash INTEGER NOT NULL,
	result_json TEXT NOT NULL CHECK(json_valid(result_json)),
	PRIMARY KEY (language, content_hash)
) STRICT;

CREATE TABLE scan_history (
	scan_id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	status TEXT NOT NULL,
	files_added INTEGER NOT NULL DEFAULT 0,
	files_modified INTEGER NOT NULL DEFAULT 0,
	files_deleted INTEGER NOT NULL DEFAULT 0
) STRICT;

CREATE TABLE health_trend (
	id INTEGER PRIMARY KEY,
	scan_id TEXT NOT NULL,
	recorded_at INTEGER NOT NULL,
	health_score REAL NOT NULL,
	trend TEXT NOT NULL
) STRICT;

CREATE TABLE query_telemetry (
	id INTEGER PRIMARY KEY,
	recorded_at INTEGER NOT NULL,
	query_kind TEXT NOT NULL,
	duration_micros INTEGER NOT NULL
) STRICT;

CREATE TABLE materialized_status (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	health_score REAL NOT NULL,
	trend TEXT NOT NULL,
	last_scan_at INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	pattern_count INTEGER NOT NULL,
	approved_count INTEGER NOT NULL,
	critical_violations INTEGER NOT NULL,
	warnings INTEGER NOT NULL,
	security_risk_level TEXT NOT NULL
) STRICT;

CREATE TABLE materialized_security (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	risk_level TEXT NOT NULL,
	sensitive_field_count INTEGER NOT NULL,
	unprotected_access_points INTEGER NOT NULL,
	top_risk_tables_json TEXT NOT NULL CHECK(json_valid(top_risk_tables_json))
) STRICT;
`,
	},
}

// migrate applies every migration with version greater than the database's
// current user_version, in order, each inside its own transaction.
func (s *Store) migrate(ctx context.Context) error {
	var current int
	row := s.writer.QueryRowContext(ctx, "PRAGMA user_version")
	if err := row.Scan(&current); err != nil {
		return drifterrors.NewStorageError("read_version", false, err)
	}

	latest := 0
	for _, m := range migrations {
		if m.version > latest {
			latest = m.version
		}
	}
	if current > latest {
		return drifterrors.NewStorageError("migrate", false,
			fmt.Errorf("database schema version %d is newer than this build supports (%d)", current, latest))
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := s.withWriterLock(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version=%d", m.version))
			return err
		})
		if err != nil {
			se := drifterrors.NewStorageError("migrate", false, err)
			se.MigrationTo = m.version
			return se
		}
	}
	return nil
}

// withWriterLock runs fn in a transaction, serialized on the writer mutex,
// without the extra PRAGMA foreign_keys statement WithWriteTx adds (schema
// DDL cannot run with foreign key enforcement toggled mid-transaction on
// some SQLite builds).
func (s *Store) withWriterLock(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
