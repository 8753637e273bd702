// Package errors defines the closed taxonomy of error kinds the engine
// returns. Inner layers return these without logging; the orchestrating
// scan records per-file errors and continues, per spec §7.
package errors

import (
	"fmt"
	"time"

	"github.com/coderift/drift/internal/ids"
)

// Kind names an error category. Kinds are not Go types on their own; each
// category below except KindLicense has a dedicated struct so callers can
// type-switch.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindScanner       Kind = "scanner"
	KindParser        Kind = "parser"
	KindDetector      Kind = "detector"
	KindPipeline      Kind = "pipeline"
	KindStorage       Kind = "storage"
	KindLicense       Kind = "license"
)

// ConfigError represents malformed TOML, unknown keys in strict sections,
// or an invalid pattern/taint-registry spec. Fatal to the affected load.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %q): %v", e.Field, e.Value, e.Underlying)
}
func (e *ConfigError) Unwrap() error { return e.Underlying }

// ScanError represents a per-file scanner/IO failure. The scan continues;
// the file is marked with an error rather than aborting the run.
type ScanError struct {
	FileID     ids.FileID
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewScanError(op, path string, err error) *ScanError {
	return &ScanError{Operation: op, Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *ScanError) WithFile(id ids.FileID) *ScanError {
	e.FileID = id
	return e
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}
func (e *ScanError) Unwrap() error { return e.Underlying }

// ParseError represents a grammar error or unsupported language tag. A
// partial ParseResult is still preserved with error ranges.
type ParseError struct {
	FileID     ids.FileID
	Path       string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

func NewParseError(id ids.FileID, path string, line, col int, err error) *ParseError {
	return &ParseError{FileID: id, Path: path, Line: line, Column: col, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Underlying)
}
func (e *ParseError) Unwrap() error { return e.Underlying }

// DetectorError represents a detector panicking or erroring on an
// otherwise-valid file. The detector's output for that file is discarded;
// the detector itself is not disabled by this error.
type DetectorError struct {
	DetectorID string
	FileID     ids.FileID
	Underlying error
	Timestamp  time.Time
}

func NewDetectorError(detectorID string, fileID ids.FileID, err error) *DetectorError {
	return &DetectorError{DetectorID: detectorID, FileID: fileID, Underlying: err, Timestamp: time.Now()}
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %s failed on file %d: %v", e.DetectorID, e.FileID, e.Underlying)
}
func (e *DetectorError) Unwrap() error { return e.Underlying }

// PipelineError represents an unrecoverable inconsistency (e.g. aggregation
// observing a negative counter). The scan fails with this diagnostic; prior
// durable state is left intact.
type PipelineError struct {
	Stage      string
	Underlying error
	Timestamp  time.Time
}

func NewPipelineError(stage string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Underlying: err, Timestamp: time.Now()}
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Underlying)
}
func (e *PipelineError) Unwrap() error { return e.Underlying }

// StorageError represents a Store failure: busy, disk full, corrupt,
// migration failure, or an OS-level I/O error.
type StorageError struct {
	Operation   string
	Retryable   bool
	Underlying  error
	Timestamp   time.Time
	MigrationTo int // non-zero when Operation == "migrate"
}

func NewStorageError(op string, retryable bool, err error) *StorageError {
	return &StorageError{Operation: op, Retryable: retryable, Underlying: err, Timestamp: time.Now()}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Operation, e.Underlying)
}
func (e *StorageError) Unwrap() error { return e.Underlying }

// Cancelled is the sentinel carried as an explicit status, never as an
// error, per spec §7/§5. It is defined here so call sites that thread a
// `status` value alongside an `error` can share one constant.
type Status int

const (
	StatusOK Status = iota
	StatusIssuesFound
	StatusCancelled
)

// MultiError aggregates multiple independent failures (e.g. one per file in
// a scan) without losing any of them.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs ...error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors (first: %v)", len(e.Errors), e.Errors[0])
	}
}

func (e *MultiError) Unwrap() []error { return e.Errors }

// HasErrors reports whether any non-nil error was recorded.
func (e *MultiError) HasErrors() bool { return e != nil && len(e.Errors) > 0 }
