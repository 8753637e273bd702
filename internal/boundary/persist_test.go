package boundary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/store"
)

func TestPersistBoundariesAndSensitiveFields(t *testing.T) {
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	s.Ingest(store.Batch{Rows: []store.Row{{
		SQL:  `INSERT INTO files (id, path, content_hash, byte_size, language, mtime_epoch) VALUES (?, ?, ?, ?, ?, ?)`,
		Args: []any{1, "db.go", int64(1), int64(1), "go", int64(0)},
	}}})
	require.NoError(t, s.Drain(context.Background()))

	PersistBoundaries(s, []Boundary{
		{Table: "users", Framework: "sql", Operation: OpRead, Fields: []string{"id", "email"}, FileID: 1, Line: 10, Confidence: 0.8},
	})
	PersistSensitiveFields(s, []SensitiveField{
		{FieldName: "password_hash", Table: "users", Class: ClassCredentials, Confidence: 0.95},
	})
	require.NoError(t, s.Drain(context.Background()))

	var boundaries, fields int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM boundaries").Scan(&boundaries))
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM sensitive_fields").Scan(&fields))
	assert.Equal(t, 1, boundaries)
	assert.Equal(t, 1, fields)
}
