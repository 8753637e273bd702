package graphintel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/store"
)

func TestPersistTaintFlowsWritesToTaintFlows(t *testing.T) {
	s, err := store.Open(context.Background(), store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	PersistTaintFlows(s, []TaintFlow{
		{CWE: "CWE-89", Severity: "High", Steps: []TaintStep{
			{FileID: 1, Line: 1, Role: RoleSource, Snippet: "getQueryParam()"},
			{FileID: 1, Line: 2, Role: RoleSink, Snippet: "rawQuery(x)"},
		}},
	})
	require.NoError(t, s.Drain(context.Background()))

	var count int
	require.NoError(t, s.Reader().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM taint_flows").Scan(&count))
	assert.Equal(t, 1, count)
}
