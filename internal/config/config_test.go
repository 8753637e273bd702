package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate(), "defaults must validate")
	assert.EqualValues(t, 1<<20, cfg.Scan.MaxFileSizeBytes, "expected 1MiB default cap")
}

func TestLoadLayersProjectFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	toml := "[storage]\npath = \"custom.db\"\n\n[learning]\ndominance_threshold = 0.75\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drift.toml"), []byte(toml), 0o644))

	cfg, err := Load(dir, "", func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.Storage.Path)
	assert.Equal(t, 0.75, cfg.Learning.DominanceThreshold)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.85, cfg.Analysis.FuzzyThreshold, "expected default fuzzy threshold preserved")
}

func TestEnvOverridesProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drift.toml"), []byte("[storage]\npath = \"project.db\"\n"), 0o644))
	env := map[string]string{"DRIFT_STORAGE_PATH": "env.db"}
	cfg, err := Load(dir, "", func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Storage.Path, "expected env override")
}

func TestParseLogLevels(t *testing.T) {
	levels := ParseLogLevels("store=debug,scan=warn")
	assert.Equal(t, "debug", levels["store"])
	assert.Equal(t, "warn", levels["scan"])
}

func TestValidateRejectsBadContestedGap(t *testing.T) {
	cfg := Defaults()
	cfg.Learning.ContestedGap = 1.5
	assert.Error(t, cfg.Validate(), "expected validation error")
}
