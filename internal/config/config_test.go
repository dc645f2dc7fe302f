package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "minidb.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadAppliesOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minidb.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_varchar_limit = 64\nfsync = false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{DefaultVarcharLimit: 64, Fsync: false}, cfg)
}

func TestLoadReportsMalformedFileAsIOError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minidb.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
