package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mdld/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `{"port": 8080}`))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadRequiresPort(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{}`))
	require.Error(t, err)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{"port": 8080, "diff": {"similarity_threshold": 1.5}}`))
	require.Error(t, err)
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{"port": 8080, "stream": {"strategy": "sentences"}}`))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
