package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.Server.Addr)
	require.Equal(t, "http://localhost:5000", cfg.Console.ServerURL)
	require.Equal(t, 30, cfg.Console.RequestTimeout)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
  saves_db: "/tmp/test.db"
console:
  server_url: "http://board:8080"
`), 0o644))

	t.Setenv("COURTSIDE_ADDR", ":9090")
	t.Setenv("COURTSIDE_REQUEST_TIMEOUT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	// Environment wins over the file, the file wins over defaults.
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "/tmp/test.db", cfg.Server.SavesDB)
	require.Equal(t, "http://board:8080", cfg.Console.ServerURL)
	require.Equal(t, 7, cfg.Console.RequestTimeout)
	require.Equal(t, "static", cfg.Server.StaticDir)
}

func TestLoadRejectsBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
