package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("GRPC_PORT", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8787", cfg.Addr())
	assert.Equal(t, "0.0.0.0:8788", cfg.GRPCAddr())
	assert.Equal(t, DefaultKeypad, cfg.Keypad.Rows)
	assert.Equal(t, 1000, cfg.Sessions.Max)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "keycalc.yaml")
	yamlSrc := `
server:
  host: 127.0.0.1
  port: 9000
sessions:
  max: 5
keypad:
  rows:
    - ["7", "8", "9", "÷"]
    - ["(", ")", "=", "C"]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlSrc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, 8788, cfg.Server.GRPCPort, "unset fields keep defaults")
	assert.Equal(t, 5, cfg.Sessions.Max)
	assert.Len(t, cfg.Keypad.Rows, 2)

	t.Setenv("PORT", "9100")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port, "environment overrides the file")
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		src  string
	}{
		{"bad yaml", "server: [1, 2"},
		{"unknown key", "keypad:\n  rows:\n    - [\"sqrt\"]\n"},
		{"same ports", "server:\n  port: 9000\n  grpcPort: 9000\n"},
		{"port range", "server:\n  port: 70000\n"},
		{"empty keypad", "keypad:\n  rows: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.src), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRPC_PORT", "not-a-port")
	_, err := Load("")
	assert.Error(t, err)
}
