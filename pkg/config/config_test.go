package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.MaxConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, os.TempDir(), cfg.ScratchRoot)
	assert.Equal(t, "claude", cfg.ToolBin)
	assert.Equal(t, []string{"-p"}, cfg.ToolArgs)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
max_concurrency: 2
timeout_ms: 5000
tool_bin: echo
tool_args: ["-n"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "echo", cfg.ToolBin)
	assert.Equal(t, []string{"-n"}, cfg.ToolArgs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrency: 2\n"), 0o644))

	t.Setenv("RUNBRIDGE_MAX_CONCURRENCY", "7")
	t.Setenv("RUNBRIDGE_TIMEOUT_MS", "1000")
	t.Setenv("RUNBRIDGE_TOOL_BIN", "cat")
	t.Setenv("RUNBRIDGE_TOOL_ARGS", "-a -b")
	t.Setenv("RUNBRIDGE_SCRATCH_ROOT", "/scratch")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxConcurrency)
	assert.Equal(t, time.Second, cfg.Timeout())
	assert.Equal(t, "cat", cfg.ToolBin)
	assert.Equal(t, []string{"-a", "-b"}, cfg.ToolArgs)
	assert.Equal(t, "/scratch", cfg.ScratchRoot)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("RUNBRIDGE_MAX_CONCURRENCY", "lots")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero concurrency", mutate: func(c *Config) { c.MaxConcurrency = 0 }, wantErr: true},
		{name: "negative concurrency", mutate: func(c *Config) { c.MaxConcurrency = -1 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.TimeoutMS = 0 }, wantErr: true},
		{name: "empty tool", mutate: func(c *Config) { c.ToolBin = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
