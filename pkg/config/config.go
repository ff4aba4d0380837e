// Package config loads runbridge configuration from defaults, an optional
// YAML file, and RUNBRIDGE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the full service configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`
	// MaxConcurrency caps how many invocations run simultaneously.
	MaxConcurrency int `yaml:"max_concurrency"`
	// TimeoutMS bounds one tool run, in milliseconds.
	TimeoutMS int `yaml:"timeout_ms"`
	// ScratchRoot is where per-invocation working directories are created.
	ScratchRoot string `yaml:"scratch_root"`
	// ToolBin is the external tool executable.
	ToolBin string `yaml:"tool_bin"`
	// ToolArgs are fixed arguments always passed to the tool. The caller's
	// instruction never appears here; it is delivered on stdin.
	ToolArgs []string `yaml:"tool_args"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		MaxConcurrency: 5,
		TimeoutMS:      30000,
		ScratchRoot:    os.TempDir(),
		ToolBin:        "claude",
		ToolArgs:       []string{"-p"},
	}
}

// Load builds the configuration. If path is non-empty the YAML file at path
// is applied over the defaults; environment variables are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RUNBRIDGE_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("RUNBRIDGE_MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RUNBRIDGE_MAX_CONCURRENCY %q: %w", v, err)
		}
		c.MaxConcurrency = n
	}
	if v := os.Getenv("RUNBRIDGE_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RUNBRIDGE_TIMEOUT_MS %q: %w", v, err)
		}
		c.TimeoutMS = n
	}
	if v := os.Getenv("RUNBRIDGE_SCRATCH_ROOT"); v != "" {
		c.ScratchRoot = v
	}
	if v := os.Getenv("RUNBRIDGE_TOOL_BIN"); v != "" {
		c.ToolBin = v
	}
	if v := os.Getenv("RUNBRIDGE_TOOL_ARGS"); v != "" {
		c.ToolArgs = strings.Fields(v)
	}
	return nil
}

// Validate rejects configurations that must fail at startup rather than at
// request time.
func (c Config) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive, got %d", c.MaxConcurrency)
	}
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMS)
	}
	if c.ToolBin == "" {
		return fmt.Errorf("tool_bin must not be empty")
	}
	return nil
}

// Timeout returns the per-invocation deadline as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
