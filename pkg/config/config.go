// Package config loads run configuration for gymlink from YAML, with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/boristopalov/gymlink/pkg/transport"
)

// RunConfig configures one simulation run.
type RunConfig struct {
	EnvID     string `yaml:"env_id"`
	Transport string `yaml:"transport"` // "pipe" or "socket"
	Network   string `yaml:"network"`   // "unix" or "tcp"
	Addr      string `yaml:"addr"`
	Capacity  int    `yaml:"capacity"`
	MaxSteps  int    `yaml:"max_steps"`
	Seed      int64  `yaml:"seed"`
	LogLevel  string `yaml:"log_level"`
}

// Default returns the built-in configuration: an in-process pipe run.
func Default() RunConfig {
	return RunConfig{
		Transport: "pipe",
		Network:   "tcp",
		Addr:      "127.0.0.1:5555",
		Capacity:  transport.DefaultCapacity,
		MaxSteps:  500,
		LogLevel:  "info",
	}
}

// Load reads a YAML run config on top of the defaults. An empty path keeps
// the defaults. GYMLINK_ENV_ID, GYMLINK_ADDR and GYMLINK_LOG_LEVEL override
// the file. A missing env id gets a generated one.
func Load(path string) (RunConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.EnvID == "" {
		cfg.EnvID = transport.NewEnvID()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = transport.DefaultCapacity
	}
	return cfg, nil
}

func (c *RunConfig) applyEnv() {
	if v := os.Getenv("GYMLINK_ENV_ID"); v != "" {
		c.EnvID = v
	}
	if v := os.Getenv("GYMLINK_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("GYMLINK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
