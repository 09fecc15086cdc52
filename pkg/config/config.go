// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package config loads the profiler configuration from YAML, with
// LINE_PROFILER_* environment variables taking precedence over file
// values.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at an
// explicit config file, overriding the default lookup.
const EnvConfigPath = "LINE_PROFILER_RC"

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "line_profiler.yaml"

// Config is the top-level profiler configuration.
type Config struct {
	LogLevel    string            `yaml:"log_level" env:"LINE_PROFILER_LOG_LEVEL"`
	Events      EventsConfig      `yaml:"events"`
	Chaining    ChainingConfig    `yaml:"chaining"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// EventsConfig toggles delivery of each execution event kind to the
// profiler's callbacks.
type EventsConfig struct {
	Call      bool `yaml:"call"`
	Line      bool `yaml:"line"`
	Return    bool `yaml:"return"`
	Exception bool `yaml:"exception"`
	Opcode    bool `yaml:"opcode"` // per-opcode events are costly; off by default
}

// ChainingConfig controls transparency toward a previously installed
// hook.
type ChainingConfig struct {
	// Enabled forwards every event to the hook that was installed
	// before the observer, through the save/invoke/restore protocol.
	// Disabling it makes the observer behave as if the slot had been
	// empty; the previous hook is still restored on uninstall.
	Enabled bool `yaml:"enabled"`
}

// DiagnosticsConfig configures developer diagnostics.
type DiagnosticsConfig struct {
	Debug          bool `yaml:"debug" env:"LINE_PROFILER_DEBUG"`
	LogEnvironment bool `yaml:"log_environment"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Events: EventsConfig{
			Call:      true,
			Line:      true,
			Return:    true,
			Exception: true,
			Opcode:    false,
		},
		Chaining: ChainingConfig{
			Enabled: true,
		},
		Diagnostics: DiagnosticsConfig{
			Debug:          false,
			LogEnvironment: false,
		},
	}
}

// Find resolves the config file path: LINE_PROFILER_RC if set,
// otherwise line_profiler.yaml in the working directory. The empty
// string means no config file exists and defaults apply.
func Find() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	return ""
}

// Load reads and parses a YAML configuration file, applies environment
// overrides, and validates the result. An empty path yields the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides reads LINE_PROFILER_* environment variables and
// applies them to the config, overriding YAML values.
func (c *Config) ApplyEnvOverrides() {
	envOverrides := map[string]func(string){
		"LINE_PROFILER_LOG_LEVEL": func(v string) { c.LogLevel = v },
	}

	boolOverrides := map[string]*bool{
		"LINE_PROFILER_DEBUG":            &c.Diagnostics.Debug,
		"LINE_PROFILER_LOG_ENVIRONMENT":  &c.Diagnostics.LogEnvironment,
		"LINE_PROFILER_CHAINING_ENABLED": &c.Chaining.Enabled,
		"LINE_PROFILER_EVENTS_LINE":      &c.Events.Line,
		"LINE_PROFILER_EVENTS_OPCODE":    &c.Events.Opcode,
	}

	for envKey, setter := range envOverrides {
		if val := os.Getenv(envKey); val != "" {
			setter(val)
		}
	}

	for envKey, target := range boolOverrides {
		if val := os.Getenv(envKey); val != "" {
			*target = parseBool(val)
		}
	}

	if c.Diagnostics.Debug && c.LogLevel != "debug" {
		c.LogLevel = "debug"
	}
}

// Validate checks invariants that would otherwise surface as confusing
// behavior at runtime.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}
	if !c.Events.Call && !c.Events.Line && !c.Events.Return && !c.Events.Exception && !c.Events.Opcode {
		return fmt.Errorf("all event kinds disabled; nothing to observe")
	}
	return nil
}

// parseBool accepts the truthy spellings the profiler has historically
// honored in its environment variables.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "on", "yes", "1":
		return true
	default:
		return false
	}
}
