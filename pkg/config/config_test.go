// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Events.Line || !cfg.Events.Call || !cfg.Events.Return || !cfg.Events.Exception {
		t.Fatal("frame and line events must default to enabled")
	}
	if cfg.Events.Opcode {
		t.Fatal("opcode events must default to disabled")
	}
	if !cfg.Chaining.Enabled {
		t.Fatal("chaining must default to enabled")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "line_profiler.yaml")
	data := []byte(`
log_level: warn
events:
  opcode: true
  line: false
chaining:
  enabled: false
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if !cfg.Events.Opcode || cfg.Events.Line {
		t.Errorf("events = %+v, want opcode on and line off", cfg.Events)
	}
	if cfg.Chaining.Enabled {
		t.Error("chaining should be disabled")
	}
	// Untouched fields keep their defaults.
	if !cfg.Events.Call || !cfg.Events.Return {
		t.Errorf("events = %+v, want call and return still enabled", cfg.Events)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LINE_PROFILER_LOG_LEVEL", "error")
	t.Setenv("LINE_PROFILER_EVENTS_OPCODE", "yes")
	t.Setenv("LINE_PROFILER_CHAINING_ENABLED", "off")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
	if !cfg.Events.Opcode {
		t.Error("opcode events should be enabled via env")
	}
	if cfg.Chaining.Enabled {
		t.Error("chaining should be disabled via env")
	}
}

func TestDebugEnvForcesDebugLevel(t *testing.T) {
	t.Setenv("LINE_PROFILER_DEBUG", "1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Diagnostics.Debug {
		t.Error("diagnostics debug flag not set")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug when LINE_PROFILER_DEBUG is set", cfg.LogLevel)
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}

func TestValidateRejectsAllEventsOff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events = EventsConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when every event kind is disabled")
	}
}

func TestFindHonorsEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, path)
	if got := Find(); got != path {
		t.Fatalf("Find() = %q, want %q", got, path)
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "on", "yes", "1"}
	falsy := []string{"false", "off", "no", "0", "", "2", "enabled"}
	for _, v := range truthy {
		if !parseBool(v) {
			t.Errorf("parseBool(%q) = false, want true", v)
		}
	}
	for _, v := range falsy {
		if parseBool(v) {
			t.Errorf("parseBool(%q) = true, want false", v)
		}
	}
}
