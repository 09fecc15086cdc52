// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package diagnostics builds the profiler's structured logger and, when
// asked, records a snapshot of the host environment so reports from the
// field carry enough context to reproduce.
package diagnostics

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console logger at the given level. Unknown levels
// fall back to info.
func NewLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "console",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return cfg.Build()
}

// LogEnvironment logs a one-shot snapshot of the host and process the
// profiler is running in. Lookup failures are logged at debug level and
// never abort startup; the snapshot is advisory.
func LogEnvironment(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("go_version", runtime.Version()),
		zap.Int("num_cpu", runtime.NumCPU()),
		zap.Int("pid", os.Getpid()),
	}

	if info, err := host.Info(); err == nil {
		fields = append(fields,
			zap.String("os", info.OS),
			zap.String("platform", info.Platform),
			zap.String("platform_version", info.PlatformVersion),
			zap.String("kernel_version", info.KernelVersion),
		)
	} else {
		logger.Debug("host info unavailable", zap.Error(err))
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			fields = append(fields, zap.Uint64("rss_bytes", mem.RSS))
		}
	} else {
		logger.Debug("process info unavailable", zap.Error(err))
	}

	logger.Info("environment", fields...)
}
