// Package logging builds the zap logger used across the application.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ersonp/lineage-core/internal/infrastructure/config"
)

// New builds a logger from the log configuration. An empty level means
// info and an empty format means console.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	var zcfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Development = false
		zcfg.DisableStacktrace = true
	case "json":
		zcfg = zap.NewProductionConfig()
		zcfg.Sampling = nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	// stdout carries command output
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
