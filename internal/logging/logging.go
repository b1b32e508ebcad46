// Package logging builds the zap logger shared by gcevm's components.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to stderr at level in the given format.
//
// Console output drops timestamps and caller information so that progress
// lines ("Waiting for operation to finish...") read like plain CLI output.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatConsole, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.DisableStacktrace = true
		cfg.DisableCaller = true
		cfg.EncoderConfig.TimeKey = ""
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case FormatJSON:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q (valid formats: console, json)", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
