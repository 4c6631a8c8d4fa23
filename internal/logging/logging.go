// Package logging builds the zap loggers used by the farmdesk hosts.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger. format is "json" or "console"; level is any zap level
// name and defaults to info.
func New(level, format string) (*zap.Logger, zap.AtomicLevel, error) {
	atom := zap.NewAtomicLevel()
	if err := SetLevel(atom, level); err != nil {
		return nil, atom, err
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, atom, fmt.Errorf("logging: unknown format %q", format)
	}
	cfg.Level = atom

	logger, err := cfg.Build()
	if err != nil {
		return nil, atom, fmt.Errorf("logging: build: %w", err)
	}
	return logger.Named("farmdesk"), atom, nil
}

// SetLevel changes the level of a running logger.
func SetLevel(atom zap.AtomicLevel, level string) error {
	if strings.TrimSpace(level) == "" {
		atom.SetLevel(zapcore.InfoLevel)
		return nil
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	atom.SetLevel(parsed)
	return nil
}
