// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the logrus logger used across carsearch.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/carsearch/pkg/types"
)

// Fields is an alias so callers need not import logrus for field maps.
type Fields = logrus.Fields

// New returns a logger writing to stderr, configured from cfg.
func New(cfg types.LogConfig) *logrus.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w. An unrecognized level falls
// back to info and is reported once through the new logger.
func NewWithWriter(cfg types.LogConfig, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			logger.SetLevel(level)
			logger.WithField("level", cfg.Level).Warn("unrecognized log level, using info")
			return logger
		}
		level = parsed
	}
	logger.SetLevel(level)
	return logger
}

// Discard returns a logger that drops everything. Useful as a default for
// components constructed without a logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
