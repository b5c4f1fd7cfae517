// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/ingestkit/ingestkit/internal/config"
)

// newLogger builds the CLI logger. Debug output carries timestamps and caller
// information; everything else stays compact.
func newLogger(w io.Writer, level config.LogLevel) *log.Logger {
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		Level:           lvl,
		ReportTimestamp: lvl == log.DebugLevel,
		ReportCaller:    lvl == log.DebugLevel,
	})
}

// installLogger routes the slog default through a charm logger so internal
// packages can keep using log/slog.
func installLogger(w io.Writer, level config.LogLevel) {
	slog.SetDefault(slog.New(newLogger(w, level)))
}

// resolveLogLevel applies precedence: --log-level, then --verbose, then the
// config file, then warn.
func resolveLogLevel(flagLevel string, verbose bool, cfg *config.Config) (config.LogLevel, error) {
	if flagLevel != "" {
		lvl := config.LogLevel(flagLevel)
		if err := lvl.Validate(); err != nil {
			return "", err
		}
		return lvl, nil
	}
	if verbose {
		return config.LogLevelDebug, nil
	}
	if cfg != nil && cfg.Log.Level != "" {
		return cfg.Log.Level, nil
	}
	return config.LogLevelWarn, nil
}
