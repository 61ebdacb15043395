package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

// NewLogger creates a named logger writing to w, or to stderr when w is nil.
// Stdout is reserved for the audit verdict, so callers pass the command's error stream.
func NewLogger(cfg *config.Config, name string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var level, format string
	if cfg != nil {
		level, format = cfg.Logger.Level, cfg.Logger.Format
	}
	// config wins, the environment fills in what it leaves empty
	level = config.SetThen(level, os.Getenv(config.EnvLogLevel))
	format = config.SetThen(format, os.Getenv(config.EnvLogFormat))

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      w,
		Level:       parseLevel(level),
		JSONFormat:  strings.EqualFold(strings.TrimSpace(format), config.LogFormatJSON),
	})
}

// parseLevel maps a level name to hclog, defaulting to WARN for empty or unknown names.
func parseLevel(name string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		return hclog.Warn
	}
}
