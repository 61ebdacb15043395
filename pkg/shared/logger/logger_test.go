package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/egressguard/pkg/shared/config"
)

func TestNewLoggerLevelPriority(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "debug")
	t.Setenv(config.EnvLogFormat, "")

	fromEnv := NewLogger(nil, "test", nil)
	assert.True(t, fromEnv.IsDebug())

	cfg := config.Default()
	cfg.Logger.Level = "error"
	fromConfig := NewLogger(cfg, "test", nil)
	assert.False(t, fromConfig.IsWarn())
	assert.True(t, fromConfig.IsError())

	t.Setenv(config.EnvLogLevel, "")
	assert.True(t, NewLogger(config.Default(), "test", nil).IsWarn())
	assert.False(t, NewLogger(config.Default(), "test", nil).IsInfo())
}

func TestNewLoggerWritesToGivenOutput(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFormat, "")

	var buf bytes.Buffer
	log := NewLogger(config.Default(), "core-audit", &buf)
	log.Info("dropped below warn")
	log.Warn("file skipped", "path", "src/a.ts")

	out := buf.String()
	assert.NotContains(t, out, "dropped below warn")
	assert.Contains(t, out, "[WARN]  core-audit: file skipped: path=src/a.ts")
}

func TestNewLoggerJSONFormat(t *testing.T) {
	tests := []struct {
		name      string
		cfgFormat string
		envFormat string
		wantJSON  bool
	}{
		{name: "text by default"},
		{name: "json from config", cfgFormat: "json", wantJSON: true},
		{name: "json from environment", envFormat: "JSON", wantJSON: true},
		{name: "config overrides environment", cfgFormat: "text", envFormat: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvLogLevel, "")
			t.Setenv(config.EnvLogFormat, tt.envFormat)
			cfg := config.Default()
			cfg.Logger.Format = tt.cfgFormat

			var buf bytes.Buffer
			NewLogger(cfg, "core-scenarios", &buf).Error("scenario failed", "name", "forbidden fetch")

			var entry map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &entry)
			if !tt.wantJSON {
				assert.Error(t, err)
				assert.Contains(t, buf.String(), "core-scenarios: scenario failed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "error", entry["@level"])
			assert.Equal(t, "core-scenarios", entry["@module"])
			assert.Equal(t, "scenario failed", entry["@message"])
			assert.Equal(t, "forbidden fetch", entry["name"])
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, hclog.Trace, parseLevel("TRACE"))
	assert.Equal(t, hclog.Info, parseLevel(" info "))
	assert.Equal(t, hclog.Off, parseLevel("off"))
	assert.Equal(t, hclog.Warn, parseLevel(""))
	assert.Equal(t, hclog.Warn, parseLevel("verbose"))
}
