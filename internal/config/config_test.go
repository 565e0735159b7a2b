package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("FORKDEMO_LOG_LEVEL", "")
	t.Setenv("FORKDEMO_METRICS_FILE", "")
	t.Setenv("FORKDEMO_PUSHGATEWAY_URL", "")
	t.Setenv("FORKDEMO_JOB", "")

	cfg := Load()

	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Empty(t, cfg.MetricsFile)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, DefaultJob, cfg.Job)
	assert.False(t, cfg.MetricsEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("FORKDEMO_LOG_LEVEL", "debug")
	t.Setenv("FORKDEMO_METRICS_FILE", "/tmp/forkdemo.prom")
	t.Setenv("FORKDEMO_PUSHGATEWAY_URL", " http://localhost:9091 ")
	t.Setenv("FORKDEMO_JOB", "sample")

	cfg := Load()

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/forkdemo.prom", cfg.MetricsFile)
	assert.Equal(t, "http://localhost:9091", cfg.PushgatewayURL)
	assert.Equal(t, "sample", cfg.Job)
	assert.True(t, cfg.MetricsEnabled())
}

func TestLoad_LogLevelFallback(t *testing.T) {
	t.Setenv("FORKDEMO_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "ERROR")

	assert.Equal(t, slog.LevelError, Load().LogLevel)

	t.Setenv("FORKDEMO_LOG_LEVEL", "info")
	assert.Equal(t, slog.LevelInfo, Load().LogLevel)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" Warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("child reaped", "pid", 42)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "child reaped", record["msg"])
	assert.InDelta(t, 42, record["pid"], 0)
}

func TestBindEnv_ReportsError(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(NewLogger(&buf, slog.LevelWarn))
	t.Cleanup(func() { slog.SetDefault(previous) })

	v := viper.New()
	bindEnv(v)
	assert.Contains(t, buf.String(), "Error occurred binding env")

	buf.Reset()
	t.Setenv("FORKDEMO_JOB", "bound")
	v.SetEnvPrefix(EnvPrefix)
	bindEnv(v, keyJob)
	assert.Empty(t, buf.String())
	assert.Equal(t, "bound", v.GetString(keyJob))
}
