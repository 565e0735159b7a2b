package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FORKDEMO"

	DefaultJob = "forkdemo"
)

const (
	keyLogLevel       = "log_level"
	keyMetricsFile    = "metrics_file"
	keyPushgatewayURL = "pushgateway_url"
	keyJob            = "job"
)

// Config is read from the environment only. Every command-line argument is a
// positional argument of the program, so no flags are parsed.
type Config struct {
	LogLevel       slog.Level
	MetricsFile    string
	PushgatewayURL string
	Job            string
}

func Load() Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	bindEnv(v, keyLogLevel, EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL")
	bindEnv(v, keyMetricsFile)
	bindEnv(v, keyPushgatewayURL)
	bindEnv(v, keyJob)

	v.SetDefault(keyLogLevel, "WARN")
	v.SetDefault(keyJob, DefaultJob)

	job := strings.TrimSpace(v.GetString(keyJob))
	if job == "" {
		job = DefaultJob
	}

	return Config{
		LogLevel:       ParseLevel(v.GetString(keyLogLevel)),
		MetricsFile:    strings.TrimSpace(v.GetString(keyMetricsFile)),
		PushgatewayURL: strings.TrimSpace(v.GetString(keyPushgatewayURL)),
		Job:            job,
	}
}

func bindEnv(v *viper.Viper, input ...string) {
	if err := v.BindEnv(input...); err != nil {
		slog.Warn("Error occurred binding env", "env", input, "error", err)
	}
}

// MetricsEnabled reports whether any metrics sink is configured.
func (c Config) MetricsEnabled() bool {
	return c.MetricsFile != "" || c.PushgatewayURL != ""
}

func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// InitLogger installs a JSON logger on stderr as the slog default. Stdout
// belongs to the program output.
func InitLogger(level slog.Level) *slog.Logger {
	logger := NewLogger(os.Stderr, level)
	slog.SetDefault(logger)
	return logger
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
