package main

import (
	"context"
	"log/slog"
	"os"

	"forkdemo/internal/config"
	"forkdemo/internal/demo"
	"forkdemo/internal/metrics"
	"forkdemo/internal/proc"
	"forkdemo/internal/spawn"
)

func main() {
	if spawn.IsChild() {
		demo.RunChild(os.Stdout)
	}

	cfg := config.Load()
	config.InitLogger(cfg.LogLevel)

	args := os.Args[1:]
	m := metrics.New()

	procs, err := proc.New("")
	if err != nil {
		slog.Debug("Process inspection disabled", "error", err)
	}

	runner := &demo.Runner{
		Out:     os.Stdout,
		Forker:  demo.SpawnForker(spawn.Spawner{Args: args}),
		Getpid:  spawn.Getpid,
		Metrics: m,
		Procs:   procs,
	}

	ctx := context.Background()
	runErr := runner.Run(ctx, args)
	flushMetrics(ctx, cfg, m)

	if runErr != nil {
		slog.Error("Failed to run", "error", runErr)
		os.Exit(1)
	}
}

func flushMetrics(ctx context.Context, cfg config.Config, m *metrics.Metrics) {
	if !cfg.MetricsEnabled() {
		return
	}
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics textfile", "error", err)
		} else {
			slog.Info("Metrics written", "path", cfg.MetricsFile)
		}
	}
	if cfg.PushgatewayURL != "" {
		if err := m.Push(ctx, cfg.PushgatewayURL, cfg.Job); err != nil {
			slog.Warn("Failed to push metrics", "error", err)
		} else {
			slog.Info("Metrics pushed", "url", cfg.PushgatewayURL, "job", cfg.Job)
		}
	}
}
