// Package metrics records what a forkdemo run did. The process is short-lived,
// so the registry is flushed to a node-exporter textfile or pushed to a
// Prometheus Pushgateway instead of being scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Metrics struct {
	registry        *prometheus.Registry
	childrenSpawned prometheus.Counter
	spawnFailures   prometheus.Counter
	arguments       prometheus.Gauge
	childWait       prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		childrenSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forkdemo_children_spawned_total",
			Help: "Total number of child processes spawned",
		}),
		spawnFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forkdemo_spawn_failures_total",
			Help: "Total number of child processes that could not be started",
		}),
		arguments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "forkdemo_arguments",
			Help: "Number of positional arguments the program was started with",
		}),
		childWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "forkdemo_child_wait_seconds",
			Help:    "Time the parent spent blocked waiting for the child",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	m.registry.MustRegister(
		m.childrenSpawned,
		m.spawnFailures,
		m.arguments,
		m.childWait,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncChildrenSpawned() {
	m.childrenSpawned.Inc()
}

func (m *Metrics) IncSpawnFailures() {
	m.spawnFailures.Inc()
}

func (m *Metrics) SetArguments(n int) {
	m.arguments.Set(float64(n))
}

func (m *Metrics) ObserveChildWait(d time.Duration) {
	m.childWait.Observe(d.Seconds())
}

// WriteTextfile atomically writes the registry to path in the text exposition
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write textfile %s: %w", path, err)
	}
	return nil
}

// Push replaces the metrics of job on the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push to %s: %w", url, err)
	}
	return nil
}
