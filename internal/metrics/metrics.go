// Package metrics holds the Prometheus collectors of the analysis core and
// the HTTP handler that exposes them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "netlogo_intel"

var (
	// LintRuns counts completed linter passes by linter name.
	LintRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lint_runs_total",
		Help:      "Completed linter passes.",
	}, []string{"linter"})

	// LinterPanics counts linter passes that panicked and were recovered.
	LinterPanics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "linter_panics_total",
		Help:      "Linter passes aborted by a recovered panic.",
	}, []string{"linter"})

	// Diagnostics counts reported diagnostics by severity.
	Diagnostics = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diagnostics_total",
		Help:      "Diagnostics reported.",
	}, []string{"severity"})

	// LintCache counts lint cache lookups by result (hit or miss).
	LintCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lint_cache_total",
		Help:      "Lint cache lookups.",
	}, []string{"result"})

	// RepairRuns counts FixGeneratedCode runs by outcome: ok, empty or recovered.
	RepairRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "repair_runs_total",
		Help:      "Code repair runs.",
	}, []string{"outcome"})

	// Duration observes analysis stage durations (parse, extract, lint, repair, project).
	Duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time spent per analysis stage.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"stage"})

	// Registry is the registry every collector above is registered with.
	Registry = prometheus.NewRegistry()
)

func init() {
	Registry.MustRegister(LintRuns, LinterPanics, Diagnostics, LintCache, RepairRuns, Duration)
}

// Since records the time elapsed since start under stage.
func Since(stage string, start time.Time) {
	Duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listen: %w", err)
	}
}
