// Package metrics exposes run counters as Prometheus counters for
// long check-all runs, behind an optional --metrics-addr flag. Scaled down
// from a fuller observability stack in the pack to counters only: this
// program has no tracing/otel component to justify more.
package metrics

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the counters a run updates as it progresses.
type Recorder struct {
	CommitsWalked       prometheus.Counter
	AchievementsGranted prometheus.Counter
	CacheHits           prometheus.Counter
}

// NewRecorder registers a fresh set of counters against the default
// Prometheus registry.
func NewRecorder() *Recorder {
	return &Recorder{
		CommitsWalked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herostratus_commits_walked_total",
			Help: "Commits walked across all check-all runs.",
		}),
		AchievementsGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herostratus_achievements_granted_total",
			Help: "Achievements granted across all check-all runs.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "herostratus_cache_hits_total",
			Help: "Commits short-circuited by the incremental cache's early-exit protocol.",
		}),
	}
}

// Observe adds one repository's stats to the counters. Called once per
// repository after its engine run completes.
func (r *Recorder) Observe(commitsWalked, achievementsGranted, cacheHits int) {
	r.CommitsWalked.Add(float64(commitsWalked))
	r.AchievementsGranted.Add(float64(achievementsGranted))
	r.CacheHits.Add(float64(cacheHits))
}

// Serve starts an HTTP server exposing /metrics on addr and blocks until ctx
// is canceled or the server fails. Intended to be run in its own goroutine.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics: server stopped", "addr", addr, "err", err)
	}
}
