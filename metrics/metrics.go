// Package metrics holds the prometheus collectors for sync and match passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backlog"

// Registry holds every collector below, plus the go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// SyncedGames counts sync outcomes per game, by store and result
	// ("imported", "skipped", "failed").
	SyncedGames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "synced_games_total",
		Help:      "Games seen by store syncs, by outcome.",
	}, []string{"store", "result"})

	// MatchedGames counts match outcomes per game, by provider and result
	// ("matched", "unmatched", "failed").
	MatchedGames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matched_games_total",
		Help:      "Games processed by metadata match passes, by outcome.",
	}, []string{"provider", "result"})

	PassDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pass_duration_seconds",
		Help:      "Duration of sync and match passes.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
	}, []string{"pass"})

	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Metadata provider lookups, by provider and outcome.",
	}, []string{"provider", "result"})
)

func init() {
	Registry.MustRegister(
		SyncedGames,
		MatchedGames,
		PassDuration,
		ProviderRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObservePass records how long the named pass has run since start.
func ObservePass(pass string, start time.Time) {
	PassDuration.WithLabelValues(pass).Observe(time.Since(start).Seconds())
}
