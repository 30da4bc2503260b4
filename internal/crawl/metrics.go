package crawl

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchesTotal       *prometheus.CounterVec
	masteryFetchTotal  *prometheus.CounterVec
	workerTerminations *prometheus.CounterVec
	activeWorkers      prometheus.Gauge
	frontierPending    prometheus.Gauge
	crawlCyclesTotal   prometheus.Counter

	metricsOnce sync.Once
)

// InitMetrics registers the crawl collectors. Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		matchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riftline_matches_total",
				Help: "Matches dequeued, labeled by outcome (accepted, rejected, error).",
			},
			[]string{"outcome"},
		)
		masteryFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riftline_mastery_fetches_total",
				Help: "Champion mastery lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		workerTerminations = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riftline_worker_terminations_total",
				Help: "Worker terminations, labeled by reason.",
			},
			[]string{"reason"},
		)
		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "riftline_active_workers",
				Help: "Workers currently running.",
			},
		)
		frontierPending = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "riftline_frontier_pending",
				Help: "Match ids waiting in the frontier queue.",
			},
		)
		crawlCyclesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "riftline_crawl_cycles_total",
				Help: "Completed orchestrator crawl cycles.",
			},
		)
	})
}

func observeMatch(outcome string) {
	if matchesTotal != nil {
		matchesTotal.WithLabelValues(outcome).Inc()
	}
}

func observeMastery(outcome string) {
	if masteryFetchTotal != nil {
		masteryFetchTotal.WithLabelValues(outcome).Inc()
	}
}

func observeTermination(reason string) {
	if workerTerminations != nil {
		workerTerminations.WithLabelValues(reason).Inc()
	}
}

func observeActiveWorkers(delta float64) {
	if activeWorkers != nil {
		activeWorkers.Add(delta)
	}
}

func observePending(n int) {
	if frontierPending != nil {
		frontierPending.Set(float64(n))
	}
}

func observeCycle() {
	if crawlCyclesTotal != nil {
		crawlCyclesTotal.Inc()
	}
}
