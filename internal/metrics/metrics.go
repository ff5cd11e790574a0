package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GraphBuildsTotal counts claim graph builds by outcome.
	GraphBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimnet_graph_builds_total",
			Help: "Total number of claim graphs built",
		},
		[]string{"outcome"},
	)

	// GraphNodes tracks the size of built graphs.
	GraphNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "claimnet_graph_nodes",
			Help:    "Number of nodes in built claim graphs",
			Buckets: prometheus.ExponentialBuckets(5, 4, 8),
		},
	)

	// RiskScores tracks computed facility risk scores.
	RiskScores = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claimnet_risk_score",
			Help:    "Final collusion risk score of scored facilities",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"level"},
	)

	// BackendRequestsTotal counts scoring backend calls by endpoint and outcome.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claimnet_backend_requests_total",
			Help: "Total number of scoring backend requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// BackendRequestSeconds tracks scoring backend latency.
	BackendRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claimnet_backend_request_seconds",
			Help:    "Latency of scoring backend requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Sessions tracks live dashboard sessions.
	Sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "claimnet_sessions",
			Help: "Number of live network analysis sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(GraphBuildsTotal)
	prometheus.MustRegister(GraphNodes)
	prometheus.MustRegister(RiskScores)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestSeconds)
	prometheus.MustRegister(Sessions)
}

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveGraphBuild records one build attempt; nodes is ignored on error.
func ObserveGraphBuild(nodes int, err error) {
	GraphBuildsTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		GraphNodes.Observe(float64(nodes))
	}
}

func ObserveRiskScore(level string, score float64) {
	RiskScores.WithLabelValues(level).Observe(score)
}

func ObserveBackendRequest(endpoint string, started time.Time, err error) {
	BackendRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
	BackendRequestSeconds.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
