package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	feedbackGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "feedback_generated_total",
		Help:      "Feedback generation attempts by variant and outcome",
	}, []string{"variant", "outcome"})

	oracleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "oracle_requests_total",
		Help:      "Structured-generation oracle calls by provider and result code",
	}, []string{"provider", "code"})

	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "prepwise",
		Name:      "live_transcript_sessions",
		Help:      "Currently open transcript ingestion sessions",
	})

	reconcilerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepwise",
		Name:      "feedback_reconciler_runs_total",
		Help:      "Reconciler job runs by outcome",
	}, []string{"outcome"})
)

func FeedbackGenerated(variant, outcome string) {
	feedbackGenerated.WithLabelValues(variant, outcome).Inc()
}

func OracleRequest(provider, code string) {
	oracleRequests.WithLabelValues(provider, code).Inc()
}

func SessionOpened() { liveSessions.Inc() }
func SessionClosed() { liveSessions.Dec() }

func ReconcilerRun(outcome string) {
	reconcilerRuns.WithLabelValues(outcome).Inc()
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
