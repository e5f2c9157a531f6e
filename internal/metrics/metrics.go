// Package metrics exposes Prometheus counters for template rendering and token counting.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargen_renders_total",
			Help: "Total number of template renders by format, mode and outcome.",
		},
		[]string{"format", "mode", "outcome"},
	)

	tokenCounts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chargen_token_count",
			Help:    "Distribution of token counts of counted texts by strategy.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"strategy"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chargen_exports_total",
			Help: "Total number of exported templates by destination and outcome.",
		},
		[]string{"destination", "outcome"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chargen_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ObserveRender records one render attempt
func ObserveRender(format, mode string, err error) {
	rendersTotal.WithLabelValues(format, mode, outcome(err)).Inc()
}

// RenderCounter returns the render counter for one label set
func RenderCounter(format, mode, outcome string) prometheus.Counter {
	return rendersTotal.WithLabelValues(format, mode, outcome)
}

// ObserveTokens records one token count
func ObserveTokens(strategy string, count int) {
	tokenCounts.WithLabelValues(strategy).Observe(float64(count))
}

// ObserveExport records one export to a destination such as "file" or "clipboard"
func ObserveExport(destination string, err error) {
	exportsTotal.WithLabelValues(destination, outcome(err)).Inc()
}

// ObserveRequest records one HTTP request
func ObserveRequest(route, status string, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
