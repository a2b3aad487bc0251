package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "offlineai_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offlineai_requests_total",
			Help: "Number of handled requests",
		},
		[]string{"endpoint", "outcome"},
	)

	fragments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offlineai_fragments_total",
			Help: "Text fragments relayed to clients",
		},
		[]string{"model"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offlineai_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "model"},
	)

	warmUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offlineai_warmup_total",
			Help: "Warm-up attempts",
		},
		[]string{"outcome"},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, requests, fragments, requestDuration, warmUps)
}

// SetBuildInfo sets the build info metric for the server.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordRequest increments the request counter for an endpoint.
func RecordRequest(endpoint string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	requests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordFragments adds relayed fragment counts for a model.
func RecordFragments(model string, n uint64) {
	fragments.WithLabelValues(model).Add(float64(n))
}

// ObserveRequestDuration records the duration of a request.
func ObserveRequestDuration(endpoint, model string, d time.Duration) {
	requestDuration.WithLabelValues(endpoint, model).Observe(d.Seconds())
}

// RecordWarmUp increments the warm-up counter.
func RecordWarmUp(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	warmUps.WithLabelValues(outcome).Inc()
}
