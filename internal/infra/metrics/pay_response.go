package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		PayResponseRequests,
		PayResponseDuration,
	)
}

var (
	// Count of provider return calls grouped by endpoint, result and bounded reason.
	// endpoint: response|redirect
	// result: ok|fail
	// reason (fail only): bad_json|method_not_allowed|decode_error|handler_error|unknown
	PayResponseRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pay_response_requests_total",
			Help: "Count of provider return calls by endpoint, result and reason.",
		},
		[]string{"endpoint", "result", "reason"},
	)

	// Latency of provider return handlers grouped by endpoint and result.
	PayResponseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pay_response_duration_seconds",
			Help:    "Duration of provider return handlers in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "result"},
	)
)
