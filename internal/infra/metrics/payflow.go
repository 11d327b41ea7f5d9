package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		payflowStartedTotal,
		payflowOutcomesTotal,
		swgEventsTotal,
		txReconciliationTotal,
		confirmSurfaceTotal,
		decodeFailuresTotal,
	)
}

var (
	payflowStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payflow_started_total",
			Help: "Purchase flows handed to the payment provider, by flow.",
		},
		[]string{"flow"}, // subscribe|contribute
	)

	// outcome: completed|canceled|failed
	payflowOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payflow_outcomes_total",
			Help: "Provider responses by flow and outcome.",
		},
		[]string{"flow", "outcome"},
	)

	swgEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swg_events_total",
			Help: "Analytics events logged, by event kind and visibility.",
		},
		[]string{"event", "public"},
	)

	txReconciliationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tx_reconciliation_total",
			Help: "Transaction id reconciliation outcomes.",
		},
		[]string{"outcome"},
	)

	confirmSurfaceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirm_surface_total",
			Help: "Confirmation surfaces resolved, by kind (dialog|inline|none).",
		},
		[]string{"surface"},
	)

	decodeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_response_decode_failures_total",
			Help: "Provider payloads that could not be decoded, by reason.",
		},
		[]string{"reason"}, // malformed|envelope
	)
)

func IncFlowStarted(flow string) {
	payflowStartedTotal.WithLabelValues(norm(flow)).Inc()
}

func IncFlowOutcome(flow, outcome string) {
	payflowOutcomesTotal.WithLabelValues(norm(flow), norm(outcome)).Inc()
}

func IncSwgEvent(event string, public bool) {
	p := "false"
	if public {
		p = "true"
	}
	swgEventsTotal.WithLabelValues(event, p).Inc()
}

func IncReconciliation(outcome string) {
	txReconciliationTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncConfirmSurface(surface string) {
	confirmSurfaceTotal.WithLabelValues(norm(surface)).Inc()
}

func IncDecodeFailure(reason string) {
	decodeFailuresTotal.WithLabelValues(norm(reason)).Inc()
}
