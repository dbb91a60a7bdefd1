package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the reconciliation and gateway collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	confirmResults  *prometheus.CounterVec
	requestOutcomes *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	webhooks        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		confirmResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurd",
			Name:      "confirm_results_total",
			Help:      "Payment confirmation attempts by trigger and result.",
		}, []string{"trigger", "result"}),
		requestOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurd",
			Name:      "payment_requests_total",
			Help:      "getOrCreate outcomes: reused, created, paid, failed.",
		}, []string{"outcome"}),
		gatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurd",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Outbound Quantoz Pay API calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		gatewayLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eurd",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Outbound Quantoz Pay API call latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op"}),
		webhooks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eurd",
			Name:      "webhooks_total",
			Help:      "Inbound webhook notifications by type and HTTP status.",
		}, []string{"type", "status"}),
	}
}

func (m *Metrics) ObserveConfirm(trigger, result string) {
	if m == nil {
		return
	}
	m.confirmResults.WithLabelValues(trigger, result).Inc()
}

func (m *Metrics) ObserveRequestOutcome(outcome string) {
	if m == nil {
		return
	}
	m.requestOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGatewayCall(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(op, outcome).Inc()
	m.gatewayLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveWebhook(eventType, status string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(eventType, status).Inc()
}
