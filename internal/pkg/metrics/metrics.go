package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subdesk"

// Gateway call outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeTimeout   = "timeout"
)

// Metrics holds every collector exported on /metrics. All methods are safe on a
// nil receiver so tests and CLIs may skip registration.
type Metrics struct {
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	billingEvents   *prometheus.CounterVec
	reconciled      *prometheus.CounterVec
}

// New registers the collectors on registerer, prometheus.DefaultRegisterer when nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Billing gateway calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Billing gateway call latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"op"}),
		billingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_operations_total",
			Help:      "Subscribe and cancel orchestrations by result.",
		}, []string{"operation", "result"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciled_subscriptions_total",
			Help:      "Subscriptions checked against the gateway by result.",
		}, []string{"result"}),
	}

	registerer.MustRegister(m.gatewayRequests, m.gatewayLatency, m.billingEvents, m.reconciled)
	return m
}

// ObserveGateway records one gateway call.
func (m *Metrics) ObserveGateway(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(op, outcome).Inc()
	m.gatewayLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// BillingOperation records the result of a subscribe or cancel orchestration.
func (m *Metrics) BillingOperation(operation, result string) {
	if m == nil {
		return
	}
	m.billingEvents.WithLabelValues(operation, result).Inc()
}

// Reconciled records one reconciliation outcome.
func (m *Metrics) Reconciled(result string) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(result).Inc()
}
