package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal and the ticket gateway.
// A nil *Metrics records nothing.
type Metrics struct {
	attachmentOps  *prometheus.CounterVec
	ticketRequests *prometheus.CounterVec
	gatewayLatency prometheus.Histogram
	ticketRenders  *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attachmentOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vetportal_attachment_operations_total",
				Help: "Object store operations performed while syncing appointment photos",
			},
			[]string{"op", "outcome"},
		),
		ticketRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vetportal_ticket_proxy_requests_total",
				Help: "Ticket proxy requests by terminal outcome",
			},
			[]string{"outcome"},
		),
		gatewayLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vetportal_ticket_gateway_duration_seconds",
				Help:    "Latency of calls to the internal ticket gateway",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		ticketRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vetportal_ticket_renders_total",
				Help: "Ticket documents rendered by the gateway",
			},
			[]string{"outcome"},
		),
	}
}

// RecordAttachment counts one object store operation of the attachment lifecycle.
func (m *Metrics) RecordAttachment(op, outcome string) {
	if m == nil {
		return
	}
	m.attachmentOps.WithLabelValues(op, outcome).Inc()
}

// RecordTicketProxy counts one ticket proxy request.
func (m *Metrics) RecordTicketProxy(outcome string) {
	if m == nil {
		return
	}
	m.ticketRequests.WithLabelValues(outcome).Inc()
}

// ObserveGatewayLatency records the duration of one gateway round trip.
func (m *Metrics) ObserveGatewayLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayLatency.Observe(d.Seconds())
}

// RecordTicketRender counts one ticket render attempt on the gateway.
func (m *Metrics) RecordTicketRender(outcome string) {
	if m == nil {
		return
	}
	m.ticketRenders.WithLabelValues(outcome).Inc()
}
