package metrics

import "github.com/prometheus/client_golang/prometheus"

// Webhook processing outcomes used as the `outcome` label value.
const (
	WebhookOutcomeConfirmed = "confirmed"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeOrphan    = "orphan"
	WebhookOutcomeError     = "error"
)

// WebhookMetrics counts payment webhook deliveries by outcome. The orphan
// counter backs the operator alert for paid events with no matching booking.
type WebhookMetrics struct {
	events  *prometheus.CounterVec
	orphans prometheus.Counter
}

// NewWebhookMetrics registers webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook deliveries by processing outcome.",
	}, []string{"outcome"})
	orphans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_webhook_orphans_total",
		Help: "Paid events that could not be matched to a booking.",
	})
	reg.MustRegister(events, orphans)
	return &WebhookMetrics{events: events, orphans: orphans}
}

// IncOutcome counts one delivery with the given outcome.
func (m *WebhookMetrics) IncOutcome(outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(outcome).Inc()
}

// IncOrphan counts one orphan payment alert.
func (m *WebhookMetrics) IncOrphan() {
	if m == nil || m.orphans == nil {
		return
	}
	m.orphans.Inc()
}
