package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "realmgov/pkg/platform/audit"
)

// Metrics counts compliance emissions by event category.
type Metrics struct {
	EventsEmitted   *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "realmgov_audit_compliance_emitted_total",
			Help: "Audit events persisted by the compliance publisher",
		}, []string{"category"}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "realmgov_audit_compliance_persist_failures_total",
			Help: "Audit events the compliance publisher failed to persist",
		}, []string{"category"}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "realmgov_audit_compliance_persist_duration_seconds",
			Help:    "Time spent persisting one audit event",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

func (m *Metrics) IncEventsEmitted(category audit.EventCategory) {
	m.EventsEmitted.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) IncPersistFailures(category audit.EventCategory) {
	m.PersistFailures.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	m.PersistDuration.Observe(seconds)
}
