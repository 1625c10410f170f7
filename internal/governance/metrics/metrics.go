package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for governance operations.
// Tracks operation outcomes, token volume and critical path durations.
type Metrics struct {
	Operations        *prometheus.CounterVec
	Failures          *prometheus.CounterVec
	TokensDeposited   prometheus.Counter
	TokensWithdrawn   prometheus.Counter
	RecordsCreated    prometheus.Counter
	Compensations     *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New registers the governance metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realmgov_operations_total",
			Help: "Governance operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realmgov_operation_failures_total",
			Help: "Failed governance operations by error code",
		}, []string{"operation", "code"}),
		TokensDeposited: f.NewCounter(prometheus.CounterOpts{
			Name: "realmgov_tokens_deposited_total",
			Help: "Governing tokens credited to records",
		}),
		TokensWithdrawn: f.NewCounter(prometheus.CounterOpts{
			Name: "realmgov_tokens_withdrawn_total",
			Help: "Governing tokens returned to owners",
		}),
		RecordsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "realmgov_records_created_total",
			Help: "Token owner records allocated on first deposit",
		}),
		Compensations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realmgov_custody_compensations_total",
			Help: "Reverse transfers issued after a failed record commit, by result",
		}, []string{"result"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "realmgov_operation_duration_seconds",
			Help:    "Duration of governance operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
	}
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSuccess(operation string) {
	m.Operations.WithLabelValues(operation, "success").Inc()
}

// IncrementFailure counts a failed operation under its error code.
func (m *Metrics) IncrementFailure(operation, code string) {
	m.Operations.WithLabelValues(operation, "failure").Inc()
	m.Failures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) AddDeposited(amount uint64) {
	m.TokensDeposited.Add(float64(amount))
}

func (m *Metrics) AddWithdrawn(amount uint64) {
	m.TokensWithdrawn.Add(float64(amount))
}

func (m *Metrics) IncrementRecordCreated() {
	m.RecordsCreated.Inc()
}

// IncrementCompensation counts a reverse transfer; result is "reversed" or "failed".
func (m *Metrics) IncrementCompensation(result string) {
	m.Compensations.WithLabelValues(result).Inc()
}
