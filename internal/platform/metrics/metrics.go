package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoansCreated      prometheus.Counter
	PaymentsProcessed prometheus.Counter
	LateFeesAssessed  prometheus.Counter
	DefaultsHandled   prometheus.Counter

	SweepRuns     prometheus.Counter
	SweepFailures prometheus.Counter
	SweepDuration prometheus.Histogram

	NotificationsSent *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LoansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgate_loans_created_total",
			Help: "Total number of loans originated",
		}),
		PaymentsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgate_payments_processed_total",
			Help: "Total number of completed payments",
		}),
		LateFeesAssessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgate_late_fees_assessed_total",
			Help: "Total number of late fee payment records created",
		}),
		DefaultsHandled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgate_defaults_handled_total",
			Help: "Total number of loans written off as defaulted",
		}),
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgate_sweep_runs_total",
			Help: "Total number of completed automation sweeps",
		}),
		SweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fundgate_sweep_loan_failures_total",
			Help: "Per-loan failures recorded and skipped during sweeps",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundgate_sweep_duration_seconds",
			Help:    "Duration of one full automation sweep",
			Buckets: prometheus.DefBuckets,
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fundgate_notifications_sent_total",
			Help: "Notifications handed to the sink, by kind",
		}, []string{"kind"}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// collide on duplicate registration.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		LoansCreated:      factory.NewCounter(prometheus.CounterOpts{Name: "fundgate_loans_created_total"}),
		PaymentsProcessed: factory.NewCounter(prometheus.CounterOpts{Name: "fundgate_payments_processed_total"}),
		LateFeesAssessed:  factory.NewCounter(prometheus.CounterOpts{Name: "fundgate_late_fees_assessed_total"}),
		DefaultsHandled:   factory.NewCounter(prometheus.CounterOpts{Name: "fundgate_defaults_handled_total"}),
		SweepRuns:         factory.NewCounter(prometheus.CounterOpts{Name: "fundgate_sweep_runs_total"}),
		SweepFailures:     factory.NewCounter(prometheus.CounterOpts{Name: "fundgate_sweep_loan_failures_total"}),
		SweepDuration:     factory.NewHistogram(prometheus.HistogramOpts{Name: "fundgate_sweep_duration_seconds"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{Name: "fundgate_notifications_sent_total"}, []string{"kind"}),
	}
}
