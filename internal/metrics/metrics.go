package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the shop counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	salesRecorded *prometheus.CounterVec
	salesRejected *prometheus.CounterVec
	reorders      prometheus.Counter
	reorderErrors prometheus.Counter
	loginFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		salesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aspas",
			Name:      "sales_recorded_total",
			Help:      "Committed sales by kind.",
		}, []string{"kind"}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aspas",
			Name:      "sales_rejected_total",
			Help:      "Sales that did not commit, by reason.",
		}, []string{"reason"}),
		reorders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aspas",
			Name:      "auto_reorders_total",
			Help:      "Parts replenished by the reorder monitor.",
		}),
		reorderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aspas",
			Name:      "auto_reorder_errors_total",
			Help:      "Reorder evaluations that failed.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aspas",
			Name:      "login_failures_total",
			Help:      "Rejected credential checks.",
		}),
	}

	reg.MustRegister(m.salesRecorded, m.salesRejected, m.reorders, m.reorderErrors, m.loginFailures)
	return m
}

func (m *Metrics) SaleRecorded(kind string) {
	if m == nil {
		return
	}
	m.salesRecorded.WithLabelValues(kind).Inc()
}

func (m *Metrics) SaleRejected(reason string) {
	if m == nil {
		return
	}
	m.salesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Reordered() {
	if m == nil {
		return
	}
	m.reorders.Inc()
}

func (m *Metrics) ReorderFailed() {
	if m == nil {
		return
	}
	m.reorderErrors.Inc()
}

func (m *Metrics) LoginFailed() {
	if m == nil {
		return
	}
	m.loginFailures.Inc()
}
