package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a container of metrics for an optimizer.
type Metrics struct {
	// registry to collect metrics as a unit.
	reg *prometheus.Registry

	batchIterations   *prometheus.HistogramVec
	ruleApplications  *prometheus.CounterVec
	nonconvergedTotal *prometheus.CounterVec
}

// NewMetrics creates the optimizer metrics in a registry of their own.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	return &Metrics{
		reg: reg,

		batchIterations: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantaopt_optimizer_batch_iterations",
			Help:    "Number of iterations a batch ran before it stopped",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50, 100},
		}, []string{"batch"}),
		ruleApplications: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "quantaopt_optimizer_rule_applications_total",
			Help: "Total number of rule applications by rule and whether the plan changed",
		}, []string{"rule", "effective"}),
		nonconvergedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "quantaopt_optimizer_nonconverged_batches_total",
			Help: "Total number of fixed point batches stopped by their iteration cap or a plan cycle",
		}, []string{"batch"}),
	}
}

// Register registers metrics to report to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error { return reg.Register(m.reg) }

// Unregister unregisters metrics from the provided Registerer.
func (m *Metrics) Unregister(reg prometheus.Registerer) { reg.Unregister(m.reg) }

func (m *Metrics) observeRule(rule string, effective bool) {
	label := "false"
	if effective {
		label = "true"
	}
	m.ruleApplications.WithLabelValues(rule, label).Inc()
}
