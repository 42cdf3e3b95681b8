package access

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts authorization decisions per predicate and outcome.
type Metrics struct {
	DecisionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the decision metrics on the given
// registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_access_decisions_total",
				Help: "Authorization decisions by predicate and outcome",
			},
			[]string{"predicate", "outcome"},
		),
	}
	if registry != nil {
		registry.MustRegister(m.DecisionsTotal)
	}
	return m
}

func (e *Engine) record(predicate string, allowed bool, err error) {
	if e.metrics == nil {
		return
	}
	outcome := "deny"
	switch {
	case err != nil:
		outcome = "error"
	case allowed:
		outcome = "allow"
	}
	e.metrics.DecisionsTotal.WithLabelValues(predicate, outcome).Inc()
}
