// Package monitoring exposes Prometheus instrumentation for the generator
// pipelines.
package monitoring

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for the generation counters.
const (
	OutcomeOK            = "ok"
	OutcomeStub          = "stub"
	OutcomeUnsatisfiable = "unsatisfiable"
)

// Metrics aggregates the headerforge collectors. All methods are nil-safe so
// generators can run uninstrumented.
type Metrics struct {
	headersGenerated      *prometheus.CounterVec
	fingerprintsGenerated *prometheus.CounterVec
	relaxations           *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		headersGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "headerforge",
			Name:      "headers_generated_total",
			Help:      "Header sets generated, by outcome.",
		}, []string{"outcome"}),
		fingerprintsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "headerforge",
			Name:      "fingerprints_generated_total",
			Help:      "Fingerprints generated, by outcome.",
		}, []string{"outcome"}),
		relaxations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "headerforge",
			Name:      "constraint_relaxations_total",
			Help:      "Constraint lists reset during relaxation, by list.",
		}, []string{"list"}),
	}
	reg.MustRegister(m.headersGenerated, m.fingerprintsGenerated, m.relaxations)
	return m
}

// HeaderOutcome counts one header-generation request.
func (m *Metrics) HeaderOutcome(outcome string) {
	if m == nil {
		return
	}
	m.headersGenerated.WithLabelValues(outcome).Inc()
}

// FingerprintOutcome counts one fingerprint-generation request.
func (m *Metrics) FingerprintOutcome(outcome string) {
	if m == nil {
		return
	}
	m.fingerprintsGenerated.WithLabelValues(outcome).Inc()
}

// Relaxation counts one constraint-list reset.
func (m *Metrics) Relaxation(list string) {
	if m == nil {
		return
	}
	m.relaxations.WithLabelValues(list).Inc()
}
