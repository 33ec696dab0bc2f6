package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for card operations.
type Metrics struct {
	Activations         *prometheus.CounterVec
	AttestationVerdicts *prometheus.CounterVec
	ProfileLookups      *prometheus.CounterVec
	Deactivations       prometheus.Counter
	EmulatorFailures    prometheus.Counter
	SessionActive       prometheus.Gauge
	ActivationDuration  prometheus.Histogram
}

// New registers card collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Activations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campuscard_activations_total",
			Help: "Card activation attempts, labeled by outcome",
		}, []string{"outcome"}),
		AttestationVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campuscard_attestation_verdicts_total",
			Help: "Attestation verdicts, labeled by verdict",
		}, []string{"verdict"}),
		ProfileLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campuscard_profile_lookups_total",
			Help: "Offline profile lookups, labeled by result",
		}, []string{"result"}),
		Deactivations: factory.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_deactivations_total",
			Help: "Total number of deactivation calls",
		}),
		EmulatorFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_emulator_failures_total",
			Help: "Failures reported by the emulation transport",
		}),
		SessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "campuscard_session_active",
			Help: "1 while a card emulation session is armed",
		}),
		ActivationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "campuscard_activation_duration_seconds",
			Help:    "Latency of completed activation attempts",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

func (m *Metrics) IncrementActivation(outcome string) {
	m.Activations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVerdict(verdict string) {
	m.AttestationVerdicts.WithLabelValues(verdict).Inc()
}

func (m *Metrics) IncrementLookup(result string) {
	m.ProfileLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementDeactivation() {
	m.Deactivations.Inc()
}

func (m *Metrics) IncrementEmulatorFailure() {
	m.EmulatorFailures.Inc()
}

func (m *Metrics) SetSessionActive(active bool) {
	if active {
		m.SessionActive.Set(1)
		return
	}
	m.SessionActive.Set(0)
}

func (m *Metrics) ObserveActivationDuration(seconds float64) {
	m.ActivationDuration.Observe(seconds)
}
