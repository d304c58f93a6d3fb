package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the turn pipeline.
type PipelineMetrics struct {
	turnsTotal      *prometheus.CounterVec
	turnLatency     *prometheus.HistogramVec
	latencyBreaches prometheus.Counter
	personaSelected *prometheus.CounterVec
	activeCalls     prometheus.Gauge
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "pipeline",
			Name:      "turns_total",
			Help:      "Total processed turns by result status",
		}, []string{"status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aura",
			Subsystem: "pipeline",
			Name:      "turn_latency_seconds",
			Help:      "Latency of the analysis stages of a turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		latencyBreaches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "pipeline",
			Name:      "latency_breaches_total",
			Help:      "Turns whose analysis stages exceeded the latency budget",
		}),
		personaSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "pipeline",
			Name:      "persona_selected_total",
			Help:      "Persona selections by persona type",
		}, []string{"persona"}),
		activeCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aura",
			Subsystem: "pipeline",
			Name:      "active_calls",
			Help:      "Number of calls currently in progress",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.turnLatency, m.latencyBreaches, m.personaSelected, m.activeCalls)
	return m
}

func (m *PipelineMetrics) ObserveTurn(status string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.turnLatency.WithLabelValues(status).Observe(seconds)
}

func (m *PipelineMetrics) ObserveLatencyBreach() {
	if m == nil {
		return
	}
	m.latencyBreaches.Inc()
}

func (m *PipelineMetrics) ObservePersona(persona string) {
	if m == nil {
		return
	}
	m.personaSelected.WithLabelValues(persona).Inc()
}

func (m *PipelineMetrics) CallStarted() {
	if m == nil {
		return
	}
	m.activeCalls.Inc()
}

func (m *PipelineMetrics) CallEnded() {
	if m == nil {
		return
	}
	m.activeCalls.Dec()
}
