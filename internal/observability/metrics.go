package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the debugging assistant daemon.
type Metrics struct {
	registry        *prometheus.Registry
	AnalyzeRequests *prometheus.CounterVec
	AnalyzeDuration *prometheus.HistogramVec
	LLMFailures     *prometheus.CounterVec
	EmptySections   *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
	TransportErrs   *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with analysis collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	reqs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debugmate_analyze_requests_total",
		Help: "Total analysis requests by outcome",
	}, []string{"outcome"})

	durs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "debugmate_analyze_duration_seconds",
		Help:    "Analysis pipeline duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	llmFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debugmate_llm_failures_total",
		Help: "LLM call failures by provider",
	}, []string{"provider"})

	emptySections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debugmate_parse_empty_sections_total",
		Help: "LLM responses missing an expected section",
	}, []string{"section"})

	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "debugmate_active_sessions",
		Help: "Sessions currently held in memory",
	})

	trErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "debugmate_transport_errors_total",
		Help: "Transport-level errors by transport and reason",
	}, []string{"transport", "reason"})

	reg.MustRegister(reqs, durs, llmFailures, emptySections, active, trErrors)

	return &Metrics{
		registry:        reg,
		AnalyzeRequests: reqs,
		AnalyzeDuration: durs,
		LLMFailures:     llmFailures,
		EmptySections:   emptySections,
		ActiveSessions:  active,
		TransportErrs:   trErrors,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAnalyze records one pipeline run with its duration.
func (m *Metrics) RecordAnalyze(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.AnalyzeRequests.WithLabelValues(outcome).Inc()
	m.AnalyzeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordLLMFailure records a failed completion call.
func (m *Metrics) RecordLLMFailure(provider string) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	m.LLMFailures.WithLabelValues(provider).Inc()
}

// RecordEmptySection records a parsed response missing an expected section.
func (m *Metrics) RecordEmptySection(section string) {
	if m == nil {
		return
	}
	m.EmptySections.WithLabelValues(section).Inc()
}

// SetActiveSessions tracks the in-memory session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// RecordTransportError records a transport-level error.
func (m *Metrics) RecordTransportError(transport, reason string) {
	if m == nil {
		return
	}
	if transport == "" {
		transport = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	m.TransportErrs.WithLabelValues(transport, reason).Inc()
}
