// Package metrics exposes prometheus instrumentation for the recommendation core.
//
// Metrics:
//   - image_resolutions_total{tier}: image references served, by resolver tier
//   - provider_failures_total{provider}: provider errors and timeouts that triggered a fallback
//   - recommendation_duration_seconds: latency of the synchronous recommendation pass
//   - enrichment_events_total{outcome}: enrichment passes by outcome (published, empty, failed)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors used by the core. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ImageResolutions       *prometheus.CounterVec
	ProviderFailures       *prometheus.CounterVec
	RecommendationDuration prometheus.Histogram
	EnrichmentEvents       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImageResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "image_resolutions_total",
			Help: "Image references served, by resolver tier.",
		}, []string{"tier"}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_failures_total",
			Help: "Provider errors and timeouts that triggered a fallback.",
		}, []string{"provider"}),
		RecommendationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Latency of the synchronous recommendation pass.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		EnrichmentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrichment_events_total",
			Help: "Enrichment passes by outcome.",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.ImageResolutions, m.ProviderFailures, m.RecommendationDuration, m.EnrichmentEvents)
	}
	return m
}

// ImageResolved counts a resolution served by tier.
func (m *Metrics) ImageResolved(tier string) {
	if m == nil {
		return
	}
	m.ImageResolutions.WithLabelValues(tier).Inc()
}

// ProviderFailed counts a provider failure.
func (m *Metrics) ProviderFailed(provider string) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

// ObserveRecommendation records the duration of a recommendation pass in seconds.
func (m *Metrics) ObserveRecommendation(seconds float64) {
	if m == nil {
		return
	}
	m.RecommendationDuration.Observe(seconds)
}

// Enrichment counts an enrichment pass outcome.
func (m *Metrics) Enrichment(outcome string) {
	if m == nil {
		return
	}
	m.EnrichmentEvents.WithLabelValues(outcome).Inc()
}
