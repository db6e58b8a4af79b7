package config

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks configuration loading outcomes for one component so
// operators can see when a deployment is running on fallback values.
type Metrics struct {
	validationErrors *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	fallbackActive   prometheus.Gauge
	loadTimestamp    prometheus.Gauge
}

// NewMetrics registers configuration metrics for the named component.
func NewMetrics(component string) *Metrics {
	labels := prometheus.Labels{"component": component}
	return &Metrics{
		validationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "contest_reminder",
				Subsystem:   "config",
				Name:        "validation_errors_total",
				Help:        "Total number of configuration validation failures",
				ConstLabels: labels,
			},
			[]string{"field"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "contest_reminder",
				Subsystem:   "config",
				Name:        "fallbacks_total",
				Help:        "Total number of configuration fallbacks applied",
				ConstLabels: labels,
			},
			[]string{"field"},
		),
		fallbackActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   "contest_reminder",
				Subsystem:   "config",
				Name:        "fallback_active",
				Help:        "Whether any configuration fallback is currently active (1) or not (0)",
				ConstLabels: labels,
			},
		),
		loadTimestamp: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   "contest_reminder",
				Subsystem:   "config",
				Name:        "load_timestamp_seconds",
				Help:        "Unix timestamp of the last configuration load",
				ConstLabels: labels,
			},
		),
	}
}

// RecordFallback records a validation failure and the fallback it caused.
func (m *Metrics) RecordFallback(field string) {
	m.validationErrors.WithLabelValues(field).Inc()
	m.fallbacks.WithLabelValues(field).Inc()
}

// SetFallbackActive marks whether the component is running on any fallback value.
func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.fallbackActive.Set(1)
	} else {
		m.fallbackActive.Set(0)
	}
}

// RecordLoadTimestamp stamps the current time as the last load time.
func (m *Metrics) RecordLoadTimestamp() {
	m.loadTimestamp.Set(float64(time.Now().Unix()))
}
