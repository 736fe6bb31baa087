// Package metrics exposes Prometheus collectors for exports and Peppol transmissions.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors
type Metrics struct {
	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportBytes    *prometheus.CounterVec
	transmissions  *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// New registers the collectors against registerer, or the default
// registerer when nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = build(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return build(registerer)
}

func build(registerer prometheus.Registerer) *Metrics {
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faktur_exports_total",
		Help: "Accounting exports partitioned by format and status.",
	}, []string{"format", "status"})
	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faktur_export_duration_seconds",
		Help:    "Time spent rendering an export.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
	exportBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faktur_export_bytes_total",
		Help: "Bytes produced by successful exports.",
	}, []string{"format"})
	transmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faktur_peppol_transmissions_total",
		Help: "Peppol send attempts partitioned by provider and outcome.",
	}, []string{"provider", "outcome"})

	registerer.MustRegister(exports, exportDuration, exportBytes, transmissions)
	return &Metrics{
		exports:        exports,
		exportDuration: exportDuration,
		exportBytes:    exportBytes,
		transmissions:  transmissions,
	}
}

// Transmission outcomes
const (
	OutcomeSent      = "sent"
	OutcomeTransient = "transient"
	OutcomePermanent = "permanent"
)

// ObserveExport records one export run. A nil receiver is a no-op.
func (m *Metrics) ObserveExport(format string, start time.Time, size int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	} else {
		m.exportBytes.WithLabelValues(format).Add(float64(size))
	}
	m.exports.WithLabelValues(format, status).Inc()
	m.exportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}

// ExportCounter returns the export counter of a format and status
func (m *Metrics) ExportCounter(format, status string) prometheus.Counter {
	return m.exports.WithLabelValues(format, status)
}

// ObserveTransmission records one access point call
func (m *Metrics) ObserveTransmission(provider, outcome string) {
	if m == nil {
		return
	}
	m.transmissions.WithLabelValues(provider, outcome).Inc()
}

// TransmissionCounter returns the attempt counter of a provider and outcome
func (m *Metrics) TransmissionCounter(provider, outcome string) prometheus.Counter {
	return m.transmissions.WithLabelValues(provider, outcome)
}
