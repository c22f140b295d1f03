// Package metrics records counters, gauges and histograms by name. The
// web services use it for conversion counts and latencies; the Prometheus
// implementation exposes them on /metrics.
//
//	m := metrics.NewPrometheusMetrics()
//	m.RegisterWithLabels("leu_conversions_total", metrics.Counter, "Conversions by kind and outcome", []string{"kind", "outcome"})
//	m.RecordWithLabels("leu_conversions_total", 1, "numeral", "ok")
package metrics

import "time"

// Metric types accepted by Register and RegisterWithLabels.
const (
	Counter   = "Counter"
	Gauge     = "Gauge"
	Histogram = "Histogram"
)

type Metrics interface {
	Register(name, metricType, help string) error
	Record(name string, value float64)
	RegisterWithLabels(name, metricType, help string, labels []string) error
	RecordWithLabels(name string, value float64, labelValues ...string)
}

// Conversion metrics shared by the numeral and currency services.
const (
	ConversionsTotal   = "leu_conversions_total"
	ConversionDuration = "leu_conversion_duration_seconds"
)

// RegisterConversionMetrics registers ConversionsTotal, labelled by kind and
// outcome, and ConversionDuration, labelled by kind.
func RegisterConversionMetrics(m Metrics) error {
	if err := m.RegisterWithLabels(ConversionsTotal, Counter, "Conversions served, by kind and outcome", []string{"kind", "outcome"}); err != nil {
		return err
	}
	return m.RegisterWithLabels(ConversionDuration, Histogram, "Time spent converting, by kind", []string{"kind"})
}

// ObserveConversion records one conversion of kind that started at start.
// A nil m records nothing.
func ObserveConversion(m Metrics, kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.RecordWithLabels(ConversionsTotal, 1, kind, outcome)
	m.RecordWithLabels(ConversionDuration, time.Since(start).Seconds(), kind)
}
