package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a private Prometheus registry, so
// several instances (one per test, say) never collide.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu            sync.RWMutex
	counters      map[string]prometheus.Counter
	counterVecs   map[string]*prometheus.CounterVec
	gauges        map[string]prometheus.Gauge
	gaugeVecs     map[string]*prometheus.GaugeVec
	histograms    map[string]prometheus.Histogram
	histogramVecs map[string]*prometheus.HistogramVec
	customBuckets map[string][]float64
}

// NewPrometheusMetrics returns an instance whose registry already carries
// the Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:      reg,
		counters:      make(map[string]prometheus.Counter),
		counterVecs:   make(map[string]*prometheus.CounterVec),
		gauges:        make(map[string]prometheus.Gauge),
		gaugeVecs:     make(map[string]*prometheus.GaugeVec),
		histograms:    make(map[string]prometheus.Histogram),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
		customBuckets: make(map[string][]float64),
	}
}

// SetCustomBuckets sets the buckets of a histogram registered later under name.
func (p *PrometheusMetrics) SetCustomBuckets(name string, buckets []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customBuckets[name] = buckets
}

func (p *PrometheusMetrics) buckets(name string) []float64 {
	if b, ok := p.customBuckets[name]; ok {
		return b
	}
	return prometheus.DefBuckets
}

// Register creates and registers a metric without labels.
func (p *PrometheusMetrics) Register(name, metricType, help string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		m := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		if err := p.registry.Register(m); err != nil {
			return err
		}
		p.counters[name] = m
	case Gauge:
		m := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		if err := p.registry.Register(m); err != nil {
			return err
		}
		p.gauges[name] = m
	case Histogram:
		m := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.buckets(name)})
		if err := p.registry.Register(m); err != nil {
			return err
		}
		p.histograms[name] = m
	default:
		return fmt.Errorf("unknown metric type %q for %s", metricType, name)
	}
	return nil
}

// Record adds to a counter, sets a gauge or observes a histogram. Unknown
// names are ignored.
func (p *PrometheusMetrics) Record(name string, value float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if counter, ok := p.counters[name]; ok {
		counter.Add(value)
		return
	}
	if gauge, ok := p.gauges[name]; ok {
		gauge.Set(value)
		return
	}
	if histogram, ok := p.histograms[name]; ok {
		histogram.Observe(value)
	}
}

// RegisterWithLabels creates and registers a labelled metric.
func (p *PrometheusMetrics) RegisterWithLabels(name, metricType, help string, labels []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		m := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
		if err := p.registry.Register(m); err != nil {
			return err
		}
		p.counterVecs[name] = m
	case Gauge:
		m := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
		if err := p.registry.Register(m); err != nil {
			return err
		}
		p.gaugeVecs[name] = m
	case Histogram:
		m := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: p.buckets(name)}, labels)
		if err := p.registry.Register(m); err != nil {
			return err
		}
		p.histogramVecs[name] = m
	default:
		return fmt.Errorf("unknown metric type %q for %s", metricType, name)
	}
	return nil
}

// RecordWithLabels is Record for labelled metrics. labelValues must match
// the labels given at registration, in order.
func (p *PrometheusMetrics) RecordWithLabels(name string, value float64, labelValues ...string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if counterVec, ok := p.counterVecs[name]; ok {
		counterVec.WithLabelValues(labelValues...).Add(value)
		return
	}
	if gaugeVec, ok := p.gaugeVecs[name]; ok {
		gaugeVec.WithLabelValues(labelValues...).Set(value)
		return
	}
	if histogramVec, ok := p.histogramVecs[name]; ok {
		histogramVec.WithLabelValues(labelValues...).Observe(value)
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (p *PrometheusMetrics) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Names of the HTTP metrics maintained by GinMiddleware.
const (
	HTTPRequestsTotal   = "leu_http_requests_total"
	HTTPRequestDuration = "leu_http_request_duration_seconds"
)

// GinMiddleware counts requests and observes their latency, labelled by
// method, route template and status.
func (p *PrometheusMetrics) GinMiddleware() (gin.HandlerFunc, error) {
	labels := []string{"method", "route", "status"}
	if err := p.RegisterWithLabels(HTTPRequestsTotal, Counter, "HTTP requests served", labels); err != nil {
		return nil, err
	}
	if err := p.RegisterWithLabels(HTTPRequestDuration, Histogram, "HTTP request latency", labels); err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		p.RecordWithLabels(HTTPRequestsTotal, 1, c.Request.Method, route, status)
		p.RecordWithLabels(HTTPRequestDuration, time.Since(start).Seconds(), c.Request.Method, route, status)
	}, nil
}
