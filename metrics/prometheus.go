// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/provex/provex/log"
)

const namespace = "provex"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the global metrics service to the
// prometheus implementation. Meters created before initialization stay no-op.
func InitializePrometheusMetrics() {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := metrics.(*prometheusMetrics); ok {
		return
	}
	metrics = newPrometheusMetrics()
}

type prometheusMetrics struct {
	registry *prometheus.Registry

	lock     sync.Mutex
	counters map[string]prometheus.Counter
	counterVecs map[string]*prometheus.CounterVec
	gauges   map[string]prometheus.Gauge
	histogramVecs map[string]*prometheus.HistogramVec
}

func newPrometheusMetrics() Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusMetrics{
		registry:      registry,
		counters:      make(map[string]prometheus.Counter),
		counterVecs:   make(map[string]*prometheus.CounterVec),
		gauges:        make(map[string]prometheus.Gauge),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
	}
}

func (p *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	p.lock.Lock()
	defer p.lock.Unlock()

	if meter, ok := p.counters[name]; ok {
		return &promCountMeter{meter}
	}
	meter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
	if err := p.registry.Register(meter); err != nil {
		logger.Warn("unable to register counter", "name", name, "error", err)
	}
	p.counters[name] = meter
	return &promCountMeter{meter}
}

func (p *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	p.lock.Lock()
	defer p.lock.Unlock()

	if meter, ok := p.counterVecs[name]; ok {
		return &promCountVecMeter{meter}
	}
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
	if err := p.registry.Register(meter); err != nil {
		logger.Warn("unable to register counter vec", "name", name, "error", err)
	}
	p.counterVecs[name] = meter
	return &promCountVecMeter{meter}
}

func (p *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	p.lock.Lock()
	defer p.lock.Unlock()

	if meter, ok := p.gauges[name]; ok {
		return &promGaugeMeter{meter}
	}
	meter := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
	if err := p.registry.Register(meter); err != nil {
		logger.Warn("unable to register gauge", "name", name, "error", err)
	}
	p.gauges[name] = meter
	return &promGaugeMeter{meter}
}

func (p *prometheusMetrics) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	p.lock.Lock()
	defer p.lock.Unlock()

	if meter, ok := p.histogramVecs[name]; ok {
		return &promHistogramVecMeter{meter}
	}
	floatBuckets := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		floatBuckets = append(floatBuckets, float64(b))
	}
	meter := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets,
	}, labels)
	if err := p.registry.Register(meter); err != nil {
		logger.Warn("unable to register histogram vec", "name", name, "error", err)
	}
	p.histogramVecs[name] = meter
	return &promHistogramVecMeter{meter}
}

func (p *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(v int64) { c.counter.Add(float64(v)) }

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(v int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(v))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (g *promGaugeMeter) Add(v int64) { g.gauge.Add(float64(v)) }
func (g *promGaugeMeter) Set(v int64) { g.gauge.Set(float64(v)) }

type promHistogramVecMeter struct {
	histogram *prometheus.HistogramVec
}

func (h *promHistogramVecMeter) ObserveWithLabels(v int64, labels map[string]string) {
	h.histogram.With(labels).Observe(float64(v))
}
