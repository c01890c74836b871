// Copyright (c) 2022 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package telemetry is the node's metrics facade: every subsystem asks
// for a named meter through LazyLoad so metric registration happens
// once, lazily, on first use, and is a no-op until Configure(true) is
// called (spec §1 lists Prometheus wiring itself as an external
// collaborator, but the core still emits through this facade so the
// collaborator has something to scrape).
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HistogramMeter observes a single unlabeled duration/size distribution.
type HistogramMeter interface{ Observe(int64) }

// HistogramVecMeter observes a labeled distribution.
type HistogramVecMeter interface{ ObserveWithLabels(int64, map[string]string) }

// CountMeter increments a single unlabeled counter.
type CountMeter interface{ Add(int64) }

// CountVecMeter increments a labeled counter.
type CountVecMeter interface{ AddWithLabel(int64, map[string]string) }

// GaugeMeter sets a single unlabeled gauge.
type GaugeMeter interface{ Gauge(int64) }

// GaugeVecMeter sets a labeled gauge.
type GaugeVecMeter interface{ GaugeWithLabel(int64, map[string]string) }

// Telemetry is the backing registry a meter is created against.
type Telemetry interface {
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHandler() http.Handler
}

var (
	mu      sync.Mutex
	current Telemetry = defaultNoopTelemetry()
)

// Configure switches the process-wide telemetry backend: enabled wires a
// Prometheus-backed implementation; disabled keeps the no-op. Meant to
// be called once at startup from the NodeConfig's MetricsEnabled flag,
// before any LazyLoad meter is first read.
func Configure(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		current = newPromTelemetry()
	} else {
		current = defaultNoopTelemetry()
	}
}

// LazyLoad defers meter construction until first read, so package-level
// vars can declare metrics without forcing Configure to run first (the
// pattern cmd/thor/node/metrics.go uses).
func LazyLoad[T any](build func() T) func() T {
	var once sync.Once
	var val T
	return func() T {
		once.Do(func() { val = build() })
		return val
	}
}

func backend() Telemetry {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// HTTPBuckets are the default latency buckets (ms) for HTTP-ish timings.
var HTTPBuckets = []int64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

func Histogram(name string, buckets []int64) HistogramMeter {
	return backend().GetOrCreateHistogramMeter(name, buckets)
}

func HistogramVecWithHTTPBuckets(name string, labels []string) HistogramVecMeter {
	return backend().GetOrCreateHistogramVecMeter(name, labels, HTTPBuckets)
}

func Counter(name string) CountMeter { return backend().GetOrCreateCountMeter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return backend().GetOrCreateCountVecMeter(name, labels)
}

func Gauge(name string) GaugeMeter { return backend().GetOrCreateGaugeMeter(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return backend().GetOrCreateGaugeVecMeter(name, labels)
}

// Handler exposes the current backend's /metrics HTTP handler, nil for
// the no-op backend.
func Handler() http.Handler { return backend().GetOrCreateHandler() }

// --- Prometheus-backed implementation ---

type promTelemetry struct {
	registry *prometheus.Registry
	mu       sync.Mutex
	hist     map[string]*prometheus.HistogramVec
	count    map[string]*prometheus.CounterVec
	gauge    map[string]*prometheus.GaugeVec
}

func newPromTelemetry() Telemetry {
	return &promTelemetry{
		registry: prometheus.NewRegistry(),
		hist:     make(map[string]*prometheus.HistogramVec),
		count:    make(map[string]*prometheus.CounterVec),
		gauge:    make(map[string]*prometheus.GaugeVec),
	}
}

func toFloatBuckets(buckets []int64) []float64 {
	if len(buckets) == 0 {
		return prometheus.DefBuckets
	}
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b)
	}
	return out
}

func (t *promTelemetry) histVec(name string, labels []string, buckets []int64) *prometheus.HistogramVec {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.hist[name]; ok {
		return v
	}
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Buckets: toFloatBuckets(buckets)}, labels)
	t.registry.MustRegister(v)
	t.hist[name] = v
	return v
}

func (t *promTelemetry) countVec(name string, labels []string) *prometheus.CounterVec {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.count[name]; ok {
		return v
	}
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labels)
	t.registry.MustRegister(v)
	t.count[name] = v
	return v
}

func (t *promTelemetry) gaugeVec(name string, labels []string) *prometheus.GaugeVec {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.gauge[name]; ok {
		return v
	}
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labels)
	t.registry.MustRegister(v)
	t.gauge[name] = v
	return v
}

func (t *promTelemetry) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return promHistogram{t.histVec(name, nil, buckets).WithLabelValues()}
}

func (t *promTelemetry) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return promHistogramVec{t.histVec(name, labels, buckets)}
}

func (t *promTelemetry) GetOrCreateCountMeter(name string) CountMeter {
	return promCounter{t.countVec(name, nil).WithLabelValues()}
}

func (t *promTelemetry) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return promCounterVec{t.countVec(name, labels)}
}

func (t *promTelemetry) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return promGauge{t.gaugeVec(name, nil).WithLabelValues()}
}

func (t *promTelemetry) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return promGaugeVec{t.gaugeVec(name, labels)}
}

func (t *promTelemetry) GetOrCreateHandler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

type promHistogram struct{ o prometheus.Observer }

func (h promHistogram) Observe(v int64) { h.o.Observe(float64(v)) }

type promHistogramVec struct{ v *prometheus.HistogramVec }

func (h promHistogramVec) ObserveWithLabels(v int64, labels map[string]string) {
	h.v.With(labels).Observe(float64(v))
}

type promCounter struct{ c prometheus.Counter }

func (c promCounter) Add(v int64) { c.c.Add(float64(v)) }

type promCounterVec struct{ v *prometheus.CounterVec }

func (c promCounterVec) AddWithLabel(v int64, labels map[string]string) {
	c.v.With(labels).Add(float64(v))
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Gauge(v int64) { g.g.Set(float64(v)) }

type promGaugeVec struct{ v *prometheus.GaugeVec }

func (g promGaugeVec) GaugeWithLabel(v int64, labels map[string]string) {
	g.v.With(labels).Set(float64(v))
}
