// Package telemetry wires the reasoning pipeline's counters, gauges, and
// histograms into OpenTelemetry, the way every metrics-emitting package in
// the framework this module grew out of does it.
package telemetry

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nimbus-ai/reasoncore/core"
)

// Registry implements core.MetricsRegistry on top of an OTEL meter, caching
// instruments by name so hot paths (one emission per task) don't pay
// instrument-creation cost on every call.
type Registry struct {
	meter      metric.Meter
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Counter // last-value approximated as a counter-backed gauge
	mu         sync.Mutex
}

// NewRegistry builds a Registry backed by the named OTEL meter. Pass
// "nimbus/reasoncore" (or a component-scoped variant) as meterName.
func NewRegistry(meterName string) *Registry {
	return &Registry{
		meter:      otel.Meter(meterName),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Counter),
	}
}

func toAttrs(labels []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		attrs = append(attrs, attribute.String(labels[i], labels[i+1]))
	}
	return attrs
}

// Counter increments name by 1, tagged with the given key/value label pairs.
func (r *Registry) Counter(name string, labels ...string) {
	r.mu.Lock()
	c, ok := r.counters[name]
	if !ok {
		var err error
		c, err = r.meter.Int64Counter(sanitize(name))
		if err != nil {
			r.mu.Unlock()
			return
		}
		r.counters[name] = c
	}
	r.mu.Unlock()
	c.Add(context.Background(), 1, metric.WithAttributes(toAttrs(labels)...))
}

// Gauge records a point-in-time value. OTEL's async-gauge API doesn't fit a
// synchronous push model well, so this is backed by a monotonic counter
// reset convention: callers emit the current value every time, and a
// downstream aggregator (e.g. a Prometheus "last value" query) uses it as a
// gauge by taking the most recent sample rather than summing.
func (r *Registry) Gauge(name string, value float64, labels ...string) {
	r.mu.Lock()
	c, ok := r.gauges[name]
	if !ok {
		var err error
		c, err = r.meter.Float64Counter(sanitize(name) + ".gauge")
		if err != nil {
			r.mu.Unlock()
			return
		}
		r.gauges[name] = c
	}
	r.mu.Unlock()
	c.Add(context.Background(), value, metric.WithAttributes(toAttrs(labels)...))
}

// Histogram records value into a distribution, e.g. task latency in ms.
func (r *Registry) Histogram(name string, value float64, labels ...string) {
	r.mu.Lock()
	h, ok := r.histograms[name]
	if !ok {
		var err error
		h, err = r.meter.Float64Histogram(sanitize(name))
		if err != nil {
			r.mu.Unlock()
			return
		}
		r.histograms[name] = h
	}
	r.mu.Unlock()
	h.Record(context.Background(), value, metric.WithAttributes(toAttrs(labels)...))
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

var _ core.MetricsRegistry = (*Registry)(nil)
