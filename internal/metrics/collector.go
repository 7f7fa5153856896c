// Package metrics provides the Prometheus-backed implementation of
// pkg/adapters/metrics.Adapter: the concrete collector a host process wires
// into pkg/keymaster, exposing operation counts, error counts, and latency
// histograms for scraping.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	adapter "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/metrics"
)

// Namespace is the Prometheus namespace every keymaster metric is registered under.
const Namespace = "keymaster"

// Collector implements pkg/adapters/metrics.Adapter on top of
// prometheus/client_golang. Every metric is keyed by a single "metric" label
// carrying the caller-supplied name (pkg/adapters/metrics's Metric*
// constants); this deliberately flattens the richer per-call tags argument
// down to that one dimension rather than registering a new CounterVec per
// distinct tag set at runtime, which Prometheus's client library does not
// support.
type Collector struct {
	counters  *prometheus.CounterVec
	gauges    *prometheus.GaugeVec
	durations *prometheus.HistogramVec
}

// NewCollector registers keymaster's metric families against reg. Passing
// nil uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		counters: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_total",
			Help:      "Total count of keymaster events by metric name.",
		}, []string{"metric"}),
		gauges: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "gauge",
			Help:      "Current value of a keymaster gauge metric.",
		}, []string{"metric"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "duration_seconds",
			Help:      "Duration of keymaster operations in seconds.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"metric"}),
	}
}

func (c *Collector) RecordCounter(_ context.Context, name string, _ map[string]string) error {
	c.counters.WithLabelValues(name).Inc()
	return nil
}

func (c *Collector) RecordCounterWithValue(_ context.Context, name string, value int64, _ map[string]string) error {
	c.counters.WithLabelValues(name).Add(float64(value))
	return nil
}

func (c *Collector) RecordGauge(_ context.Context, name string, value float64, _ map[string]string) error {
	c.gauges.WithLabelValues(name).Set(value)
	return nil
}

func (c *Collector) RecordHistogram(_ context.Context, name string, value float64, _ map[string]string) error {
	c.durations.WithLabelValues(name).Observe(value)
	return nil
}

func (c *Collector) RecordTimer(_ context.Context, name string, d time.Duration, _ map[string]string) error {
	c.durations.WithLabelValues(name).Observe(d.Seconds())
	return nil
}

func (c *Collector) Name() string { return "prometheus" }

var _ adapter.Adapter = (*Collector)(nil)
