// Package metrics defines the adapter interface pkg/keymaster emits
// telemetry through, so a caller can plug in Prometheus, StatsD, or
// whatever their own observability stack expects without the core package
// depending on any one of them.
package metrics

import (
	"context"
	"time"
)

// Standard metric names pkg/keymaster records against.
const (
	MetricKeyGenerate = "keymaster.key.generate"
	MetricKeyImport   = "keymaster.key.import"
	MetricKeyExport   = "keymaster.key.export"

	MetricOperationBegin  = "keymaster.operation.begin"
	MetricOperationUpdate = "keymaster.operation.update"
	MetricOperationFinish = "keymaster.operation.finish"
	MetricOperationAbort  = "keymaster.operation.abort"
	MetricOperationsLive  = "keymaster.operation.live_count"

	MetricLatencyGenerate = "keymaster.latency.key.generate"
	MetricLatencyBegin    = "keymaster.latency.operation.begin"
	MetricLatencyUpdate   = "keymaster.latency.operation.update"
	MetricLatencyFinish   = "keymaster.latency.operation.finish"

	MetricErrorTotal            = "keymaster.error.total"
	MetricErrorInvalidKeyBlob   = "keymaster.error.invalid_key_blob"
	MetricErrorInvalidOperation = "keymaster.error.invalid_operation_handle"
	MetricErrorPolicyRejected   = "keymaster.error.policy_rejected"
)

// Adapter records telemetry for pkg/keymaster's entry points.
type Adapter interface {
	RecordCounter(ctx context.Context, name string, tags map[string]string) error
	RecordCounterWithValue(ctx context.Context, name string, value int64, tags map[string]string) error
	RecordGauge(ctx context.Context, name string, value float64, tags map[string]string) error
	RecordHistogram(ctx context.Context, name string, value float64, tags map[string]string) error
	RecordTimer(ctx context.Context, name string, duration time.Duration, tags map[string]string) error

	Name() string
}

type contextKey string

const adapterContextKey contextKey = "metrics.adapter"

// WithAdapter attaches an Adapter to ctx.
func WithAdapter(ctx context.Context, adapter Adapter) context.Context {
	return context.WithValue(ctx, adapterContextKey, adapter)
}

// FromContext retrieves the Adapter attached to ctx, or nil.
func FromContext(ctx context.Context) Adapter {
	if a, ok := ctx.Value(adapterContextKey).(Adapter); ok {
		return a
	}
	return nil
}

// RecordCounter is a convenience wrapper that no-ops when ctx carries no adapter.
func RecordCounter(ctx context.Context, name string, tags map[string]string) error {
	if a := FromContext(ctx); a != nil {
		return a.RecordCounter(ctx, name, tags)
	}
	return nil
}

// RecordTimer is a convenience wrapper that no-ops when ctx carries no adapter.
func RecordTimer(ctx context.Context, name string, duration time.Duration, tags map[string]string) error {
	if a := FromContext(ctx); a != nil {
		return a.RecordTimer(ctx, name, duration, tags)
	}
	return nil
}

// RecordGauge is a convenience wrapper that no-ops when ctx carries no adapter.
func RecordGauge(ctx context.Context, name string, value float64, tags map[string]string) error {
	if a := FromContext(ctx); a != nil {
		return a.RecordGauge(ctx, name, value, tags)
	}
	return nil
}

// WithTimer measures fn's duration and records it under name, preserving
// fn's error over any error recording the timer produces.
func WithTimer(ctx context.Context, name string, tags map[string]string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if recordErr := RecordTimer(ctx, name, duration, tags); recordErr != nil && err == nil {
		err = recordErr
	}
	return err
}
