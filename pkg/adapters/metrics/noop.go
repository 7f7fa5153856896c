package metrics

import (
	"context"
	"time"
)

// NoOp is an Adapter that records nothing. It's the default when a caller
// constructs pkg/keymaster without wiring internal/metrics.
type NoOp struct{}

func NewNoOp() *NoOp { return &NoOp{} }

func (NoOp) RecordCounter(context.Context, string, map[string]string) error { return nil }
func (NoOp) RecordCounterWithValue(context.Context, string, int64, map[string]string) error {
	return nil
}
func (NoOp) RecordGauge(context.Context, string, float64, map[string]string) error     { return nil }
func (NoOp) RecordHistogram(context.Context, string, float64, map[string]string) error { return nil }
func (NoOp) RecordTimer(context.Context, string, time.Duration, map[string]string) error {
	return nil
}
func (NoOp) Name() string { return "noop" }

var _ Adapter = NoOp{}
