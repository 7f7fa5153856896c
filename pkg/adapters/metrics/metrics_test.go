package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAdapter struct {
	counters map[string]int64
	timers   map[string]time.Duration
	gauges   map[string]float64
}

func newRecordingAdapter() *recordingAdapter {
	return &recordingAdapter{counters: map[string]int64{}, timers: map[string]time.Duration{}, gauges: map[string]float64{}}
}

func (r *recordingAdapter) RecordCounter(ctx context.Context, name string, tags map[string]string) error {
	r.counters[name]++
	return nil
}
func (r *recordingAdapter) RecordCounterWithValue(ctx context.Context, name string, value int64, tags map[string]string) error {
	r.counters[name] += value
	return nil
}
func (r *recordingAdapter) RecordGauge(ctx context.Context, name string, value float64, tags map[string]string) error {
	r.gauges[name] = value
	return nil
}
func (r *recordingAdapter) RecordHistogram(ctx context.Context, name string, value float64, tags map[string]string) error {
	return nil
}
func (r *recordingAdapter) RecordTimer(ctx context.Context, name string, d time.Duration, tags map[string]string) error {
	r.timers[name] = d
	return nil
}
func (r *recordingAdapter) Name() string { return "recording" }

func TestRecordCounter_NoopWithoutAdapterInContext(t *testing.T) {
	assert.NoError(t, RecordCounter(context.Background(), MetricKeyGenerate, nil))
}

func TestRecordCounter_DelegatesToContextAdapter(t *testing.T) {
	r := newRecordingAdapter()
	ctx := WithAdapter(context.Background(), r)

	require.NoError(t, RecordCounter(ctx, MetricKeyGenerate, nil))
	assert.Equal(t, int64(1), r.counters[MetricKeyGenerate])
}

func TestWithTimer_RecordsDurationAndPreservesError(t *testing.T) {
	r := newRecordingAdapter()
	ctx := WithAdapter(context.Background(), r)

	called := false
	err := WithTimer(ctx, MetricLatencyGenerate, nil, func() error {
		called = true
		return assertErr("boom")
	})

	assert.True(t, called)
	assert.EqualError(t, err, "boom")
	assert.Contains(t, r.timers, MetricLatencyGenerate)
}

func TestRecordGauge_DelegatesToContextAdapter(t *testing.T) {
	r := newRecordingAdapter()
	ctx := WithAdapter(context.Background(), r)

	require.NoError(t, RecordGauge(ctx, MetricOperationsLive, 3, nil))
	assert.Equal(t, 3.0, r.gauges[MetricOperationsLive])
}

func TestRecordGauge_NoopWithoutAdapterInContext(t *testing.T) {
	assert.NoError(t, RecordGauge(context.Background(), MetricOperationsLive, 1, nil))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
