package keymaster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adaptermetrics "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/metrics"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

type recordingAdapter struct {
	counters map[string]int64
	timers   map[string]time.Duration
	gauges   map[string]float64
}

func newRecordingAdapter() *recordingAdapter {
	return &recordingAdapter{counters: map[string]int64{}, timers: map[string]time.Duration{}, gauges: map[string]float64{}}
}

func (r *recordingAdapter) RecordCounter(_ context.Context, name string, _ map[string]string) error {
	r.counters[name]++
	return nil
}
func (r *recordingAdapter) RecordCounterWithValue(_ context.Context, name string, value int64, _ map[string]string) error {
	r.counters[name] += value
	return nil
}
func (r *recordingAdapter) RecordGauge(_ context.Context, name string, value float64, _ map[string]string) error {
	r.gauges[name] = value
	return nil
}
func (r *recordingAdapter) RecordHistogram(_ context.Context, _ string, _ float64, _ map[string]string) error {
	return nil
}
func (r *recordingAdapter) RecordTimer(_ context.Context, name string, d time.Duration, _ map[string]string) error {
	r.timers[name] = d
	return nil
}
func (r *recordingAdapter) Name() string { return "recording" }

func TestGenerateKey_RecordsCounterAndLatency(t *testing.T) {
	svc := New([]byte("test-root-of-trust"), nil, 0)
	r := newRecordingAdapter()
	ctx := adaptermetrics.WithAdapter(context.Background(), r)

	_, _, _, err := svc.GenerateKey(ctx, hmacGenParams(256))
	require.NoError(t, err)

	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricKeyGenerate])
	assert.Contains(t, r.timers, adaptermetrics.MetricLatencyGenerate)
}

func TestBeginUpdateFinish_RecordCountersLatencyAndLiveGauge(t *testing.T) {
	svc := New([]byte("test-root-of-trust"), nil, 0)
	r := newRecordingAdapter()
	ctx := adaptermetrics.WithAdapter(context.Background(), r)

	blobBytes, _, _, err := svc.GenerateKey(ctx, hmacGenParams(256))
	require.NoError(t, err)

	beginParams := authset.New()
	beginParams.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))
	beginParams.Push(tag.MACLength, tag.UintValue(tag.MACLength, 256))

	handle, _, err := svc.Begin(ctx, tag.PurposeSign, blobBytes, beginParams, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricOperationBegin])
	assert.Contains(t, r.timers, adaptermetrics.MetricLatencyBegin)
	assert.Equal(t, 1.0, r.gauges[adaptermetrics.MetricOperationsLive])

	_, _, _, err = svc.Update(ctx, handle, nil, []byte("hello, keymaster"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricOperationUpdate])
	assert.Contains(t, r.timers, adaptermetrics.MetricLatencyUpdate)

	_, _, err = svc.Finish(ctx, handle, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricOperationFinish])
	assert.Contains(t, r.timers, adaptermetrics.MetricLatencyFinish)
	assert.Equal(t, 0.0, r.gauges[adaptermetrics.MetricOperationsLive])
}

func TestAbort_RecordsCounterAndLiveGauge(t *testing.T) {
	svc := New([]byte("test-root-of-trust"), nil, 0)
	r := newRecordingAdapter()
	ctx := adaptermetrics.WithAdapter(context.Background(), r)

	blobBytes, _, _, err := svc.GenerateKey(ctx, hmacGenParams(256))
	require.NoError(t, err)

	beginParams := authset.New()
	beginParams.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))
	beginParams.Push(tag.MACLength, tag.UintValue(tag.MACLength, 256))

	handle, _, err := svc.Begin(ctx, tag.PurposeSign, blobBytes, beginParams, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Abort(ctx, handle))
	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricOperationAbort])
	assert.Equal(t, 0.0, r.gauges[adaptermetrics.MetricOperationsLive])
}

func TestBegin_WrongPurpose_RecordsPolicyRejectedError(t *testing.T) {
	svc := New([]byte("test-root-of-trust"), nil, 0)
	r := newRecordingAdapter()
	ctx := adaptermetrics.WithAdapter(context.Background(), r)

	blobBytes, _, _, err := svc.GenerateKey(ctx, hmacGenParams(256))
	require.NoError(t, err)

	beginParams := authset.New()
	beginParams.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))
	beginParams.Push(tag.MACLength, tag.UintValue(tag.MACLength, 256))

	_, _, err = svc.Begin(ctx, tag.PurposeEncrypt, blobBytes, beginParams, nil, nil, nil)
	require.Error(t, err)

	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricErrorTotal])
	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricErrorPolicyRejected])
}

func TestGetKeyCharacteristics_WrongApplicationID_RecordsInvalidKeyBlobError(t *testing.T) {
	svc := New([]byte("test-root-of-trust"), nil, 0)
	r := newRecordingAdapter()
	ctx := adaptermetrics.WithAdapter(context.Background(), r)

	blobBytes, _, _, err := svc.GenerateKey(ctx, hmacGenParams(256))
	require.NoError(t, err)

	_, _, err = svc.GetKeyCharacteristics(ctx, blobBytes, []byte("wrong-app-id"), nil, nil)
	require.Error(t, err)

	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricErrorInvalidKeyBlob])
}

func TestAbort_InvalidHandle_RecordsInvalidOperationError(t *testing.T) {
	svc := New([]byte("test-root-of-trust"), nil, 0)
	r := newRecordingAdapter()
	ctx := adaptermetrics.WithAdapter(context.Background(), r)

	err := svc.Abort(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, int64(1), r.counters[adaptermetrics.MetricErrorInvalidOperation])
}
