package keymaster

import (
	"context"
	"errors"

	adaptermetrics "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/metrics"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/blob"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/operation"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/policy"
)

// recordError records the blanket error-total counter plus a per-kind
// counter for err, classifying it against the sentinels the policy, blob
// and operation packages return. Callers should still propagate err
// unchanged; this only emits telemetry.
func recordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricErrorTotal, nil)
	switch {
	case errors.Is(err, blob.ErrInvalidKeyBlob):
		_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricErrorInvalidKeyBlob, nil)
	case errors.Is(err, operation.ErrInvalidOperationHandle), errors.Is(err, operation.ErrTooManyOperations):
		_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricErrorInvalidOperation, nil)
	case errors.Is(err, policy.ErrIncompatiblePurpose),
		errors.Is(err, policy.ErrIncompatibleDigest),
		errors.Is(err, policy.ErrUnsupportedPaddingMode),
		errors.Is(err, policy.ErrIncompatibleBlockMode),
		errors.Is(err, policy.ErrCallerNonceProhibited),
		errors.Is(err, policy.ErrInvalidNonce),
		errors.Is(err, policy.ErrUnsupportedMacLength):
		_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricErrorPolicyRejected, nil)
	}
}

// recordLiveCount publishes the operation table's current size as a gauge,
// called after each successful Begin, Finish or Abort.
func recordLiveCount(ctx context.Context, t *operation.Table) {
	_ = adaptermetrics.RecordGauge(ctx, adaptermetrics.MetricOperationsLive, float64(t.Len()), nil)
}
