package keymaster

import (
	"context"

	adaptermetrics "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/metrics"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/blob"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/operation"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/policy"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/primitives"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

func paramsFromSet(p *authset.Set) primitives.Params {
	var params primitives.Params
	if v, ok := p.Get(tag.Digest); ok {
		params.Digest = tag.Digest_(v.Enum)
	}
	if v, ok := p.Get(tag.Padding); ok {
		params.Padding = tag.Padding_(v.Enum)
	}
	if v, ok := p.Get(tag.BlockMode); ok {
		params.Mode = tag.BlockMode_(v.Enum)
	}
	if v, ok := p.Get(tag.MACLength); ok {
		params.MacBits = int(v.UintVal)
	}
	if v, ok := p.Get(tag.Nonce); ok {
		params.Nonce = v.Bytes
	}
	return params
}

func requiredNonceSize(mode tag.BlockMode_) int {
	switch mode {
	case tag.BlockModeCBC, tag.BlockModeCTR:
		return 16
	case tag.BlockModeGCM:
		return 12
	default:
		return 0
	}
}

func naturalMacBits(k *keys.Key, params primitives.Params) int {
	if k.Family == keys.FamilyHMAC {
		return policy.DigestOutputBits(params.Digest)
	}
	if params.Mode == tag.BlockModeGCM {
		return 128
	}
	return 0
}

func (s *Service) openKey(blobBytes, appID, appData, rootOfTrust []byte) (*keys.Key, error) {
	opened, err := blob.Unseal(s.masterKey, blobBytes, &blob.UnsealInput{
		ApplicationID:   appID,
		ApplicationData: appData,
		RootOfTrust:     rootOfTrust,
	})
	if err != nil {
		return nil, err
	}
	merged := opened.HWSet.Clone()
	merged.Merge(opened.SWSet)
	k, err := keys.FromSealed(merged, opened.KeyMaterial)
	if err != nil {
		return nil, err
	}
	k.HWSet = opened.HWSet
	k.SWSet = opened.SWSet
	return k, nil
}

// Begin implements begin: runs the four begin-time policy checks, selects
// the primitive adapter, and registers it under a fresh handle in the
// operation table.
func (s *Service) Begin(ctx context.Context, purpose tag.Purpose_, blobBytes []byte, beginParams *authset.Set, appID, appData, rootOfTrust []byte) (handle uint64, outParams *authset.Set, err error) {
	err = adaptermetrics.WithTimer(ctx, adaptermetrics.MetricLatencyBegin, nil, func() error {
		k, beginErr := s.openKey(blobBytes, appID, appData, rootOfTrust)
		if beginErr != nil {
			return beginErr
		}

		if beginErr = policy.CheckPurpose(k, purpose); beginErr != nil {
			return beginErr
		}
		if beginErr = policy.CheckParameterConsistency(k, beginParams); beginErr != nil {
			return beginErr
		}

		params := paramsFromSet(beginParams)

		if beginErr = policy.CheckCallerNonce(k, beginParams, requiredNonceSize(params.Mode)); beginErr != nil {
			return beginErr
		}
		if v, ok := beginParams.Get(tag.MACLength); ok {
			if beginErr = policy.CheckMacLength(int(v.UintVal), naturalMacBits(k, params)); beginErr != nil {
				return beginErr
			}
		}
		if params.Mode == tag.BlockModeGCM && params.MacBits == 0 {
			params.MacBits = 128
		}

		algoVal, _ := k.All().Get(tag.Algorithm)
		algorithm := tag.Algorithm_(algoVal.Enum)

		adapter, nonceOut, beginErr := primitives.New(k, purpose, params, s.entropy)
		if beginErr != nil {
			return beginErr
		}

		op, beginErr := s.table.Begin(purpose, algorithm, adapter)
		if beginErr != nil {
			return beginErr
		}

		outParams = authset.New()
		if len(nonceOut) > 0 {
			outParams.Push(tag.Nonce, tag.BytesValue(tag.Nonce, nonceOut))
		}
		handle = op.Handle
		return nil
	})
	if err != nil {
		recordError(ctx, err)
		return 0, nil, err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricOperationBegin, nil)
	recordLiveCount(ctx, s.table)
	return handle, outParams, nil
}

// Update implements update: forwards any associated-data entries to the
// adapter before feeding it input, and on decrypt, installs a
// caller-supplied AEAD tag before the adapter consumes input.
func (s *Service) Update(ctx context.Context, handle uint64, updateParams *authset.Set, input []byte) (consumed int, outParams *authset.Set, output []byte, err error) {
	outParams = authset.New()
	err = adaptermetrics.WithTimer(ctx, adaptermetrics.MetricLatencyUpdate, nil, func() error {
		return s.table.Update(handle, func(op *operation.Operation) error {
			if updateParams != nil {
				for _, aad := range updateParams.All(tag.AssociatedData) {
					if e := op.Adapter.UpdateAAD(aad.Bytes); e != nil {
						return e
					}
				}
				if v, ok := updateParams.Get(tag.AEADTag); ok {
					if setter, ok := op.Adapter.(interface{ SetTag([]byte) error }); ok {
						if e := setter.SetTag(v.Bytes); e != nil {
							return e
						}
					}
				}
			}
			c, out, e := op.Adapter.Update(input)
			consumed = c
			output = out
			return e
		})
	})
	if err != nil {
		recordError(ctx, err)
		return 0, nil, nil, err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricOperationUpdate, nil)
	return consumed, outParams, output, nil
}

// Finish implements finish: surfaces an encrypt adapter's produced AEAD tag
// back as an out-parameter. A decrypt's expected tag must already have been
// installed via Update's update-param aead-tag.
func (s *Service) Finish(ctx context.Context, handle uint64, finishParams *authset.Set, signature []byte) (outParams *authset.Set, output []byte, err error) {
	var aeadTag []byte
	err = adaptermetrics.WithTimer(ctx, adaptermetrics.MetricLatencyFinish, nil, func() error {
		return s.table.Finish(handle, func(op *operation.Operation) error {
			if finishParams != nil {
				for _, aad := range finishParams.All(tag.AssociatedData) {
					if e := op.Adapter.UpdateAAD(aad.Bytes); e != nil {
						return e
					}
				}
			}
			out, tg, e := op.Adapter.Finish(signature)
			output = out
			aeadTag = tg
			return e
		})
	})
	if err != nil {
		recordError(ctx, err)
		return nil, nil, err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricOperationFinish, nil)
	recordLiveCount(ctx, s.table)

	outParams = authset.New()
	if len(aeadTag) > 0 {
		outParams.Push(tag.AEADTag, tag.BytesValue(tag.AEADTag, aeadTag))
	}
	return outParams, output, nil
}

// Abort implements abort: safe to call concurrently with an in-flight
// update or finish on the same handle.
func (s *Service) Abort(ctx context.Context, handle uint64) error {
	err := s.table.Abort(handle)
	if err != nil {
		recordError(ctx, err)
		return err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricOperationAbort, nil)
	recordLiveCount(ctx, s.table)
	return nil
}
