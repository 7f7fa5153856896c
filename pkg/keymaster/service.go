package keymaster

import (
	"context"

	adaptermetrics "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/adapters/metrics"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/blob"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/hwbackend"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/operation"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/policy"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// Service is a single long-lived object a host process constructs once and
// calls concurrently from multiple threads.
type Service struct {
	masterKey []byte
	backend   hwbackend.Backend
	table     *operation.Table
	entropy   *entropyMixer
}

// New constructs a Service. rootOfTrust is mixed via HKDF into the
// process-local master key (pkg/blob.DeriveMasterKey); it never leaves the
// process and is not itself the master key. backend may be nil, in which
// case every key is entirely software-enforced. tableCapacity of 0 uses
// operation.DefaultCapacity.
func New(rootOfTrust []byte, backend hwbackend.Backend, tableCapacity int) *Service {
	if backend == nil {
		backend = hwbackend.None{}
	}
	return &Service{
		masterKey: blob.DeriveMasterKey(rootOfTrust),
		backend:   backend,
		table:     operation.NewTable(tableCapacity),
		entropy:   newEntropyMixer(),
	}
}

// AddRNGEntropy implements add_rng_entropy: safe under concurrency, mixes
// caller bytes into the process-wide randomness source.
func (s *Service) AddRNGEntropy(data []byte) error {
	s.entropy.Mix(data)
	return nil
}

func extractHidden(resolved *authset.Set) (appID, appData, rootOfTrust []byte) {
	if v, ok := resolved.Get(tag.ApplicationID); ok {
		appID = v.Bytes
	}
	if v, ok := resolved.Get(tag.ApplicationData); ok {
		appData = v.Bytes
	}
	if v, ok := resolved.Get(tag.RootOfTrust); ok {
		rootOfTrust = v.Bytes
	}
	return
}

// GenerateKey implements generate_key. Application-id, application-data and
// root-of-trust, if present as hidden tags within input, are extracted and
// bound into the blob's authenticator but stripped from the returned
// characteristic sets.
func (s *Service) GenerateKey(ctx context.Context, input *authset.Set) (blobBytes []byte, hw, sw *authset.Set, err error) {
	err = adaptermetrics.WithTimer(ctx, adaptermetrics.MetricLatencyGenerate, nil, func() error {
		k, resolved, genErr := keys.Generate(input, s.entropy)
		if genErr != nil {
			return genErr
		}
		blobBytes, hw, sw, genErr = s.sealNewKey(k, resolved)
		return genErr
	})
	if err != nil {
		recordError(ctx, err)
		return nil, nil, nil, err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricKeyGenerate, nil)
	return blobBytes, hw, sw, nil
}

// ImportKey implements import_key.
func (s *Service) ImportKey(ctx context.Context, input *authset.Set, format keys.Format, material []byte) (blobBytes []byte, hw, sw *authset.Set, err error) {
	k, resolved, err := keys.Import(input, format, material)
	if err != nil {
		recordError(ctx, err)
		return nil, nil, nil, err
	}
	blobBytes, hw, sw, err = s.sealNewKey(k, resolved)
	if err != nil {
		recordError(ctx, err)
		return nil, nil, nil, err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricKeyImport, nil)
	return blobBytes, hw, sw, nil
}

func (s *Service) sealNewKey(k *keys.Key, resolved *authset.Set) ([]byte, *authset.Set, *authset.Set, error) {
	appID, appData, rootOfTrust := extractHidden(resolved)

	hw, sw := policy.Split(resolved, s.backend)
	hw, sw = hw.WithoutHidden(), sw.WithoutHidden()

	material, err := k.MarshalMaterial()
	if err != nil {
		return nil, nil, nil, err
	}

	blobBytes, err := blob.Seal(s.masterKey, &blob.SealInput{
		KeyMaterial:     material,
		HWSet:           hw,
		SWSet:           sw,
		ApplicationID:   appID,
		ApplicationData: appData,
		RootOfTrust:     rootOfTrust,
	}, s.entropy)
	if err != nil {
		return nil, nil, nil, err
	}
	return blobBytes, hw, sw, nil
}

// GetKeyCharacteristics implements get_key_characteristics: any mismatch in
// the hidden provenance values yields invalid-key-blob, surfaced directly
// from pkg/blob.Unseal's authentication failure.
func (s *Service) GetKeyCharacteristics(ctx context.Context, blobBytes, appID, appData, rootOfTrust []byte) (hw, sw *authset.Set, err error) {
	opened, err := blob.Unseal(s.masterKey, blobBytes, &blob.UnsealInput{
		ApplicationID:   appID,
		ApplicationData: appData,
		RootOfTrust:     rootOfTrust,
	})
	if err != nil {
		recordError(ctx, err)
		return nil, nil, err
	}
	return opened.HWSet, opened.SWSet, nil
}

// ExportKey implements export_key.
func (s *Service) ExportKey(ctx context.Context, format keys.Format, blobBytes, appID, appData, rootOfTrust []byte) ([]byte, error) {
	k, err := s.openKey(blobBytes, appID, appData, rootOfTrust)
	if err != nil {
		recordError(ctx, err)
		return nil, err
	}
	material, err := keys.Export(k, format)
	if err != nil {
		recordError(ctx, err)
		return nil, err
	}
	_ = adaptermetrics.RecordCounter(ctx, adaptermetrics.MetricKeyExport, nil)
	return material, nil
}
