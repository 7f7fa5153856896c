package keys

import (
	"time"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// Format identifies the on-wire encoding of key material passed to Import
// or requested from Export.
type Format int

const (
	FormatPKCS8 Format = iota
	FormatRaw
	FormatX509
)

// Import reconstructs a Key from caller-supplied material in a declared
// format, re-deriving the material's intrinsic parameters and cross-checking
// them against the caller's authorization set. Origin is always forced to
// imported regardless of what the caller supplied.
func Import(input *authset.Set, format Format, material []byte) (*Key, *authset.Set, error) {
	algo, err := algorithmFromSet(input)
	if err != nil {
		return nil, nil, err
	}
	family, err := familyFromAlgorithm(algo)
	if err != nil {
		return nil, nil, err
	}

	switch family {
	case FamilyRSA, FamilyEC:
		if format != FormatPKCS8 {
			return nil, nil, ErrUnsupportedKeyFormat
		}
	case FamilyAES, FamilyHMAC:
		if format != FormatRaw {
			return nil, nil, ErrUnsupportedKeyFormat
		}
	}

	k, err := unmarshalMaterial(family, material)
	if err != nil {
		return nil, nil, err
	}

	if err := crossCheckParameters(k, input); err != nil {
		return nil, nil, err
	}

	resolved := authset.New()
	for _, e := range input.Clone().Entries() {
		if e.Tag == tag.Origin {
			continue
		}
		resolved.Push(e.Tag, e.Value)
	}
	resolved.Push(tag.Origin, tag.EnumValue(tag.Origin, int64(tag.OriginImported)))
	if !resolved.Contains(tag.CreationDateTime) {
		resolved.Push(tag.CreationDateTime, tag.DateValue(tag.CreationDateTime, uint64(time.Now().UnixMilli())))
	}

	return k, resolved, nil
}

// crossCheckParameters re-derives a key's intrinsic parameters from its
// material and compares them against redundantly declared authorization-set
// values. A declared value with no corresponding re-derived parameter (e.g.
// no key-size tag at all) is not checked — only conflicts are rejected.
func crossCheckParameters(k *Key, declared *authset.Set) error {
	switch k.Family {
	case FamilyRSA:
		if v, ok := declared.Get(tag.KeySize); ok {
			if int(v.UintVal) != k.RSA.N.BitLen() {
				return ErrImportParameterMismatch
			}
		}
		if v, ok := declared.Get(tag.RSAPublicExponent); ok {
			if int64(v.Uint64) != int64(k.RSA.E) {
				return ErrImportParameterMismatch
			}
		}
	case FamilyEC:
		if v, ok := declared.Get(tag.KeySize); ok {
			if int(v.UintVal) != k.EC.Curve.Params().BitSize {
				return ErrImportParameterMismatch
			}
		}
	case FamilyAES, FamilyHMAC:
		if v, ok := declared.Get(tag.KeySize); ok {
			if int(v.UintVal) != len(k.Sym)*8 {
				return ErrImportParameterMismatch
			}
		}
	}
	return nil
}
