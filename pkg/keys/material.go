package keys

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// MarshalMaterial serializes a Key's private material into the form
// pkg/blob persists: PKCS#8 DER for RSA/EC, raw bytes for AES/HMAC. This is
// never the wire format handed to a caller — only what pkg/blob seals.
func (k *Key) MarshalMaterial() ([]byte, error) {
	switch k.Family {
	case FamilyRSA:
		return x509.MarshalPKCS8PrivateKey(k.RSA)
	case FamilyEC:
		return x509.MarshalPKCS8PrivateKey(k.EC)
	case FamilyAES, FamilyHMAC:
		out := make([]byte, len(k.Sym))
		copy(out, k.Sym)
		return out, nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// unmarshalMaterial reconstructs a Key from its persisted material plus the
// algorithm recovered from the authorization set it was sealed alongside.
func unmarshalMaterial(family Family, material []byte) (*Key, error) {
	switch family {
	case FamilyRSA:
		priv, err := x509.ParsePKCS8PrivateKey(material)
		if err != nil {
			return nil, ErrInvalidInputLength
		}
		rsaPriv, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrImportParameterMismatch
		}
		return &Key{Family: FamilyRSA, RSA: rsaPriv}, nil

	case FamilyEC:
		priv, err := x509.ParsePKCS8PrivateKey(material)
		if err != nil {
			return nil, ErrInvalidInputLength
		}
		ecPriv, ok := priv.(*ecdsa.PrivateKey)
		if !ok {
			return nil, ErrImportParameterMismatch
		}
		return &Key{Family: FamilyEC, EC: ecPriv}, nil

	case FamilyAES, FamilyHMAC:
		raw := make([]byte, len(material))
		copy(raw, material)
		return &Key{Family: family, Sym: raw}, nil

	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// FromSealed reconstructs a Key from the (material, authorizations) pair a
// key blob unseals into — used by the service façade on every operation
// that needs the key material back (begin, export).
func FromSealed(authorizations *authset.Set, material []byte) (*Key, error) {
	algo, err := algorithmFromSet(authorizations)
	if err != nil {
		return nil, err
	}
	family, err := familyFromAlgorithm(algo)
	if err != nil {
		return nil, err
	}
	return unmarshalMaterial(family, material)
}

func familyFromAlgorithm(algo tag.Algorithm_) (Family, error) {
	switch algo {
	case tag.AlgorithmRSA:
		return FamilyRSA, nil
	case tag.AlgorithmEC:
		return FamilyEC, nil
	case tag.AlgorithmAES:
		return FamilyAES, nil
	case tag.AlgorithmHMAC:
		return FamilyHMAC, nil
	default:
		return 0, ErrUnsupportedAlgorithm
	}
}
