package keys

import "crypto/x509"

// Export returns a key's public material in the requested format: only
// X.509 SubjectPublicKeyInfo DER for asymmetric keys, and symmetric keys
// never export at all.
func Export(k *Key, format Format) ([]byte, error) {
	switch k.Family {
	case FamilyRSA:
		if format != FormatX509 {
			return nil, ErrUnsupportedKeyFormat
		}
		return x509.MarshalPKIXPublicKey(&k.RSA.PublicKey)
	case FamilyEC:
		if format != FormatX509 {
			return nil, ErrUnsupportedKeyFormat
		}
		return x509.MarshalPKIXPublicKey(&k.EC.PublicKey)
	case FamilyAES, FamilyHMAC:
		return nil, ErrUnsupportedKeyFormat
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
