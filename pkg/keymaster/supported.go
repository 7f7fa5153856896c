package keymaster

import (
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// GetSupportedAlgorithms returns the full algorithm surface.
func (s *Service) GetSupportedAlgorithms() []tag.Algorithm_ {
	return []tag.Algorithm_{tag.AlgorithmRSA, tag.AlgorithmEC, tag.AlgorithmAES, tag.AlgorithmHMAC}
}

func isEncryptOrDecrypt(p tag.Purpose_) bool { return p == tag.PurposeEncrypt || p == tag.PurposeDecrypt }
func isSignOrVerify(p tag.Purpose_) bool     { return p == tag.PurposeSign || p == tag.PurposeVerify }

// GetSupportedBlockModes returns AES's supported block modes for
// encrypt/decrypt; every other algorithm has none.
func (s *Service) GetSupportedBlockModes(algorithm tag.Algorithm_, purpose tag.Purpose_) ([]tag.BlockMode_, error) {
	if algorithm != tag.AlgorithmAES {
		return nil, nil
	}
	if !isEncryptOrDecrypt(purpose) {
		return nil, ErrUnsupportedPurpose
	}
	return []tag.BlockMode_{tag.BlockModeECB, tag.BlockModeCBC, tag.BlockModeCTR, tag.BlockModeGCM}, nil
}

// GetSupportedPaddingModes returns RSA's supported paddings for the given
// purpose; every other algorithm has none.
func (s *Service) GetSupportedPaddingModes(algorithm tag.Algorithm_, purpose tag.Purpose_) ([]tag.Padding_, error) {
	if algorithm != tag.AlgorithmRSA {
		return nil, nil
	}
	switch {
	case isSignOrVerify(purpose):
		return []tag.Padding_{tag.PaddingNone, tag.PaddingPKCS1_1_5_Sign, tag.PaddingPSS}, nil
	case isEncryptOrDecrypt(purpose):
		return []tag.Padding_{tag.PaddingNone, tag.PaddingOAEP, tag.PaddingPKCS1_1_5_Encrypt}, nil
	default:
		return nil, ErrUnsupportedPurpose
	}
}

// GetSupportedDigests returns the digest surface for RSA/EC (all seven,
// including NONE) or HMAC (five, no NONE and no MD5); AES has none.
func (s *Service) GetSupportedDigests(algorithm tag.Algorithm_, purpose tag.Purpose_) ([]tag.Digest_, error) {
	switch algorithm {
	case tag.AlgorithmRSA, tag.AlgorithmEC:
		if !isSignOrVerify(purpose) && !isEncryptOrDecrypt(purpose) {
			return nil, ErrUnsupportedPurpose
		}
		return []tag.Digest_{
			tag.DigestNone, tag.DigestMD5, tag.DigestSHA1, tag.DigestSHA224,
			tag.DigestSHA256, tag.DigestSHA384, tag.DigestSHA512,
		}, nil
	case tag.AlgorithmHMAC:
		if !isSignOrVerify(purpose) {
			return nil, ErrUnsupportedPurpose
		}
		return []tag.Digest_{
			tag.DigestSHA1, tag.DigestSHA224, tag.DigestSHA256, tag.DigestSHA384, tag.DigestSHA512,
		}, nil
	default:
		return nil, nil
	}
}

// GetSupportedImportFormats returns PKCS#8 for RSA/EC or raw for AES/HMAC.
func (s *Service) GetSupportedImportFormats(algorithm tag.Algorithm_) []keys.Format {
	switch algorithm {
	case tag.AlgorithmRSA, tag.AlgorithmEC:
		return []keys.Format{keys.FormatPKCS8}
	case tag.AlgorithmAES, tag.AlgorithmHMAC:
		return []keys.Format{keys.FormatRaw}
	default:
		return nil
	}
}

// GetSupportedExportFormats returns X.509 for RSA/EC; symmetric algorithms
// export nothing.
func (s *Service) GetSupportedExportFormats(algorithm tag.Algorithm_) []keys.Format {
	switch algorithm {
	case tag.AlgorithmRSA, tag.AlgorithmEC:
		return []keys.Format{keys.FormatX509}
	default:
		return nil
	}
}
