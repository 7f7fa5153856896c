package policy

import (
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// membershipTags are the crypto-param tags treated as "member of the key's
// permitted set" rather than "equal to the key's single declared value".
var membershipTags = map[tag.Tag]bool{
	tag.Digest:    true,
	tag.Padding:   true,
	tag.BlockMode: true,
}

// CheckPurpose checks that the key's authorizations contain the requested
// purpose.
func CheckPurpose(key *keys.Key, purpose tag.Purpose_) error {
	all := key.All()
	want := tag.EnumValue(tag.Purpose, int64(purpose))
	if !all.ContainsValue(tag.Purpose, want) {
		return ErrIncompatiblePurpose
	}
	return nil
}

// CheckParameterConsistency checks that every digest, padding and
// block-mode value present in beginParams is a member of the key's
// authorized values for that tag. Other crypto-param tags in beginParams
// are not compared against the key's declared values here.
func CheckParameterConsistency(key *keys.Key, beginParams *authset.Set) error {
	all := key.All()

	for _, tg := range []tag.Tag{tag.Digest, tag.Padding, tag.BlockMode} {
		reqVals := beginParams.All(tg)
		if len(reqVals) == 0 {
			continue
		}
		permitted := all.All(tg)
		for _, rv := range reqVals {
			if !valueMember(permitted, rv) {
				switch tg {
				case tag.Digest:
					return ErrIncompatibleDigest
				case tag.Padding:
					return ErrUnsupportedPaddingMode
				case tag.BlockMode:
					return ErrIncompatibleBlockMode
				}
			}
		}
	}
	return nil
}

func valueMember(haystack []tag.Value, v tag.Value) bool {
	for _, h := range haystack {
		if h.Equal(v) {
			return true
		}
	}
	return false
}

// CheckCallerNonce validates a caller-supplied nonce, if any, against the
// key's CallerNonce authorization and the active block mode's required
// nonce length (blockModeNonceSize is 0 if the mode takes no nonce).
func CheckCallerNonce(key *keys.Key, beginParams *authset.Set, blockModeNonceSize int) error {
	nonceVal, hasNonce := beginParams.Get(tag.Nonce)
	if !hasNonce {
		return nil
	}
	if !key.All().Contains(tag.CallerNonce) {
		return ErrCallerNonceProhibited
	}
	if blockModeNonceSize > 0 && len(nonceVal.Bytes) != blockModeNonceSize {
		return ErrInvalidNonce
	}
	return nil
}

// CheckMacLength checks that the requested MAC length is at least 64 bits
// and no more than the primitive's natural output length.
func CheckMacLength(requestedBits, naturalBits int) error {
	if requestedBits < 64 || requestedBits > naturalBits {
		return ErrUnsupportedMacLength
	}
	return nil
}

// DigestOutputBits returns the natural MAC/digest output size in bits for
// HMAC's underlying digest, used to bound CheckMacLength for HMAC keys.
func DigestOutputBits(d tag.Digest_) int {
	switch d {
	case tag.DigestMD5:
		return 128
	case tag.DigestSHA1:
		return 160
	case tag.DigestSHA224:
		return 224
	case tag.DigestSHA256:
		return 256
	case tag.DigestSHA384:
		return 384
	case tag.DigestSHA512:
		return 512
	default:
		return 0
	}
}
