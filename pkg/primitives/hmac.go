package primitives

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"hash"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

func hasherFactory(d tag.Digest_) (func() hash.Hash, error) {
	switch d {
	case tag.DigestMD5:
		return md5.New, nil
	case tag.DigestSHA1:
		return sha1.New, nil
	case tag.DigestSHA224:
		return sha256.New224, nil
	case tag.DigestSHA256:
		return sha256.New, nil
	case tag.DigestSHA384:
		return sha512.New384, nil
	case tag.DigestSHA512:
		return sha512.New, nil
	default:
		return nil, ErrUnknown
	}
}

// hmacAdapter implements HMAC sign/verify. The MAC length is taken from the
// begin-time parameter and may truncate the full MAC.
type hmacAdapter struct {
	mac     hash.Hash
	macBits int
	verify  bool
}

func NewHMAC(key []byte, digest tag.Digest_, macBits int, verify bool) (Adapter, error) {
	factory, err := hasherFactory(digest)
	if err != nil {
		return nil, err
	}
	return &hmacAdapter{mac: hmac.New(factory, key), macBits: macBits, verify: verify}, nil
}

func (a *hmacAdapter) UpdateAAD([]byte) error { return nil }

func (a *hmacAdapter) Update(input []byte) (int, []byte, error) {
	a.mac.Write(input)
	return len(input), nil, nil
}

func (a *hmacAdapter) Finish(signature []byte) ([]byte, []byte, error) {
	defer a.Abort()

	full := a.mac.Sum(nil)
	macBytes := a.macBits / 8
	if macBytes > len(full) {
		return nil, nil, ErrUnsupportedMacLen
	}
	truncated := full[:macBytes]

	if a.verify {
		if subtle.ConstantTimeCompare(truncated, signature) != 1 {
			return nil, nil, ErrVerificationFailed
		}
		return nil, nil, nil
	}
	return truncated, nil, nil
}

func (a *hmacAdapter) Abort() { a.mac = nil }
