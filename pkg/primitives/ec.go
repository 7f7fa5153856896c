package primitives

import (
	"crypto/ecdsa"
	"hash"
	"io"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// ecSignVerify implements raw ECDSA sign/verify. Digest NONE is permitted:
// the message is truncated/padded to the curve's order length.
type ecSignVerify struct {
	priv   *ecdsa.PrivateKey
	pub    *ecdsa.PublicKey
	digest tag.Digest_
	verify bool
	hasher hash.Hash
	buf    []byte
	rng    io.Reader
}

func NewECSignVerify(priv *ecdsa.PrivateKey, digest tag.Digest_, verify bool, rng io.Reader) (Adapter, error) {
	a := &ecSignVerify{priv: priv, pub: &priv.PublicKey, digest: digest, verify: verify, rng: rng}
	if digest != tag.DigestNone {
		h, err := newHasher(digest)
		if err != nil {
			return nil, err
		}
		a.hasher = h
	}
	return a, nil
}

func (a *ecSignVerify) UpdateAAD([]byte) error { return nil }

func (a *ecSignVerify) Update(input []byte) (int, []byte, error) {
	if a.hasher != nil {
		a.hasher.Write(input)
	} else {
		a.buf = append(a.buf, input...)
	}
	return len(input), nil, nil
}

func (a *ecSignVerify) digestBytes() []byte {
	if a.hasher != nil {
		return a.hasher.Sum(nil)
	}
	orderBytes := (a.priv.Curve.Params().BitSize + 7) / 8
	if len(a.buf) >= orderBytes {
		return a.buf[:orderBytes]
	}
	out := make([]byte, orderBytes)
	copy(out[orderBytes-len(a.buf):], a.buf)
	return out
}

func (a *ecSignVerify) Finish(signature []byte) ([]byte, []byte, error) {
	defer a.Abort()
	digest := a.digestBytes()

	if a.verify {
		if !ecdsa.VerifyASN1(a.pub, digest, signature) {
			return nil, nil, ErrVerificationFailed
		}
		return nil, nil, nil
	}

	sig, err := ecdsa.SignASN1(a.rng, a.priv, digest)
	if err != nil {
		return nil, nil, ErrUnknown
	}
	return sig, nil, nil
}

func (a *ecSignVerify) Abort() {
	a.buf = nil
	a.hasher = nil
}
