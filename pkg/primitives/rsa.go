package primitives

import (
	"crypto"
	"crypto/md5"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"
	"math/big"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

func digestHash(d tag.Digest_) (crypto.Hash, error) {
	switch d {
	case tag.DigestNone:
		return 0, nil
	case tag.DigestMD5:
		return crypto.MD5, nil
	case tag.DigestSHA1:
		return crypto.SHA1, nil
	case tag.DigestSHA224:
		return crypto.SHA224, nil
	case tag.DigestSHA256:
		return crypto.SHA256, nil
	case tag.DigestSHA384:
		return crypto.SHA384, nil
	case tag.DigestSHA512:
		return crypto.SHA512, nil
	default:
		return 0, ErrUnknown
	}
}

func newHasher(d tag.Digest_) (hash.Hash, error) {
	switch d {
	case tag.DigestMD5:
		return md5.New(), nil
	case tag.DigestSHA1:
		return sha1.New(), nil
	case tag.DigestSHA224:
		return sha256.New224(), nil
	case tag.DigestSHA256:
		return sha256.New(), nil
	case tag.DigestSHA384:
		return sha512.New384(), nil
	case tag.DigestSHA512:
		return sha512.New(), nil
	default:
		return nil, ErrUnknown
	}
}

// rsaSignVerify implements RSA sign/verify for NONE, PKCS1-1.5-sign and PSS
// padding. Input is buffered across update calls and processed at finish as
// a single whole-message signature operation.
type rsaSignVerify struct {
	priv    *rsa.PrivateKey
	pub     *rsa.PublicKey
	padding tag.Padding_
	digest  tag.Digest_
	verify  bool
	buf     []byte
	rng     io.Reader
}

// NewRSASignVerify constructs a sign or verify adapter, checking PSS's
// minimum key-size requirement at construction time. rng is only passed to
// crypto/rsa on the signing side (PSS draws its salt from it); verify never
// reads from it.
func NewRSASignVerify(priv *rsa.PrivateKey, padding tag.Padding_, digest tag.Digest_, verify bool, rng io.Reader) (Adapter, error) {
	a := &rsaSignVerify{priv: priv, pub: &priv.PublicKey, padding: padding, digest: digest, verify: verify, rng: rng}
	if padding == tag.PaddingPSS {
		h, err := digestHash(digest)
		if err != nil || h == 0 {
			return nil, ErrIncompatibleDigest
		}
		if priv.N.BitLen() < h.Size()*8+10*8 {
			return nil, ErrIncompatibleDigest
		}
	}
	return a, nil
}

func (a *rsaSignVerify) UpdateAAD([]byte) error { return nil }

func (a *rsaSignVerify) Update(input []byte) (int, []byte, error) {
	a.buf = append(a.buf, input...)
	return len(input), nil, nil
}

func (a *rsaSignVerify) Finish(signature []byte) ([]byte, []byte, error) {
	defer a.Abort()

	keyBytes := (a.priv.N.BitLen() + 7) / 8

	switch a.padding {
	case tag.PaddingNone:
		if len(a.buf) != keyBytes {
			// message too short/long for the modulus size: the source's
			// catch-all unknown-error, not a distinct parameter error.
			return nil, nil, ErrUnknown
		}
		m := new(big.Int).SetBytes(a.buf)
		if m.Cmp(a.priv.N) >= 0 {
			return nil, nil, ErrUnknown
		}
		if a.verify {
			c := new(big.Int).SetBytes(signature)
			recovered := new(big.Int).Exp(c, big.NewInt(int64(a.pub.E)), a.pub.N)
			if recovered.Cmp(m) != 0 {
				return nil, nil, ErrVerificationFailed
			}
			return nil, nil, nil
		}
		s := new(big.Int).Exp(m, a.priv.D, a.priv.N)
		return padLeft(s.Bytes(), keyBytes), nil, nil

	case tag.PaddingPKCS1_1_5_Sign:
		hashed, h, err := a.hashed()
		if err != nil {
			return nil, nil, err
		}
		if a.verify {
			if err := rsa.VerifyPKCS1v15(a.pub, h, hashed, signature); err != nil {
				return nil, nil, ErrVerificationFailed
			}
			return nil, nil, nil
		}
		sig, err := rsa.SignPKCS1v15(a.rng, a.priv, h, hashed)
		if err != nil {
			return nil, nil, ErrUnknown
		}
		return sig, nil, nil

	case tag.PaddingPSS:
		hashed, h, err := a.hashed()
		if err != nil {
			return nil, nil, err
		}
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto}
		if a.verify {
			if err := rsa.VerifyPSS(a.pub, h, hashed, signature, opts); err != nil {
				return nil, nil, ErrVerificationFailed
			}
			return nil, nil, nil
		}
		sig, err := rsa.SignPSS(a.rng, a.priv, h, hashed, opts)
		if err != nil {
			return nil, nil, ErrUnknown
		}
		return sig, nil, nil

	default:
		return nil, nil, ErrUnknown
	}
}

func (a *rsaSignVerify) hashed() ([]byte, crypto.Hash, error) {
	h, err := digestHash(a.digest)
	if err != nil {
		return nil, 0, err
	}
	if h == 0 {
		// digest NONE under PKCS1-1.5-sign: message ≤ key-bytes-11, passed
		// through unhashed with hash=0 per crypto/rsa's convention.
		keyBytes := (a.priv.N.BitLen() + 7) / 8
		if len(a.buf) > keyBytes-11 {
			return nil, 0, ErrInvalidInputLength
		}
		return a.buf, 0, nil
	}
	hasher, err := newHasher(a.digest)
	if err != nil {
		return nil, 0, err
	}
	hasher.Write(a.buf)
	return hasher.Sum(nil), h, nil
}

func (a *rsaSignVerify) Abort() { a.buf = nil }

// rsaEncryptDecrypt implements RSA encrypt/decrypt for NONE, OAEP and
// PKCS1-1.5-encrypt padding.
type rsaEncryptDecrypt struct {
	priv    *rsa.PrivateKey
	pub     *rsa.PublicKey
	padding tag.Padding_
	digest  tag.Digest_
	decrypt bool
	buf     []byte
	rng     io.Reader
}

// NewRSAEncryptDecrypt constructs an encrypt or decrypt adapter. rng backs
// both OAEP/PKCS1-1.5 encryption's randomized padding and decryption's
// blinding.
func NewRSAEncryptDecrypt(priv *rsa.PrivateKey, padding tag.Padding_, digest tag.Digest_, decrypt bool, rng io.Reader) (Adapter, error) {
	return &rsaEncryptDecrypt{priv: priv, pub: &priv.PublicKey, padding: padding, digest: digest, decrypt: decrypt, rng: rng}, nil
}

func (a *rsaEncryptDecrypt) UpdateAAD([]byte) error { return nil }

func (a *rsaEncryptDecrypt) Update(input []byte) (int, []byte, error) {
	a.buf = append(a.buf, input...)
	return len(input), nil, nil
}

func (a *rsaEncryptDecrypt) Finish([]byte) ([]byte, []byte, error) {
	defer a.Abort()

	keyBytes := (a.priv.N.BitLen() + 7) / 8

	switch a.padding {
	case tag.PaddingNone:
		if len(a.buf) != keyBytes {
			return nil, nil, ErrInvalidInputLength
		}
		m := new(big.Int).SetBytes(a.buf)
		if m.Cmp(a.priv.N) >= 0 {
			return nil, nil, ErrInvalidInputLength
		}
		if a.decrypt {
			out := new(big.Int).Exp(m, a.priv.D, a.priv.N)
			return padLeft(out.Bytes(), keyBytes), nil, nil
		}
		out := new(big.Int).Exp(m, big.NewInt(int64(a.pub.E)), a.pub.N)
		return padLeft(out.Bytes(), keyBytes), nil, nil

	case tag.PaddingOAEP:
		hasher, err := newHasher(a.digest)
		if err != nil {
			return nil, nil, err
		}
		if a.decrypt {
			out, err := rsa.DecryptOAEP(hasher, a.rng, a.priv, a.buf, nil)
			if err != nil {
				return nil, nil, ErrUnknown
			}
			return out, nil, nil
		}
		out, err := rsa.EncryptOAEP(hasher, a.rng, a.pub, a.buf, nil)
		if err != nil {
			return nil, nil, ErrInvalidInputLength
		}
		return out, nil, nil

	case tag.PaddingPKCS1_1_5_Encrypt:
		if a.decrypt {
			out, err := rsa.DecryptPKCS1v15(a.rng, a.priv, a.buf)
			if err != nil {
				return nil, nil, ErrUnknown
			}
			return out, nil, nil
		}
		out, err := rsa.EncryptPKCS1v15(a.rng, a.pub, a.buf)
		if err != nil {
			return nil, nil, ErrInvalidInputLength
		}
		return out, nil, nil

	default:
		return nil, nil, ErrUnknown
	}
}

func (a *rsaEncryptDecrypt) Abort() { a.buf = nil }

func padLeft(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
