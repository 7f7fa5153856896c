package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

const aesBlockSize = 16

// aesBlockAdapter implements AES ECB and CBC encrypt/decrypt. Input is
// buffered across update calls and processed as whole blocks at finish,
// where padding is applied or stripped.
type aesBlockAdapter struct {
	block     cipher.Block
	mode      tag.BlockMode_
	padding   tag.Padding_
	iv        []byte // CBC only
	encrypt   bool
	buf       []byte
}

// NewAESBlock constructs an ECB or CBC adapter. iv must be 16 bytes for CBC
// (caller-supplied or freshly generated by the caller before construction);
// it is ignored for ECB.
func NewAESBlock(key []byte, mode tag.BlockMode_, padding tag.Padding_, iv []byte, encrypt bool) (Adapter, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrUnknown
	}
	if mode == tag.BlockModeCBC && len(iv) != aesBlockSize {
		return nil, ErrInvalidInputLength
	}
	return &aesBlockAdapter{block: block, mode: mode, padding: padding, iv: iv, encrypt: encrypt}, nil
}

func (a *aesBlockAdapter) UpdateAAD([]byte) error { return nil }

func (a *aesBlockAdapter) Update(input []byte) (int, []byte, error) {
	a.buf = append(a.buf, input...)
	return len(input), nil, nil
}

func (a *aesBlockAdapter) Finish([]byte) ([]byte, []byte, error) {
	defer a.Abort()

	plain := a.buf
	if a.encrypt {
		switch a.padding {
		case tag.PaddingPKCS7:
			plain = pkcs7Pad(plain, aesBlockSize)
		case tag.PaddingNone:
			if len(plain)%aesBlockSize != 0 {
				return nil, nil, ErrInvalidInputLength
			}
		default:
			return nil, nil, ErrUnknown
		}
		out := make([]byte, len(plain))
		a.crypt(plain, out, true)
		return out, nil, nil
	}

	if len(plain)%aesBlockSize != 0 {
		return nil, nil, ErrInvalidInputLength
	}
	out := make([]byte, len(plain))
	a.crypt(plain, out, false)

	switch a.padding {
	case tag.PaddingPKCS7:
		unpadded, err := pkcs7Unpad(out, aesBlockSize)
		if err != nil {
			return nil, nil, ErrUnknown
		}
		return unpadded, nil, nil
	case tag.PaddingNone:
		return out, nil, nil
	default:
		return nil, nil, ErrUnknown
	}
}

func (a *aesBlockAdapter) crypt(in, out []byte, encrypt bool) {
	switch a.mode {
	case tag.BlockModeECB:
		for off := 0; off < len(in); off += aesBlockSize {
			if encrypt {
				a.block.Encrypt(out[off:off+aesBlockSize], in[off:off+aesBlockSize])
			} else {
				a.block.Decrypt(out[off:off+aesBlockSize], in[off:off+aesBlockSize])
			}
		}
	case tag.BlockModeCBC:
		if encrypt {
			cipher.NewCBCEncrypter(a.block, a.iv).CryptBlocks(out, in)
		} else {
			cipher.NewCBCDecrypter(a.block, a.iv).CryptBlocks(out, in)
		}
	}
}

func (a *aesBlockAdapter) Abort() { a.buf = nil }

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := make([]byte, padLen)
	for i := range padding {
		padding[i] = byte(padLen)
	}
	return append(data, padding...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidInputLength
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrInvalidInputLength
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidInputLength
		}
	}
	return data[:len(data)-padLen], nil
}

// aesCTRAdapter implements AES-CTR without padding; it takes no padding
// parameter, so a padding requested at begin is not checked here. The stream
// is processed as it arrives since CTR has no block-alignment requirement.
type aesCTRAdapter struct {
	stream cipher.Stream
}

func NewAESCTR(key, nonce []byte) (Adapter, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrUnknown
	}
	if len(nonce) != aesBlockSize {
		return nil, ErrInvalidInputLength
	}
	return &aesCTRAdapter{stream: cipher.NewCTR(block, nonce)}, nil
}

func (a *aesCTRAdapter) UpdateAAD([]byte) error { return nil }

func (a *aesCTRAdapter) Update(input []byte) (int, []byte, error) {
	out := make([]byte, len(input))
	a.stream.XORKeyStream(out, input)
	return len(input), out, nil
}

func (a *aesCTRAdapter) Finish([]byte) ([]byte, []byte, error) {
	a.Abort()
	return nil, nil, nil
}

func (a *aesCTRAdapter) Abort() { a.stream = nil }

// aesGCMAdapter implements AES-GCM. Plaintext/ciphertext and associated
// data accumulate across update calls; the authenticator is produced (on
// encrypt) or checked (on decrypt) only at finish, since GCM cannot verify
// a partial message.
type aesGCMAdapter struct {
	gcm     cipher.AEAD
	nonce   []byte
	encrypt bool
	macBits int
	aad     []byte
	buf     []byte
	tag     []byte // caller-supplied tag to verify, decrypt only
}

func NewAESGCM(key, nonce []byte, macBits int, encrypt bool) (Adapter, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrUnknown
	}
	gcm, err := cipher.NewGCMWithTagSize(block, macBits/8)
	if err != nil {
		return nil, ErrUnsupportedMacLen
	}
	if len(nonce) == 0 {
		return nil, ErrInvalidInputLength
	}
	return &aesGCMAdapter{gcm: gcm, nonce: nonce, encrypt: encrypt, macBits: macBits}, nil
}

func (a *aesGCMAdapter) UpdateAAD(aad []byte) error {
	a.aad = append(a.aad, aad...)
	return nil
}

// SetTag supplies the caller's aead-tag for a decrypt operation; it must be
// called before Finish.
func (a *aesGCMAdapter) SetTag(tag []byte) error {
	if len(tag) < 12 || len(tag) > 16 {
		return ErrUnsupportedMacLen
	}
	a.tag = tag
	return nil
}

func (a *aesGCMAdapter) Update(input []byte) (int, []byte, error) {
	a.buf = append(a.buf, input...)
	return len(input), nil, nil
}

func (a *aesGCMAdapter) Finish([]byte) ([]byte, []byte, error) {
	defer a.Abort()

	if a.encrypt {
		sealed := a.gcm.Seal(nil, a.nonce, a.buf, a.aad)
		tagSize := a.gcm.Overhead()
		ciphertext := sealed[:len(sealed)-tagSize]
		authTag := sealed[len(sealed)-tagSize:]
		return ciphertext, authTag, nil
	}

	if a.tag == nil {
		return nil, nil, ErrUnsupportedMacLen
	}
	combined := append(append([]byte{}, a.buf...), a.tag...)
	plain, err := a.gcm.Open(nil, a.nonce, combined, a.aad)
	if err != nil {
		return nil, nil, ErrVerificationFailed
	}
	return plain, nil, nil
}

func (a *aesGCMAdapter) Abort() {
	a.buf = nil
	a.aad = nil
}

func generateNonce(size int, rng io.Reader) ([]byte, error) {
	n := make([]byte, size)
	if _, err := io.ReadFull(rng, n); err != nil {
		return nil, ErrUnknown
	}
	return n, nil
}
