package primitives

import (
	"io"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// New constructs the adapter for a (key, purpose, params) triple, generating
// a fresh nonce/IV when the mode requires one and the caller didn't supply
// one via params.Nonce. It returns the adapter plus the nonce actually used,
// which the caller writes into begin's out-params. rng backs every draw of
// randomness the selected adapter needs, whether for nonce generation here
// or for randomized signing/encryption inside the adapter itself.
func New(k *keys.Key, purpose tag.Purpose_, params Params, rng io.Reader) (Adapter, []byte, error) {
	switch k.Family {
	case keys.FamilyRSA:
		switch purpose {
		case tag.PurposeSign, tag.PurposeVerify:
			a, err := NewRSASignVerify(k.RSA, params.Padding, params.Digest, purpose == tag.PurposeVerify, rng)
			return a, nil, err
		case tag.PurposeEncrypt, tag.PurposeDecrypt:
			a, err := NewRSAEncryptDecrypt(k.RSA, params.Padding, params.Digest, purpose == tag.PurposeDecrypt, rng)
			return a, nil, err
		}

	case keys.FamilyEC:
		a, err := NewECSignVerify(k.EC, params.Digest, purpose == tag.PurposeVerify, rng)
		return a, nil, err

	case keys.FamilyAES:
		encrypt := purpose == tag.PurposeEncrypt
		switch params.Mode {
		case tag.BlockModeECB:
			a, err := NewAESBlock(k.Sym, params.Mode, params.Padding, nil, encrypt)
			return a, nil, err

		case tag.BlockModeCBC:
			nonce := params.Nonce
			if len(nonce) == 0 {
				n, err := generateNonce(aesBlockSize, rng)
				if err != nil {
					return nil, nil, err
				}
				nonce = n
			}
			a, err := NewAESBlock(k.Sym, params.Mode, params.Padding, nonce, encrypt)
			return a, nonce, err

		case tag.BlockModeCTR:
			nonce := params.Nonce
			if len(nonce) == 0 {
				n, err := generateNonce(aesBlockSize, rng)
				if err != nil {
					return nil, nil, err
				}
				nonce = n
			}
			a, err := NewAESCTR(k.Sym, nonce)
			return a, nonce, err

		case tag.BlockModeGCM:
			nonce := params.Nonce
			if len(nonce) == 0 {
				n, err := generateNonce(12, rng)
				if err != nil {
					return nil, nil, err
				}
				nonce = n
			}
			a, err := NewAESGCM(k.Sym, nonce, params.MacBits, encrypt)
			return a, nonce, err
		}

	case keys.FamilyHMAC:
		a, err := NewHMAC(k.Sym, params.Digest, params.MacBits, purpose == tag.PurposeVerify)
		return a, nil, err
	}

	return nil, nil, ErrUnknown
}
