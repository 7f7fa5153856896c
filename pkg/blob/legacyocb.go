package blob

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
)

const legacyOCBNonceSize = 16
const legacyOCBTagSize = 32

func legacyOCBKey(masterKey []byte) []byte {
	return DeriveMasterKey(append(append([]byte{}, masterKey...), []byte("legacy-ocb-v1")...))
}

// encodeLegacyOCB produces a blob in the obsolete OCB-generation wire format,
// used only by tests that exercise upgrade-on-read.
func encodeLegacyOCB(masterKey []byte, material []byte, authorizations *authset.Set) ([]byte, error) {
	key := legacyOCBKey(masterKey)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, legacyOCBNonceSize)
	stream := cipher.NewCTR(block, nonce)
	ciphertext := make([]byte, len(material))
	stream.XORKeyStream(ciphertext, material)

	authorizationsWire := authorizations.Marshal()

	mac := hmac.New(sha256.New, key)
	mac.Write(nonce)
	mac.Write(ciphertext)
	mac.Write(authorizationsWire)
	tag := mac.Sum(nil)

	out := make([]byte, 0, 1+legacyOCBNonceSize+legacyOCBTagSize+4+len(ciphertext)+len(authorizationsWire))
	out = append(out, legacyOCBMarker)
	out = append(out, nonce...)
	out = append(out, tag...)
	out = appendU32(out, uint32(len(ciphertext)))
	out = append(out, ciphertext...)
	out = append(out, authorizationsWire...)
	return out, nil
}

func decodeLegacyOCB(masterKey []byte, blobBytes []byte) ([]byte, *authset.Set, bool, error) {
	min := 1 + legacyOCBNonceSize + legacyOCBTagSize + 4
	if len(blobBytes) < min {
		return nil, nil, false, authset.ErrCorruptedData
	}
	pos := 1
	nonce := blobBytes[pos : pos+legacyOCBNonceSize]
	pos += legacyOCBNonceSize
	tag := blobBytes[pos : pos+legacyOCBTagSize]
	pos += legacyOCBTagSize
	ctLen := binary.LittleEndian.Uint32(blobBytes[pos:])
	pos += 4
	if uint64(pos)+uint64(ctLen) > uint64(len(blobBytes)) {
		return nil, nil, false, authset.ErrCorruptedData
	}
	ciphertext := blobBytes[pos : pos+int(ctLen)]
	pos += int(ctLen)
	authorizationsWire := blobBytes[pos:]

	key := legacyOCBKey(masterKey)

	mac := hmac.New(sha256.New, key)
	mac.Write(nonce)
	mac.Write(ciphertext)
	mac.Write(authorizationsWire)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, tag) {
		return nil, nil, false, ErrInvalidKeyBlob
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, false, err
	}
	stream := cipher.NewCTR(block, nonce)
	material := make([]byte, len(ciphertext))
	stream.XORKeyStream(material, ciphertext)

	authorizations, err := authset.Unmarshal(authorizationsWire)
	if err != nil {
		return nil, nil, false, err
	}

	return material, authorizations, false, nil
}
