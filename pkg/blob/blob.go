// Package blob implements the key-blob codec: it seals an authorization
// set pair plus raw key material into the opaque, self-describing,
// integrity-protected byte string that is the only persistent
// representation of a key.
package blob

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"io"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// ErrInvalidKeyBlob is returned whenever a blob fails authentication or its
// framing cannot be parsed.
var ErrInvalidKeyBlob = errors.New("blob: invalid key blob")

var magic = [4]byte{'K', 'M', 'B', '1'}

const currentVersion = 1
const nonceSize = 12
const gcmTagSize = 16

// SealInput carries everything needed to seal a key.
type SealInput struct {
	KeyMaterial []byte
	HWSet       *authset.Set // hardware-enforced authorizations, hidden tags excluded
	SWSet       *authset.Set // software-enforced authorizations, hidden tags excluded

	// Hidden provenance values the caller supplied at generate/import time.
	// They bind the blob's authenticator but are never persisted in HWSet
	// or SWSet and never returned to a caller.
	ApplicationID   []byte
	ApplicationData []byte
	RootOfTrust     []byte
}

// UnsealInput carries the caller-supplied hidden provenance values required
// to unseal a key blob.
type UnsealInput struct {
	ApplicationID   []byte
	ApplicationData []byte
	RootOfTrust     []byte
}

// Opened is what Unseal returns on success.
type Opened struct {
	KeyMaterial []byte
	HWSet       *authset.Set
	SWSet       *authset.Set
}

func hiddenSet(appID, appData, rootOfTrust []byte) *authset.Set {
	s := authset.New()
	if len(appID) > 0 {
		s.Push(tag.ApplicationID, tag.BytesValue(tag.ApplicationID, appID))
	}
	if len(appData) > 0 {
		s.Push(tag.ApplicationData, tag.BytesValue(tag.ApplicationData, appData))
	}
	if len(rootOfTrust) > 0 {
		s.Push(tag.RootOfTrust, tag.BytesValue(tag.RootOfTrust, rootOfTrust))
	}
	return s
}

func associatedData(hw, sw, hidden *authset.Set) []byte {
	ad := make([]byte, 0)
	ad = append(ad, hw.Marshal()...)
	ad = append(ad, sw.Marshal()...)
	ad = append(ad, hidden.Marshal()...)
	return ad
}

// Seal produces the opaque wire form of a key blob. rng supplies the
// blob's nonce, letting a caller-mixed entropy source perturb every sealed
// blob rather than crypto/rand.Reader unconditionally.
func Seal(masterKey []byte, in *SealInput, rng io.Reader) ([]byte, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return nil, err
	}

	hw := in.HWSet
	if hw == nil {
		hw = authset.New()
	}
	sw := in.SWSet
	if sw == nil {
		sw = authset.New()
	}
	hidden := hiddenSet(in.ApplicationID, in.ApplicationData, in.RootOfTrust)
	aad := associatedData(hw, sw, hidden)

	sealed := gcm.Seal(nil, nonce, in.KeyMaterial, aad)
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	authTag := sealed[len(sealed)-gcmTagSize:]

	hwWire := hw.Marshal()
	swWire := sw.Marshal()

	out := make([]byte, 0, 4+1+nonceSize+gcmTagSize+4+len(ciphertext)+len(hwWire)+len(swWire))
	out = append(out, magic[:]...)
	out = append(out, currentVersion)
	out = append(out, nonce...)
	out = append(out, authTag...)
	out = appendU32(out, uint32(len(ciphertext)))
	out = append(out, ciphertext...)
	out = append(out, hwWire...)
	out = append(out, swWire...)

	return out, nil
}

// Unseal recovers the key material and authorization sets from blob, using
// the caller-resupplied hidden provenance values. Any bit-flip, or any
// mismatch between the hidden values supplied here and those supplied at
// seal time, causes GCM authentication to fail and ErrInvalidKeyBlob to be
// returned. Legacy formats are transparently upgraded before this function
// returns.
func Unseal(masterKey []byte, blobBytes []byte, in *UnsealInput) (*Opened, error) {
	if legacy, ok := detectLegacy(blobBytes); ok {
		material, authorizations, hwOwned, err := legacy.decode(masterKey, blobBytes)
		if err != nil {
			return nil, ErrInvalidKeyBlob
		}
		if hwOwned {
			return &Opened{KeyMaterial: material, HWSet: authorizations, SWSet: authset.New()}, nil
		}
		return &Opened{KeyMaterial: material, HWSet: authset.New(), SWSet: authorizations}, nil
	}

	if len(blobBytes) < 4+1+nonceSize+gcmTagSize+4 {
		return nil, ErrInvalidKeyBlob
	}
	if [4]byte(blobBytes[:4]) != magic {
		return nil, ErrInvalidKeyBlob
	}
	pos := 4
	version := blobBytes[pos]
	pos++
	if version != currentVersion {
		return nil, ErrInvalidKeyBlob
	}
	nonce := blobBytes[pos : pos+nonceSize]
	pos += nonceSize
	authTag := blobBytes[pos : pos+gcmTagSize]
	pos += gcmTagSize
	ctLen := binary.LittleEndian.Uint32(blobBytes[pos:])
	pos += 4
	if uint64(pos)+uint64(ctLen) > uint64(len(blobBytes)) {
		return nil, ErrInvalidKeyBlob
	}
	ciphertext := blobBytes[pos : pos+int(ctLen)]
	pos += int(ctLen)

	rest := blobBytes[pos:]
	hw, hwLen, err := unmarshalPrefix(rest)
	if err != nil {
		return nil, ErrInvalidKeyBlob
	}
	sw, _, err := unmarshalPrefix(rest[hwLen:])
	if err != nil {
		return nil, ErrInvalidKeyBlob
	}

	hidden := hiddenSet(in.ApplicationID, in.ApplicationData, in.RootOfTrust)
	aad := associatedData(hw, sw, hidden)

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, ErrInvalidKeyBlob
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, ErrInvalidKeyBlob
	}

	sealedForm := append(append([]byte{}, ciphertext...), authTag...)
	plaintext, err := gcm.Open(nil, nonce, sealedForm, aad)
	if err != nil {
		return nil, ErrInvalidKeyBlob
	}

	return &Opened{KeyMaterial: plaintext, HWSet: hw, SWSet: sw}, nil
}

// unmarshalPrefix decodes a single authset.Set occupying the front of data
// and reports how many bytes it consumed, so the caller can decode the next
// set immediately afterward without a length prefix between the two (the
// wire format places hw-auth-set directly before sw-auth-set).
func unmarshalPrefix(data []byte) (*authset.Set, int, error) {
	if len(data) < 12 {
		return nil, 0, authset.ErrCorruptedData
	}
	indirectLen := binary.LittleEndian.Uint32(data[0:4])
	pos := 4 + int(indirectLen)
	if pos+8 > len(data) {
		return nil, 0, authset.ErrCorruptedData
	}
	count := binary.LittleEndian.Uint32(data[pos : pos+4])
	entryBytes := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
	_ = count
	total := pos + 8 + int(entryBytes)
	if total > len(data) {
		return nil, 0, authset.ErrCorruptedData
	}
	s, err := authset.Unmarshal(data[:total])
	if err != nil {
		return nil, 0, err
	}
	return s, total, nil
}

func appendU32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}
