package blob

import (
	"encoding/binary"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
)

// legacyCodec decodes one obsolete blob wire format into the canonical
// in-memory (key material, authorizations, hw-owned?) triple. Every legacy
// format is recognized by a leading marker byte; detectLegacy tries each
// known format in turn, keeping upgrade logic isolated from the current codec.
type legacyCodec interface {
	decode(masterKey, blobBytes []byte) (material []byte, authorizations *authset.Set, hwOwned bool, err error)
}

const (
	legacySoftwareMarker = 'P'
	legacyHardwareMarker = 'Q'
	legacyOCBMarker      = 'O'
)

func detectLegacy(blobBytes []byte) (legacyCodec, bool) {
	if len(blobBytes) == 0 {
		return nil, false
	}
	switch blobBytes[0] {
	case legacySoftwareMarker:
		return legacyPrefixCodec{hwOwned: false}, true
	case legacyHardwareMarker:
		return legacyPrefixCodec{hwOwned: true}, true
	case legacyOCBMarker:
		return legacyOCBCodec{}, true
	default:
		return nil, false
	}
}

// legacyPrefixCodec decodes the prior-version software blob format: a
// single marker byte, PKCS#8 DER key material, and a trailing authorization
// set. A blob whose marker byte was rewritten from 'P' to 'Q' is treated as
// belonging to the hardware backend instead of the software backend: the
// marker alone, not the blob's contents, decides which enforcement set the
// authorizations upgrade into.
type legacyPrefixCodec struct {
	hwOwned bool
}

func (c legacyPrefixCodec) decode(_ []byte, blobBytes []byte) ([]byte, *authset.Set, bool, error) {
	if len(blobBytes) < 1+4 {
		return nil, nil, false, authset.ErrCorruptedData
	}
	pos := 1
	derLen := binary.LittleEndian.Uint32(blobBytes[pos : pos+4])
	pos += 4
	if uint64(pos)+uint64(derLen) > uint64(len(blobBytes)) {
		return nil, nil, false, authset.ErrCorruptedData
	}
	der := blobBytes[pos : pos+int(derLen)]
	pos += int(derLen)

	authorizations, err := authset.Unmarshal(blobBytes[pos:])
	if err != nil {
		return nil, nil, false, err
	}

	material := make([]byte, len(der))
	copy(material, der)
	return material, authorizations, c.hwOwned, nil
}

// legacyOCBCodec decodes the OCB-encrypted legacy software blob format from
// the same generation as the prefix formats. OCB itself was dropped from
// this module's active cipher suite (only ECB/CBC/CTR/GCM remain), so the
// legacy decoder below implements the same construction the legacy encoder
// used: an AES-CTR keystream plus an HMAC-SHA256 authenticator keyed with
// the same legacy key, kept only to let old blobs upgrade cleanly.
func (legacyOCBCodec) decode(masterKey []byte, blobBytes []byte) ([]byte, *authset.Set, bool, error) {
	return decodeLegacyOCB(masterKey, blobBytes)
}

type legacyOCBCodec struct{}

// encodeLegacyPrefix produces a blob in the obsolete 'P'/'Q'-marker format,
// used only by tests that exercise upgrade-on-read.
func encodeLegacyPrefix(marker byte, der []byte, authorizations *authset.Set) []byte {
	wire := authorizations.Marshal()
	out := make([]byte, 0, 1+4+len(der)+len(wire))
	out = append(out, marker)
	out = appendU32(out, uint32(len(der)))
	out = append(out, der...)
	out = append(out, wire...)
	return out
}
