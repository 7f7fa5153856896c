package blob

import (
	"crypto/rand"
	"testing"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMasterKey() []byte {
	return DeriveMasterKey([]byte("test-root-of-trust-fixture"))
}

func sampleSets() (*authset.Set, *authset.Set) {
	hw := authset.New()
	hw.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmRSA)))
	hw.Push(tag.KeySize, tag.UintValue(tag.KeySize, 2048))

	sw := authset.New()
	sw.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeSign)))
	sw.Push(tag.Origin, tag.EnumValue(tag.Origin, int64(tag.OriginGenerated)))
	return hw, sw
}

func TestSealUnseal_RoundTrip(t *testing.T) {
	masterKey := testMasterKey()
	hw, sw := sampleSets()

	in := &SealInput{
		KeyMaterial:     []byte("super-secret-key-material"),
		HWSet:           hw,
		SWSet:           sw,
		ApplicationID:   []byte("com.example.app"),
		ApplicationData: []byte("app-data"),
	}

	wire, err := Seal(masterKey, in, rand.Reader)
	require.NoError(t, err)

	opened, err := Unseal(masterKey, wire, &UnsealInput{
		ApplicationID:   []byte("com.example.app"),
		ApplicationData: []byte("app-data"),
	})
	require.NoError(t, err)

	assert.Equal(t, in.KeyMaterial, opened.KeyMaterial)
	assert.True(t, hw.Equal(opened.HWSet))
	assert.True(t, sw.Equal(opened.SWSet))
	assert.False(t, opened.HWSet.Contains(tag.ApplicationID), "hidden tags must never reappear in returned sets")
}

func TestUnseal_WrongApplicationIDFails(t *testing.T) {
	masterKey := testMasterKey()
	hw, sw := sampleSets()

	wire, err := Seal(masterKey, &SealInput{
		KeyMaterial:   []byte("secret"),
		HWSet:         hw,
		SWSet:         sw,
		ApplicationID: []byte("com.example.app"),
	}, rand.Reader)
	require.NoError(t, err)

	_, err = Unseal(masterKey, wire, &UnsealInput{ApplicationID: []byte("com.other.app")})
	assert.ErrorIs(t, err, ErrInvalidKeyBlob)
}

func TestUnseal_BitFlipFails(t *testing.T) {
	masterKey := testMasterKey()
	hw, sw := sampleSets()

	wire, err := Seal(masterKey, &SealInput{KeyMaterial: []byte("secret"), HWSet: hw, SWSet: sw}, rand.Reader)
	require.NoError(t, err)

	for _, idx := range []int{0, len(wire) / 2, len(wire) - 1} {
		flipped := make([]byte, len(wire))
		copy(flipped, wire)
		flipped[idx] ^= 0x01

		_, err := Unseal(masterKey, flipped, &UnsealInput{})
		assert.Error(t, err, "flipping byte %d must invalidate the blob", idx)
	}
}

func TestUnseal_LegacySoftwarePrefixUpgrades(t *testing.T) {
	masterKey := testMasterKey()
	legacyAuths := authset.New()
	legacyAuths.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmRSA)))

	legacyBlob := encodeLegacyPrefix(legacySoftwareMarker, []byte("legacy-der-bytes"), legacyAuths)

	opened, err := Unseal(masterKey, legacyBlob, &UnsealInput{})
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy-der-bytes"), opened.KeyMaterial)
	assert.True(t, legacyAuths.Equal(opened.SWSet))
	assert.Equal(t, 0, opened.HWSet.Len())
}

func TestUnseal_LegacyPrefixRewrittenToQBecomesHardwareOwned(t *testing.T) {
	masterKey := testMasterKey()
	legacyAuths := authset.New()
	legacyAuths.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmRSA)))

	pBlob := encodeLegacyPrefix(legacySoftwareMarker, []byte("legacy-der-bytes"), legacyAuths)
	qBlob := append([]byte{}, pBlob...)
	qBlob[0] = legacyHardwareMarker

	opened, err := Unseal(masterKey, qBlob, &UnsealInput{})
	require.NoError(t, err)
	assert.True(t, legacyAuths.Equal(opened.HWSet))
	assert.Equal(t, 0, opened.SWSet.Len())
}

func TestUnseal_LegacyOCBUpgrades(t *testing.T) {
	masterKey := testMasterKey()
	legacyAuths := authset.New()
	legacyAuths.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeEncrypt)))

	wire, err := encodeLegacyOCB(masterKey, []byte("ocb-material"), legacyAuths)
	require.NoError(t, err)

	opened, err := Unseal(masterKey, wire, &UnsealInput{})
	require.NoError(t, err)
	assert.Equal(t, []byte("ocb-material"), opened.KeyMaterial)
	assert.True(t, legacyAuths.Equal(opened.SWSet))
}

func TestUnseal_LegacyOCBTamperedFails(t *testing.T) {
	masterKey := testMasterKey()
	legacyAuths := authset.New()
	wire, err := encodeLegacyOCB(masterKey, []byte("ocb-material"), legacyAuths)
	require.NoError(t, err)

	wire[len(wire)-1] ^= 0xFF
	_, err = Unseal(masterKey, wire, &UnsealInput{})
	assert.Error(t, err)
}

func TestGetKeyCharacteristics_Idempotent(t *testing.T) {
	masterKey := testMasterKey()
	hw, sw := sampleSets()
	wire, err := Seal(masterKey, &SealInput{KeyMaterial: []byte("k"), HWSet: hw, SWSet: sw}, rand.Reader)
	require.NoError(t, err)

	first, err := Unseal(masterKey, wire, &UnsealInput{})
	require.NoError(t, err)
	second, err := Unseal(masterKey, wire, &UnsealInput{})
	require.NoError(t, err)

	assert.True(t, first.HWSet.Equal(second.HWSet))
	assert.True(t, first.SWSet.Equal(second.SWSet))
}
