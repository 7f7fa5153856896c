package policy

import (
	"testing"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/hwbackend"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedRSASet() *authset.Set {
	s := authset.New()
	s.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmRSA)))
	s.Push(tag.KeySize, tag.UintValue(tag.KeySize, 2048))
	s.Push(tag.RSAPublicExponent, tag.Uint64Value(tag.RSAPublicExponent, 65537))
	s.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeSign)))
	s.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))
	return s
}

func TestSplit_NoBackend_EverythingSoftware(t *testing.T) {
	hw, sw := Split(resolvedRSASet(), nil)
	assert.Equal(t, 0, hw.Len())
	assert.Equal(t, 5, sw.Len())
}

func TestSplit_BackendDeclines_EverythingSoftware(t *testing.T) {
	backend := hwbackend.NewStatic("se", [2]uint32{uint32(tag.AlgorithmEC), 256})
	hw, sw := Split(resolvedRSASet(), backend)
	assert.Equal(t, 0, hw.Len())
	assert.Equal(t, 5, sw.Len())
}

func TestSplit_BackendAccepts_PrimaryParamsGoHardware(t *testing.T) {
	backend := hwbackend.NewStatic("se", [2]uint32{uint32(tag.AlgorithmRSA), 2048})
	hw, sw := Split(resolvedRSASet(), backend)

	assert.True(t, hw.Contains(tag.Algorithm))
	assert.True(t, hw.Contains(tag.KeySize))
	assert.True(t, hw.Contains(tag.RSAPublicExponent))
	assert.True(t, hw.Contains(tag.Digest))
	assert.True(t, sw.Contains(tag.Purpose))
	assert.False(t, sw.Contains(tag.Algorithm))
}

func keyWithPurpose(purposes ...tag.Purpose_) *keys.Key {
	hw := authset.New()
	sw := authset.New()
	for _, p := range purposes {
		sw.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(p)))
	}
	sw.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))
	return &keys.Key{Family: keys.FamilyRSA, HWSet: hw, SWSet: sw}
}

func TestCheckPurpose_Mismatch(t *testing.T) {
	k := keyWithPurpose(tag.PurposeSign)
	err := CheckPurpose(k, tag.PurposeVerify)
	assert.ErrorIs(t, err, ErrIncompatiblePurpose)
}

func TestCheckPurpose_Match(t *testing.T) {
	k := keyWithPurpose(tag.PurposeSign, tag.PurposeVerify)
	require.NoError(t, CheckPurpose(k, tag.PurposeSign))
	require.NoError(t, CheckPurpose(k, tag.PurposeVerify))
}

func TestCheckParameterConsistency_DigestNotMember(t *testing.T) {
	k := keyWithPurpose(tag.PurposeSign)
	begin := authset.New()
	begin.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA512)))

	err := CheckParameterConsistency(k, begin)
	assert.ErrorIs(t, err, ErrIncompatibleDigest)
}

func TestCheckParameterConsistency_DigestMember(t *testing.T) {
	k := keyWithPurpose(tag.PurposeSign)
	begin := authset.New()
	begin.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))

	assert.NoError(t, CheckParameterConsistency(k, begin))
}

func TestCheckCallerNonce_ProhibitedWhenNotAuthorized(t *testing.T) {
	k := keyWithPurpose(tag.PurposeEncrypt)
	begin := authset.New()
	begin.Push(tag.Nonce, tag.BytesValue(tag.Nonce, make([]byte, 16)))

	err := CheckCallerNonce(k, begin, 16)
	assert.ErrorIs(t, err, ErrCallerNonceProhibited)
}

func TestCheckCallerNonce_AllowedWhenAuthorized(t *testing.T) {
	k := keyWithPurpose(tag.PurposeEncrypt)
	k.SWSet.Push(tag.CallerNonce, tag.BoolValue(tag.CallerNonce, true))
	begin := authset.New()
	begin.Push(tag.Nonce, tag.BytesValue(tag.Nonce, make([]byte, 16)))

	assert.NoError(t, CheckCallerNonce(k, begin, 16))
}

func TestCheckCallerNonce_WrongLengthFails(t *testing.T) {
	k := keyWithPurpose(tag.PurposeEncrypt)
	k.SWSet.Push(tag.CallerNonce, tag.BoolValue(tag.CallerNonce, true))
	begin := authset.New()
	begin.Push(tag.Nonce, tag.BytesValue(tag.Nonce, make([]byte, 8)))

	err := CheckCallerNonce(k, begin, 16)
	assert.ErrorIs(t, err, ErrInvalidNonce)
}

func TestCheckMacLength_Bounds(t *testing.T) {
	assert.ErrorIs(t, CheckMacLength(32, 256), ErrUnsupportedMacLength)
	assert.ErrorIs(t, CheckMacLength(512, 256), ErrUnsupportedMacLength)
	assert.NoError(t, CheckMacLength(128, 256))
}

func TestDigestOutputBits(t *testing.T) {
	assert.Equal(t, 256, DigestOutputBits(tag.DigestSHA256))
	assert.Equal(t, 160, DigestOutputBits(tag.DigestSHA1))
}
