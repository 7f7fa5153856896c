package authset

import (
	"testing"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleSet() *Set {
	s := New()
	s.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmRSA)))
	s.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeSign)))
	s.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeVerify)))
	s.Push(tag.KeySize, tag.UintValue(tag.KeySize, 2048))
	s.Push(tag.RSAPublicExponent, tag.Uint64Value(tag.RSAPublicExponent, 65537))
	s.Push(tag.CallerNonce, tag.BoolValue(tag.CallerNonce, true))
	s.Push(tag.CreationDateTime, tag.DateValue(tag.CreationDateTime, 1_700_000_000_000))
	s.Push(tag.ApplicationID, tag.BytesValue(tag.ApplicationID, []byte("com.example.app")))
	return s
}

func TestSet_PushContainsGet(t *testing.T) {
	s := buildSampleSet()

	assert.True(t, s.Contains(tag.Algorithm))
	assert.False(t, s.Contains(tag.Digest))

	v, ok := s.Get(tag.KeySize)
	require.True(t, ok)
	assert.Equal(t, uint32(2048), v.UintVal)

	purposes := s.All(tag.Purpose)
	assert.Len(t, purposes, 2)
}

func TestSet_Equal_OrderIndependentMultiplicityRespected(t *testing.T) {
	a := New()
	a.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeSign)))
	a.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeVerify)))

	b := New()
	b.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeVerify)))
	b.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeSign)))

	assert.True(t, a.Equal(b))

	c := New()
	c.Push(tag.Purpose, tag.EnumValue(tag.Purpose, int64(tag.PurposeSign)))
	assert.False(t, a.Equal(c), "differing multiplicity must not be equal")
}

func TestSet_WithoutHidden(t *testing.T) {
	s := buildSampleSet()
	visible := s.WithoutHidden()

	assert.False(t, visible.Contains(tag.ApplicationID))
	assert.True(t, visible.Contains(tag.Algorithm))
	assert.True(t, s.Contains(tag.ApplicationID), "original set must be untouched")
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	s := buildSampleSet()
	wire := s.Marshal()

	decoded, err := Unmarshal(wire)
	require.NoError(t, err)
	assert.True(t, s.Equal(decoded))
}

func TestMarshal_EmptySet(t *testing.T) {
	s := New()
	wire := s.Marshal()
	decoded, err := Unmarshal(wire)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
}

func TestUnmarshal_CorruptedOffsetRejected(t *testing.T) {
	s := New()
	s.Push(tag.ApplicationID, tag.BytesValue(tag.ApplicationID, []byte("abc")))
	wire := s.Marshal()

	// Corrupt the indirect-byte-count field to claim there is less indirect
	// data than the entry's length/offset actually requires.
	corrupted := make([]byte, len(wire))
	copy(corrupted, wire)
	corrupted[0] = 0

	_, err := Unmarshal(corrupted)
	assert.ErrorIs(t, err, ErrCorruptedData)
}

func TestUnmarshal_TruncatedDataRejected(t *testing.T) {
	s := buildSampleSet()
	wire := s.Marshal()

	_, err := Unmarshal(wire[:len(wire)-3])
	assert.Error(t, err)
}

func TestUnmarshal_BitFlipBreaksRoundTrip(t *testing.T) {
	s := buildSampleSet()
	wire := s.Marshal()

	flipped := make([]byte, len(wire))
	copy(flipped, wire)
	flipped[len(flipped)-1] ^= 0x01

	decoded, err := Unmarshal(flipped)
	if err != nil {
		return // corruption surfaced as a decode error: acceptable outcome
	}
	assert.False(t, s.Equal(decoded), "a single flipped bit must not decode to an equal set")
}

func TestClone_IsIndependent(t *testing.T) {
	s := buildSampleSet()
	clone := s.Clone()
	clone.Push(tag.Digest, tag.EnumValue(tag.Digest, int64(tag.DigestSHA256)))

	assert.False(t, s.Contains(tag.Digest))
	assert.True(t, clone.Contains(tag.Digest))
}
