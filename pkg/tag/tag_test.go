package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag_ValueType(t *testing.T) {
	tests := []struct {
		name string
		tg   Tag
		want Type
	}{
		{"algorithm is enum", Algorithm, Enum},
		{"key size is uint", KeySize, Uint},
		{"rsa exponent is uint64", RSAPublicExponent, Uint64},
		{"nonce is bytes", Nonce, Bytes},
		{"active datetime is date", ActiveDateTime, Date},
		{"caller nonce is bool", CallerNonce, Bool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tg.ValueType())
		})
	}
}

func TestTag_Repeatable(t *testing.T) {
	assert.True(t, Purpose.Repeatable())
	assert.True(t, Digest.Repeatable())
	assert.True(t, AssociatedData.Repeatable())
	assert.False(t, Algorithm.Repeatable())
	assert.False(t, KeySize.Repeatable())
}

func TestTag_Hidden(t *testing.T) {
	assert.True(t, ApplicationID.Hidden())
	assert.True(t, ApplicationData.Hidden())
	assert.True(t, RootOfTrust.Hidden())
	assert.False(t, Algorithm.Hidden())
}

func TestTag_Class(t *testing.T) {
	assert.Equal(t, ClassCryptoParameter, Algorithm.Class())
	assert.Equal(t, ClassAuthConstraint, Purpose.Class())
	assert.Equal(t, ClassProvenance, Origin.Class())
}

func TestValue_ConstructorMismatchPanics(t *testing.T) {
	require.Panics(t, func() {
		UintValue(Algorithm, 1) // Algorithm is Enum-typed
	})
}

func TestValue_Equal(t *testing.T) {
	a := BytesValue(Nonce, []byte{1, 2, 3})
	b := BytesValue(Nonce, []byte{1, 2, 3})
	c := BytesValue(Nonce, []byte{1, 2, 4})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestValue_BignumOwnsBytes(t *testing.T) {
	src := []byte{0xDE, 0xAD}
	v := BignumValue(RSAPublicExponentBignumTagForTest(), src)
	src[0] = 0x00
	assert.Equal(t, byte(0xDE), v.Bignum[0], "Value must own a copy, not alias the caller's slice")
}

// RSAPublicExponentBignumTagForTest returns a bignum-typed synthetic tag so
// this test does not depend on any production tag being Bignum-typed.
func RSAPublicExponentBignumTagForTest() Tag {
	return makeTag(Bignum, 0xFFF)
}

func TestValue_AsUint64(t *testing.T) {
	v := UintValue(KeySize, 2048)
	got, ok := v.AsUint64()
	require.True(t, ok)
	assert.Equal(t, uint64(2048), got)

	_, ok = BoolValue(CallerNonce, true).AsUint64()
	assert.False(t, ok)
}
