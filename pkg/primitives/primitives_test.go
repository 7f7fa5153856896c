package primitives

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/keys"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rsaGenParams(bits int, exponent uint64) *authset.Set {
	s := authset.New()
	s.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmRSA)))
	s.Push(tag.KeySize, tag.UintValue(tag.KeySize, uint32(bits)))
	s.Push(tag.RSAPublicExponent, tag.Uint64Value(tag.RSAPublicExponent, exponent))
	return s
}

func TestRSA_NONE_SignVerify_SmallKeyOddExponent(t *testing.T) {
	// RSA 256-bit, exponent 3, sign/verify with digest=NONE, padding=NONE.
	k, _, err := keys.Generate(rsaGenParams(256, 3), rand.Reader)
	require.NoError(t, err)

	message := []byte("12345678901234567890123456789012")
	require.Len(t, message, 32)

	signer, _, err := New(k, tag.PurposeSign, Params{Padding: tag.PaddingNone, Digest: tag.DigestNone}, rand.Reader)
	require.NoError(t, err)
	_, _, err = signer.Update(message)
	require.NoError(t, err)
	sig, _, err := signer.Finish(nil)
	require.NoError(t, err)
	assert.Len(t, sig, 32)

	verifier, _, err := New(k, tag.PurposeVerify, Params{Padding: tag.PaddingNone, Digest: tag.DigestNone}, rand.Reader)
	require.NoError(t, err)
	_, _, err = verifier.Update(message)
	require.NoError(t, err)
	_, _, err = verifier.Finish(sig)
	assert.NoError(t, err)
}

func TestHMAC_RFC4231_TestCase2(t *testing.T) {
	adapter, err := NewHMAC([]byte("Jefe"), tag.DigestSHA256, 256, false)
	require.NoError(t, err)
	_, _, err = adapter.Update([]byte("what do ya want for nothing?"))
	require.NoError(t, err)
	mac, _, err := adapter.Finish(nil)
	require.NoError(t, err)

	want, _ := hex.DecodeString("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843")
	assert.Equal(t, want, mac)
}

func TestAES_CTR_NISTVector(t *testing.T) {
	key, _ := hex.DecodeString("2b7e151628aed2a6abf7158809cf4f3c")
	nonce, _ := hex.DecodeString("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	plaintext, _ := hex.DecodeString("6bc1bee22e409f96e93d7e117393172a")

	adapter, err := NewAESCTR(key, nonce)
	require.NoError(t, err)
	_, ciphertext, err := adapter.Update(plaintext)
	require.NoError(t, err)

	want, _ := hex.DecodeString("874d6191b620e3261bef6864990db6ce")
	assert.Equal(t, want, ciphertext)
}

func TestAES_GCM_TamperedAssociatedData(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	nonce := make([]byte, 12)

	encAdapter, err := NewAESGCM(key, nonce, 128, true)
	require.NoError(t, err)
	require.NoError(t, encAdapter.UpdateAAD([]byte("foobar")))
	plaintext := []byte("123456789012345678901234567890123456")
	_, _, err = encAdapter.Update(plaintext)
	require.NoError(t, err)
	ciphertext, authTag, err := encAdapter.Finish(nil)
	require.NoError(t, err)

	tampered, err := NewAESGCM(key, nonce, 128, false)
	require.NoError(t, err)
	gcmTampered := tampered.(*aesGCMAdapter)
	require.NoError(t, gcmTampered.UpdateAAD([]byte("barfoo")))
	_, _, err = gcmTampered.Update(ciphertext)
	require.NoError(t, err)
	require.NoError(t, gcmTampered.SetTag(authTag))
	_, _, err = gcmTampered.Finish(nil)
	assert.ErrorIs(t, err, ErrVerificationFailed)

	correct, err := NewAESGCM(key, nonce, 128, false)
	require.NoError(t, err)
	gcmOK := correct.(*aesGCMAdapter)
	require.NoError(t, gcmOK.UpdateAAD([]byte("foobar")))
	_, _, err = gcmOK.Update(ciphertext)
	require.NoError(t, err)
	require.NoError(t, gcmOK.SetTag(authTag))
	out, _, err := gcmOK.Finish(nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, out)
}

func TestRSA_PSS_IncompatibleDigest(t *testing.T) {
	k, _, err := keys.Generate(rsaGenParams(265, 65537), rand.Reader)
	require.NoError(t, err)

	_, err = NewRSASignVerify(k.RSA, tag.PaddingPSS, tag.DigestSHA256, false, rand.Reader)
	assert.ErrorIs(t, err, ErrIncompatibleDigest)
}

func TestAES_CBC_PKCS7_RoundTrip(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, 16)
	enc, err := NewAESBlock(key, tag.BlockModeCBC, tag.PaddingPKCS7, iv, true)
	require.NoError(t, err)
	_, _, err = enc.Update([]byte("hello world, this is a test message"))
	require.NoError(t, err)
	ciphertext, _, err := enc.Finish(nil)
	require.NoError(t, err)

	dec, err := NewAESBlock(key, tag.BlockModeCBC, tag.PaddingPKCS7, iv, false)
	require.NoError(t, err)
	_, _, err = dec.Update(ciphertext)
	require.NoError(t, err)
	plain, _, err := dec.Finish(nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world, this is a test message", string(plain))
}

func TestAES_ECB_BlockAligned_RoundTrip(t *testing.T) {
	key := make([]byte, 16)
	plaintext := make([]byte, 32)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	enc, err := NewAESBlock(key, tag.BlockModeECB, tag.PaddingNone, nil, true)
	require.NoError(t, err)
	_, _, err = enc.Update(plaintext)
	require.NoError(t, err)
	ciphertext, _, err := enc.Finish(nil)
	require.NoError(t, err)

	dec, err := NewAESBlock(key, tag.BlockModeECB, tag.PaddingNone, nil, false)
	require.NoError(t, err)
	_, _, err = dec.Update(ciphertext)
	require.NoError(t, err)
	plain, _, err := dec.Finish(nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, plain)
}

func TestEC_SignVerify_RoundTrip(t *testing.T) {
	s := authset.New()
	s.Push(tag.Algorithm, tag.EnumValue(tag.Algorithm, int64(tag.AlgorithmEC)))
	s.Push(tag.KeySize, tag.UintValue(tag.KeySize, 256))
	k, _, err := keys.Generate(s, rand.Reader)
	require.NoError(t, err)

	signer, _, err := New(k, tag.PurposeSign, Params{Digest: tag.DigestSHA256}, rand.Reader)
	require.NoError(t, err)
	_, _, err = signer.Update([]byte("message to sign"))
	require.NoError(t, err)
	sig, _, err := signer.Finish(nil)
	require.NoError(t, err)

	verifier, _, err := New(k, tag.PurposeVerify, Params{Digest: tag.DigestSHA256}, rand.Reader)
	require.NoError(t, err)
	_, _, err = verifier.Update([]byte("message to sign"))
	require.NoError(t, err)
	_, _, err = verifier.Finish(sig)
	assert.NoError(t, err)
}
