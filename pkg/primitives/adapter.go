// Package primitives implements one adapter per (algorithm, mode/padding,
// purpose) triple over Go's standard crypto/rsa, crypto/ecdsa, crypto/aes,
// crypto/cipher and crypto/hmac packages — the narrow primitive interface
// the operation state machine drives through begin/update/finish/abort.
package primitives

// Adapter is the uniform interface every (algorithm, mode, purpose) triple
// implements. UpdateAAD is a no-op for every adapter except AES-GCM encrypt
// and decrypt.
type Adapter interface {
	UpdateAAD(aad []byte) error
	Update(input []byte) (consumed int, output []byte, err error)
	Finish(signature []byte) (output []byte, tag []byte, err error)
	Abort()
}
