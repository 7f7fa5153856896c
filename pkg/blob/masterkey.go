package blob

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const masterKeyInfo = "keymaster-blob-master-key-v1"

// DeriveMasterKey derives the process-local AES-256-GCM master key used to
// seal every key blob, via HKDF-SHA256 over a fixed root secret. The
// derivation is deterministic: the same root always yields the same master
// key, and the key never leaves the process that derived it.
func DeriveMasterKey(root []byte) []byte {
	salt := []byte("keymaster-root-of-trust")
	r := hkdf.New(sha256.New, root, salt, []byte(masterKeyInfo))

	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf.New's Reader only fails when the requested output exceeds
		// 255*hash-size; 32 bytes from SHA-256 never does.
		panic("blob: HKDF master key derivation failed: " + err.Error())
	}
	return key
}
