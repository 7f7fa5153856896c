// Package keys implements the typed key objects — one variant per algorithm
// family — plus their generation, import, and export contracts. A Key
// never leaves this package carrying raw material once sealed; pkg/blob is
// the only thing that persists it.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// Family identifies the algorithm family a Key belongs to.
type Family int

const (
	FamilyRSA Family = iota
	FamilyEC
	FamilyAES
	FamilyHMAC
)

func (f Family) String() string {
	switch f {
	case FamilyRSA:
		return "RSA"
	case FamilyEC:
		return "EC"
	case FamilyAES:
		return "AES"
	case FamilyHMAC:
		return "HMAC"
	default:
		return "UNKNOWN"
	}
}

// Key is the in-memory representation of generated or imported key material
// plus the authorization split established at generation/import time.
type Key struct {
	Family Family

	RSA  *rsa.PrivateKey
	EC   *ecdsa.PrivateKey
	Sym  []byte // raw bytes for AES or HMAC

	HWSet *authset.Set
	SWSet *authset.Set
}

// Characteristics splits a Key's full authorization set, as returned by
// get-key-characteristics: the hardware-enforced set and the
// software-enforced set, each with hidden provenance tags stripped.
func (k *Key) Characteristics() (hw, sw *authset.Set) {
	return k.HWSet.WithoutHidden(), k.SWSet.WithoutHidden()
}

// All returns the full (hw ∪ sw) authorization set, including hidden tags —
// used internally by the policy engine, never returned to a caller directly.
func (k *Key) All() *authset.Set {
	out := k.HWSet.Clone()
	out.Merge(k.SWSet)
	return out
}

func ellipticCurveForKeySize(bits int) (elliptic.Curve, bool) {
	switch bits {
	case 224:
		return elliptic.P224(), true
	case 256:
		return elliptic.P256(), true
	case 384:
		return elliptic.P384(), true
	case 521:
		return elliptic.P521(), true
	default:
		return nil, false
	}
}

func algorithmFromSet(s *authset.Set) (tag.Algorithm_, error) {
	values := s.All(tag.Algorithm)
	if len(values) != 1 {
		return 0, ErrMissingAlgorithm
	}
	return tag.Algorithm_(values[0].Enum), nil
}
