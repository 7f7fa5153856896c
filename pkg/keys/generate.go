package keys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"math/big"
	"time"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// Generate builds a new key from the requested authorization set. Every
// draw of randomness needed to build the key material is read from rng
// rather than crypto/rand.Reader directly, so a caller that mixes extra
// entropy into its own reader actually perturbs key generation. It returns
// the constructed Key (with
// HWSet/SWSet left empty — splitting authorizations between hardware and
// software enforcement is the policy engine's job, not this package's) and
// the fully resolved authorization set — the caller's input plus the
// defaults this function injects when absent (origin, creation-datetime).
func Generate(input *authset.Set, rng io.Reader) (*Key, *authset.Set, error) {
	algo, err := algorithmFromSet(input)
	if err != nil {
		return nil, nil, err
	}

	resolved := input.Clone()
	if !resolved.Contains(tag.Origin) {
		resolved.Push(tag.Origin, tag.EnumValue(tag.Origin, int64(tag.OriginGenerated)))
	}
	if !resolved.Contains(tag.CreationDateTime) {
		resolved.Push(tag.CreationDateTime, tag.DateValue(tag.CreationDateTime, uint64(time.Now().UnixMilli())))
	}

	keySizeVal, ok := resolved.Get(tag.KeySize)
	if !ok {
		return nil, nil, ErrMissingKeySize
	}
	keySize := int(keySizeVal.UintVal)

	switch algo {
	case tag.AlgorithmRSA:
		expVal, ok := resolved.Get(tag.RSAPublicExponent)
		if !ok {
			return nil, nil, ErrMissingPublicExponent
		}
		priv, err := generateRSA(keySize, expVal.Uint64, rng)
		if err != nil {
			return nil, nil, err
		}
		return &Key{Family: FamilyRSA, RSA: priv}, resolved, nil

	case tag.AlgorithmEC:
		curve, ok := ellipticCurveForKeySize(keySize)
		if !ok {
			return nil, nil, ErrUnsupportedKeySize
		}
		priv, err := ecdsa.GenerateKey(curve, rng)
		if err != nil {
			return nil, nil, err
		}
		return &Key{Family: FamilyEC, EC: priv}, resolved, nil

	case tag.AlgorithmAES:
		if keySize != 128 && keySize != 192 && keySize != 256 {
			return nil, nil, ErrUnsupportedKeySize
		}
		raw := make([]byte, keySize/8)
		if _, err := io.ReadFull(rng, raw); err != nil {
			return nil, nil, err
		}
		return &Key{Family: FamilyAES, Sym: raw}, resolved, nil

	case tag.AlgorithmHMAC:
		if keySize <= 0 || keySize%8 != 0 {
			return nil, nil, ErrUnsupportedKeySize
		}
		raw := make([]byte, keySize/8)
		if _, err := io.ReadFull(rng, raw); err != nil {
			return nil, nil, err
		}
		return &Key{Family: FamilyHMAC, Sym: raw}, resolved, nil

	default:
		return nil, nil, ErrUnsupportedAlgorithm
	}
}

func generateRSA(bits int, exponent uint64, rng io.Reader) (*rsa.PrivateKey, error) {
	// Generate with Go's exponent-65537 generator; when the caller asked for
	// a different exponent, discard that key and generate a fresh one by
	// direct prime search instead.
	priv, err := rsa.GenerateKey(rng, bits)
	if err != nil {
		return nil, err
	}
	if exponent != 0 && exponent != uint64(priv.E) {
		return rsaWithExponent(bits, exponent, rng)
	}
	return priv, nil
}

// rsaWithExponent generates an RSA key with an explicit public exponent by
// direct prime search, since crypto/rsa.GenerateKey always uses 65537.
func rsaWithExponent(bits int, exponent uint64, rng io.Reader) (*rsa.PrivateKey, error) {
	e := new(big.Int).SetUint64(exponent)

	for {
		primeBits := bits / 2
		p, err := rand.Prime(rng, primeBits)
		if err != nil {
			return nil, err
		}
		q, err := rand.Prime(rng, bits-primeBits)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
		qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
		phi := new(big.Int).Mul(pMinus1, qMinus1)

		if new(big.Int).GCD(nil, nil, e, phi).Cmp(big.NewInt(1)) != 0 {
			continue
		}

		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			continue
		}

		priv := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		priv.Precompute()
		return priv, nil
	}
}
