// Package tag implements the typed authorization tag vocabulary: the atomic
// data element every key authorization and crypto parameter is built from.
package tag

import "fmt"

// Type is the declared value type of a Tag, carried in the tag's high byte.
type Type uint32

const (
	Invalid Type = iota
	Enum
	Uint
	Uint64
	Bignum
	Date
	Bool
	Bytes
)

func (t Type) String() string {
	switch t {
	case Invalid:
		return "INVALID"
	case Enum:
		return "ENUM"
	case Uint:
		return "UINT"
	case Uint64:
		return "UINT64"
	case Bignum:
		return "BIGNUM"
	case Date:
		return "DATE"
	case Bool:
		return "BOOL"
	case Bytes:
		return "BYTES"
	default:
		return "UNKNOWN"
	}
}

// Tag is a 32-bit identifier. Its high byte encodes the declared Type; the
// low 24 bits are the tag's ordinal within that type.
type Tag uint32

const typeShift = 24

func makeTag(t Type, ordinal uint32) Tag {
	return Tag(uint32(t)<<typeShift | (ordinal & 0x00FFFFFF))
}

// ValueType returns the declared value type for the tag.
func (tg Tag) ValueType() Type {
	return Type(uint32(tg) >> typeShift)
}

// Class describes which enforcement/semantic bucket a tag belongs to.
type Class int

const (
	ClassCryptoParameter Class = iota
	ClassAuthConstraint
	ClassProvenance
)

func (c Class) String() string {
	switch c {
	case ClassCryptoParameter:
		return "crypto-parameter"
	case ClassAuthConstraint:
		return "auth-constraint"
	case ClassProvenance:
		return "provenance"
	default:
		return "unknown"
	}
}

// descriptor is the fixed-table entry for a recognized tag.
type descriptor struct {
	name       string
	valueType  Type
	repeatable bool
	class      Class
	hidden     bool
}

// Recognized tags. Ordinals are arbitrary but stable within this module;
// nothing outside this package should assume a particular numeric value.
var (
	Algorithm       = makeTag(Enum, 1)
	Purpose         = makeTag(Enum, 2) // repeatable
	KeySize         = makeTag(Uint, 3)
	RSAPublicExponent = makeTag(Uint64, 4)
	Digest          = makeTag(Enum, 5) // repeatable
	Padding         = makeTag(Enum, 6) // repeatable
	BlockMode       = makeTag(Enum, 7) // repeatable
	MACLength       = makeTag(Uint, 8)
	CallerNonce     = makeTag(Bool, 9)
	Nonce           = makeTag(Bytes, 10)
	AssociatedData  = makeTag(Bytes, 11) // repeatable
	AEADTag         = makeTag(Bytes, 12)

	ActiveDateTime       = makeTag(Date, 20)
	OriginationExpire    = makeTag(Date, 21)
	UsageExpire          = makeTag(Date, 22)
	UserID               = makeTag(Uint64, 23)
	UserAuthType         = makeTag(Enum, 24)
	AuthTimeout          = makeTag(Uint, 25)
	AllUsers             = makeTag(Bool, 26)
	NoAuthRequired       = makeTag(Bool, 27)

	Origin           = makeTag(Enum, 40)
	CreationDateTime = makeTag(Date, 41)

	ApplicationID   = makeTag(Bytes, 50) // hidden
	ApplicationData = makeTag(Bytes, 51) // hidden
	RootOfTrust     = makeTag(Bytes, 52) // hidden
)

var table = map[Tag]descriptor{
	Algorithm:         {"ALGORITHM", Enum, false, ClassCryptoParameter, false},
	Purpose:           {"PURPOSE", Enum, true, ClassAuthConstraint, false},
	KeySize:           {"KEY_SIZE", Uint, false, ClassCryptoParameter, false},
	RSAPublicExponent: {"RSA_PUBLIC_EXPONENT", Uint64, false, ClassCryptoParameter, false},
	Digest:            {"DIGEST", Enum, true, ClassCryptoParameter, false},
	Padding:           {"PADDING", Enum, true, ClassCryptoParameter, false},
	BlockMode:         {"BLOCK_MODE", Enum, true, ClassCryptoParameter, false},
	MACLength:         {"MAC_LENGTH", Uint, false, ClassCryptoParameter, false},
	CallerNonce:       {"CALLER_NONCE", Bool, false, ClassAuthConstraint, false},
	Nonce:             {"NONCE", Bytes, false, ClassCryptoParameter, false},
	AssociatedData:    {"ASSOCIATED_DATA", Bytes, true, ClassCryptoParameter, false},
	AEADTag:           {"AEAD_TAG", Bytes, false, ClassCryptoParameter, false},

	ActiveDateTime:    {"ACTIVE_DATETIME", Date, false, ClassAuthConstraint, false},
	OriginationExpire: {"ORIGINATION_EXPIRE_DATETIME", Date, false, ClassAuthConstraint, false},
	UsageExpire:       {"USAGE_EXPIRE_DATETIME", Date, false, ClassAuthConstraint, false},
	UserID:            {"USER_ID", Uint64, false, ClassAuthConstraint, false},
	UserAuthType:      {"USER_AUTH_TYPE", Enum, false, ClassAuthConstraint, false},
	AuthTimeout:       {"AUTH_TIMEOUT", Uint, false, ClassAuthConstraint, false},
	AllUsers:          {"ALL_USERS", Bool, false, ClassAuthConstraint, false},
	NoAuthRequired:    {"NO_AUTH_REQUIRED", Bool, false, ClassAuthConstraint, false},

	Origin:           {"ORIGIN", Enum, false, ClassProvenance, false},
	CreationDateTime: {"CREATION_DATETIME", Date, false, ClassProvenance, false},

	ApplicationID:   {"APPLICATION_ID", Bytes, false, ClassProvenance, true},
	ApplicationData: {"APPLICATION_DATA", Bytes, false, ClassProvenance, true},
	RootOfTrust:     {"ROOT_OF_TRUST", Bytes, false, ClassProvenance, true},
}

// Name returns the tag's canonical name, or a synthesized name for unknown tags.
func (tg Tag) Name() string {
	if d, ok := table[tg]; ok {
		return d.name
	}
	return fmt.Sprintf("TAG(0x%08x)", uint32(tg))
}

func (tg Tag) String() string { return tg.Name() }

// Repeatable reports whether the tag may legitimately appear more than once
// in an authorization set.
func (tg Tag) Repeatable() bool {
	d, ok := table[tg]
	return ok && d.repeatable
}

// Class returns the tag's semantic bucket.
func (tg Tag) Class() Class {
	if d, ok := table[tg]; ok {
		return d.class
	}
	return ClassCryptoParameter
}

// Hidden reports whether the tag must never appear in a characteristic set
// returned to a caller, even though it binds the key blob's authenticator.
func (tg Tag) Hidden() bool {
	d, ok := table[tg]
	return ok && d.hidden
}

// Known reports whether the tag is in the recognized vocabulary.
func (tg Tag) Known() bool {
	_, ok := table[tg]
	return ok
}

// Enum-valued tag payloads.
type (
	Algorithm_ int
	Purpose_   int
	Digest_    int
	Padding_   int
	BlockMode_ int
	Origin_    int
)

// Algorithm values.
const (
	AlgorithmRSA Algorithm_ = iota + 1
	AlgorithmEC
	AlgorithmAES
	AlgorithmHMAC
)

// Purpose values.
const (
	PurposeEncrypt Purpose_ = iota + 1
	PurposeDecrypt
	PurposeSign
	PurposeVerify
)

// Digest values.
const (
	DigestNone Digest_ = iota
	DigestMD5
	DigestSHA1
	DigestSHA224
	DigestSHA256
	DigestSHA384
	DigestSHA512
)

// Padding values.
const (
	PaddingNone Padding_ = iota
	PaddingPKCS7
	PaddingPKCS1_1_5_Sign
	PaddingPKCS1_1_5_Encrypt
	PaddingOAEP
	PaddingPSS
)

// BlockMode values.
const (
	BlockModeECB BlockMode_ = iota + 1
	BlockModeCBC
	BlockModeCTR
	BlockModeGCM
)

// Origin values.
const (
	OriginGenerated Origin_ = iota + 1
	OriginImported
)
