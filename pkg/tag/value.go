package tag

import "fmt"

// Value is the sum of the seven value variants a Tag's declared type allows.
// Exactly one field is meaningful, selected by Type.
type Value struct {
	Type    Type
	Enum    int64
	UintVal uint32
	Uint64  uint64
	Bignum  []byte
	Date    uint64 // milliseconds since epoch
	Bool    bool
	Bytes   []byte
}

// mismatch panics with the tag/type that caused it. Construction from a tag
// of mismatched type is a programming error per spec: callers are expected
// to pass the right constructor for the declared tag type, not to recover
// from this dynamically.
func mismatch(want Type, tg Tag) {
	panic(fmt.Sprintf("tag: value type mismatch: %s requires %s value, got %s constructor",
		tg.Name(), tg.ValueType(), want))
}

// EnumValue builds an enum-typed Value for tg.
func EnumValue(tg Tag, v int64) Value {
	if tg.ValueType() != Enum {
		mismatch(Enum, tg)
	}
	return Value{Type: Enum, Enum: v}
}

// UintValue builds a uint32-typed Value for tg.
func UintValue(tg Tag, v uint32) Value {
	if tg.ValueType() != Uint {
		mismatch(Uint, tg)
	}
	return Value{Type: Uint, UintVal: v}
}

// Uint64Value builds a uint64-typed Value for tg.
func Uint64Value(tg Tag, v uint64) Value {
	if tg.ValueType() != Uint64 {
		mismatch(Uint64, tg)
	}
	return Value{Type: Uint64, Uint64: v}
}

// BignumValue builds a bignum-typed Value for tg. The Value owns b.
func BignumValue(tg Tag, b []byte) Value {
	if tg.ValueType() != Bignum {
		mismatch(Bignum, tg)
	}
	owned := make([]byte, len(b))
	copy(owned, b)
	return Value{Type: Bignum, Bignum: owned}
}

// DateValue builds a date-typed Value (milliseconds since epoch) for tg.
func DateValue(tg Tag, ms uint64) Value {
	if tg.ValueType() != Date {
		mismatch(Date, tg)
	}
	return Value{Type: Date, Date: ms}
}

// BoolValue builds a bool-typed Value for tg. Presence in a set means true:
// the policy engine checks only whether the tag is present, never the
// stored value.
func BoolValue(tg Tag, v bool) Value {
	if tg.ValueType() != Bool {
		mismatch(Bool, tg)
	}
	return Value{Type: Bool, Bool: v}
}

// BytesValue builds a blob-typed Value for tg. The Value owns b.
func BytesValue(tg Tag, b []byte) Value {
	if tg.ValueType() != Bytes {
		mismatch(Bytes, tg)
	}
	owned := make([]byte, len(b))
	copy(owned, b)
	return Value{Type: Bytes, Bytes: owned}
}

// Equal reports whether two values of the same Type carry the same payload.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Enum:
		return v.Enum == o.Enum
	case Uint:
		return v.UintVal == o.UintVal
	case Uint64:
		return v.Uint64 == o.Uint64
	case Bignum:
		return bytesEqual(v.Bignum, o.Bignum)
	case Date:
		return v.Date == o.Date
	case Bool:
		return v.Bool == o.Bool
	case Bytes:
		return bytesEqual(v.Bytes, o.Bytes)
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AsUint64 returns the value as a uint64 regardless of its exact numeric
// Type, for callers that just need a magnitude (e.g. MAC-length checks).
// Only valid for Uint, Uint64 and Date values.
func (v Value) AsUint64() (uint64, bool) {
	switch v.Type {
	case Uint:
		return uint64(v.UintVal), true
	case Uint64:
		return v.Uint64, true
	case Date:
		return v.Date, true
	default:
		return 0, false
	}
}
