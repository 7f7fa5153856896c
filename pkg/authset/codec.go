package authset

import (
	"encoding/binary"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// entryFixedWidth returns the on-wire width, in bytes, of a value's fixed
// portion (excluding indirect-data storage), by its declared Type.
func entryFixedWidth(t tag.Type) int {
	switch t {
	case tag.Enum, tag.Uint, tag.Bool:
		return 4
	case tag.Uint64, tag.Date:
		return 8
	case tag.Bignum, tag.Bytes:
		return 8 // 4-byte length + 4-byte offset
	default:
		return 0
	}
}

func indirectBytes(v tag.Value) []byte {
	switch v.Type {
	case tag.Bignum:
		return v.Bignum
	case tag.Bytes:
		return v.Bytes
	default:
		return nil
	}
}

// Marshal encodes the set into its bit-exact wire format:
//
//	4B indirect-byte-count | indirect bytes | 4B entry-count | 4B entry-bytes | entries...
func (s *Set) Marshal() []byte {
	var indirect []byte
	offsets := make([]uint32, len(s.entries))
	lengths := make([]uint32, len(s.entries))

	for i, e := range s.entries {
		ib := indirectBytes(e.Value)
		offsets[i] = uint32(len(indirect))
		lengths[i] = uint32(len(ib))
		indirect = append(indirect, ib...)
	}

	entryBytes := 0
	for _, e := range s.entries {
		entryBytes += 4 + entryFixedWidth(e.Value.Type)
	}

	out := make([]byte, 0, 4+len(indirect)+4+4+entryBytes)
	out = appendU32(out, uint32(len(indirect)))
	out = append(out, indirect...)
	out = appendU32(out, uint32(len(s.entries)))
	out = appendU32(out, uint32(entryBytes))

	for i, e := range s.entries {
		out = appendU32(out, uint32(e.Tag))
		switch e.Value.Type {
		case tag.Enum:
			out = appendU32(out, uint32(e.Value.Enum))
		case tag.Uint:
			out = appendU32(out, e.Value.UintVal)
		case tag.Bool:
			b := uint32(0)
			if e.Value.Bool {
				b = 1
			}
			out = appendU32(out, b)
		case tag.Uint64:
			out = appendU64(out, e.Value.Uint64)
		case tag.Date:
			out = appendU64(out, e.Value.Date)
		case tag.Bignum, tag.Bytes:
			out = appendU32(out, lengths[i])
			out = appendU32(out, offsets[i])
		}
	}

	return out
}

func appendU32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

func appendU64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

// Unmarshal decodes a set from its wire form, rejecting malformed length
// fields, out-of-range offsets, or unknown value-type codes.
func Unmarshal(data []byte) (*Set, error) {
	r := &reader{data: data}

	indirectLen, err := r.u32()
	if err != nil {
		return nil, ErrCorruptedData
	}
	indirectStart := r.pos
	if uint64(indirectStart)+uint64(indirectLen) > uint64(len(data)) {
		return nil, ErrCorruptedData
	}
	indirect := data[indirectStart : indirectStart+int(indirectLen)]
	r.pos += int(indirectLen)

	count, err := r.u32()
	if err != nil {
		return nil, ErrCorruptedData
	}
	entryBytes, err := r.u32()
	if err != nil {
		return nil, ErrCorruptedData
	}
	entriesStart := r.pos
	if uint64(entriesStart)+uint64(entryBytes) > uint64(len(data)) {
		return nil, ErrCorruptedData
	}

	out := &Set{entries: make([]Entry, 0, count)}

	for i := uint32(0); i < count; i++ {
		rawTag, err := r.u32()
		if err != nil {
			return nil, ErrCorruptedData
		}
		tg := tag.Tag(rawTag)
		vt := tg.ValueType()

		var v tag.Value
		switch vt {
		case tag.Enum:
			n, err := r.u32()
			if err != nil {
				return nil, ErrCorruptedData
			}
			v = tag.Value{Type: tag.Enum, Enum: int64(int32(n))}
		case tag.Uint:
			n, err := r.u32()
			if err != nil {
				return nil, ErrCorruptedData
			}
			v = tag.Value{Type: tag.Uint, UintVal: n}
		case tag.Bool:
			n, err := r.u32()
			if err != nil {
				return nil, ErrCorruptedData
			}
			v = tag.Value{Type: tag.Bool, Bool: n != 0}
		case tag.Uint64:
			n, err := r.u64()
			if err != nil {
				return nil, ErrCorruptedData
			}
			v = tag.Value{Type: tag.Uint64, Uint64: n}
		case tag.Date:
			n, err := r.u64()
			if err != nil {
				return nil, ErrCorruptedData
			}
			v = tag.Value{Type: tag.Date, Date: n}
		case tag.Bignum, tag.Bytes:
			length, err := r.u32()
			if err != nil {
				return nil, ErrCorruptedData
			}
			offset, err := r.u32()
			if err != nil {
				return nil, ErrCorruptedData
			}
			if uint64(offset)+uint64(length) > uint64(len(indirect)) {
				return nil, ErrCorruptedData
			}
			b := make([]byte, length)
			copy(b, indirect[offset:offset+length])
			if vt == tag.Bignum {
				v = tag.Value{Type: tag.Bignum, Bignum: b}
			} else {
				v = tag.Value{Type: tag.Bytes, Bytes: b}
			}
		default:
			return nil, ErrUnknownValueType
		}

		out.entries = append(out.entries, Entry{Tag: tg, Value: v})
	}

	if r.pos != entriesStart+int(entryBytes) {
		return nil, ErrCorruptedData
	}

	return out, nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrCorruptedData
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrCorruptedData
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}
