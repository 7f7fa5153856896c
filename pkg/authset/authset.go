// Package authset implements the authorization set: an ordered multiset of
// typed tag/value pairs attached to a key, with a bit-exact binary form that
// callers round-trip to disk.
package authset

import (
	"errors"
	"fmt"

	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// Errors returned by Unmarshal when the wire form is malformed.
var (
	ErrCorruptedData    = errors.New("authset: corrupted data")
	ErrUnknownValueType = errors.New("authset: unknown value type code")
)

// Entry is a single (tag, value) pair within a Set.
type Entry struct {
	Tag   tag.Tag
	Value tag.Value
}

// Set is an ordered sequence of entries with multiset equality semantics:
// order does not affect Equal, but insertion order is preserved for
// deterministic serialization.
type Set struct {
	entries []Entry
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Len returns the number of entries in the set.
func (s *Set) Len() int { return len(s.entries) }

// Entries returns the set's entries in insertion order. The returned slice
// must not be mutated by the caller.
func (s *Set) Entries() []Entry { return s.entries }

// Push appends a (tag, value) pair. Non-repeatable tags are still appended
// here; callers that must not add a second copy (the key-generation path,
// when injecting defaults) check Contains first.
func (s *Set) Push(tg tag.Tag, v tag.Value) {
	s.entries = append(s.entries, Entry{Tag: tg, Value: v})
}

// Contains reports whether any entry has the given tag.
func (s *Set) Contains(tg tag.Tag) bool {
	for _, e := range s.entries {
		if e.Tag == tg {
			return true
		}
	}
	return false
}

// ContainsValue reports whether an entry with this exact (tag, value) pair
// exists.
func (s *Set) ContainsValue(tg tag.Tag, v tag.Value) bool {
	for _, e := range s.entries {
		if e.Tag == tg && e.Value.Equal(v) {
			return true
		}
	}
	return false
}

// Get returns the first value stored under tg, if any. For repeatable tags
// use All instead.
func (s *Set) Get(tg tag.Tag) (tag.Value, bool) {
	for _, e := range s.entries {
		if e.Tag == tg {
			return e.Value, true
		}
	}
	return tag.Value{}, false
}

// All returns every value stored under tg, in insertion order.
func (s *Set) All(tg tag.Tag) []tag.Value {
	var out []tag.Value
	for _, e := range s.entries {
		if e.Tag == tg {
			out = append(out, e.Value)
		}
	}
	return out
}

// Merge appends every entry of other to s, preserving other's internal order.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	s.entries = append(s.entries, other.entries...)
}

// Clear removes every entry.
func (s *Set) Clear() {
	s.entries = nil
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	out := &Set{entries: make([]Entry, len(s.entries))}
	for i, e := range s.entries {
		if e.Value.Bignum != nil {
			e.Value.Bignum = append([]byte(nil), e.Value.Bignum...)
		}
		if e.Value.Bytes != nil {
			e.Value.Bytes = append([]byte(nil), e.Value.Bytes...)
		}
		out.entries[i] = e
	}
	return out
}

// Equal reports multiset equality: same entries with the same multiplicity,
// order independent.
func (s *Set) Equal(o *Set) bool {
	if o == nil {
		return s.Len() == 0
	}
	if s.Len() != o.Len() {
		return false
	}
	used := make([]bool, len(o.entries))
	for _, e := range s.entries {
		found := false
		for i, oe := range o.entries {
			if used[i] {
				continue
			}
			if e.Tag == oe.Tag && e.Value.Equal(oe.Value) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// WithoutHidden returns a clone of s with every hidden-class tag removed.
// Used to build the characteristic sets returned to callers: hidden
// provenance tags bind the key blob's authenticator but are never handed
// back.
func (s *Set) WithoutHidden() *Set {
	out := &Set{}
	for _, e := range s.entries {
		if e.Tag.Hidden() {
			continue
		}
		out.entries = append(out.entries, e)
	}
	return out
}

func (s *Set) String() string {
	return fmt.Sprintf("authset.Set{%d entries}", s.Len())
}
