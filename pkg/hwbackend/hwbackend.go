// Package hwbackend models the hardware-backend adapter as an interface the
// core consumes. It does not talk to real hardware — it exposes the
// capability-query surface pkg/policy needs to decide, at generate/import
// time, which primary crypto parameters belong in the hardware-enforced
// authorization set.
package hwbackend

import "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"

// Request describes the primary crypto parameters a generate/import call is
// about to establish — the subset eligible for hardware enforcement when a
// backend claims them.
type Request struct {
	Algorithm tag.Algorithm_
	KeySize   uint32
	Digest    *tag.Digest_
	Padding   *tag.Padding_
}

// Backend reports whether it can enforce a given set of primary crypto
// parameters. A present backend that returns false for a given request
// leaves everything in the software-enforced set.
type Backend interface {
	Name() string
	Supports(req Request) bool
}

// None is the always-absent backend: every key is entirely
// software-enforced. This is the default when no backend is configured.
type None struct{}

func (None) Name() string             { return "none" }
func (None) Supports(Request) bool { return false }

// Static is a fixed-capability backend driven by a configured allowlist of
// (algorithm, key-size) pairs — standing in for the device the real adapter
// would forward to: the core only consumes a capability interface, never a
// wire protocol to the device.
type Static struct {
	name         string
	capabilities map[capabilityKey]bool
}

type capabilityKey struct {
	algorithm tag.Algorithm_
	keySize   uint32
}

// NewStatic builds a Static backend named name, capable of enforcing exactly
// the given (algorithm, key-size) pairs.
func NewStatic(name string, pairs ...[2]uint32) *Static {
	caps := make(map[capabilityKey]bool, len(pairs))
	for _, p := range pairs {
		caps[capabilityKey{algorithm: tag.Algorithm_(p[0]), keySize: p[1]}] = true
	}
	return &Static{name: name, capabilities: caps}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Supports(req Request) bool {
	return s.capabilities[capabilityKey{algorithm: req.Algorithm, keySize: req.KeySize}]
}
