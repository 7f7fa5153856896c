package policy

import (
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/authset"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/hwbackend"
	"github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"
)

// primaryCryptoParams is the set of tags eligible for hardware enforcement:
// algorithm, key-size, RSA exponent, digest, padding.
var primaryCryptoParams = map[tag.Tag]bool{
	tag.Algorithm:         true,
	tag.KeySize:           true,
	tag.RSAPublicExponent: true,
	tag.Digest:            true,
	tag.Padding:           true,
}

// Split divides a resolved authorization set into hardware- and
// software-enforced sets. When backend is nil or declines the request's
// (algorithm, key-size) pair, every authorization lands in the
// software-enforced set.
func Split(resolved *authset.Set, backend hwbackend.Backend) (hw, sw *authset.Set) {
	hw, sw = authset.New(), authset.New()

	if backend == nil || !backend.Supports(requestFrom(resolved)) {
		sw.Merge(resolved)
		return hw, sw
	}

	for _, e := range resolved.Entries() {
		if primaryCryptoParams[e.Tag] {
			hw.Push(e.Tag, e.Value)
		} else {
			sw.Push(e.Tag, e.Value)
		}
	}
	return hw, sw
}

func requestFrom(s *authset.Set) hwbackend.Request {
	req := hwbackend.Request{}
	if v, ok := s.Get(tag.Algorithm); ok {
		req.Algorithm = tag.Algorithm_(v.Enum)
	}
	if v, ok := s.Get(tag.KeySize); ok {
		req.KeySize = v.UintVal
	}
	if v, ok := s.Get(tag.Digest); ok {
		d := tag.Digest_(v.Enum)
		req.Digest = &d
	}
	if v, ok := s.Get(tag.Padding); ok {
		p := tag.Padding_(v.Enum)
		req.Padding = &p
	}
	return req
}
