package primitives

import "github.com/UOS-By-Uteam/platform-system-keymaster/pkg/tag"

// Params carries the begin-time parameters an adapter needs, already
// validated by pkg/policy — this package never re-checks authorization,
// only primitive-level preconditions (message length, digest/key-size
// compatibility, MAC bounds).
type Params struct {
	Digest  tag.Digest_
	Padding tag.Padding_
	Mode    tag.BlockMode_
	MacBits int
	Nonce   []byte
}
