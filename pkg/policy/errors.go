package policy

import "errors"

// Begin-time policy errors.
var (
	ErrIncompatiblePurpose    = errors.New("policy: key does not authorize the requested purpose")
	ErrIncompatibleDigest     = errors.New("policy: digest not permitted by key authorizations")
	ErrUnsupportedPaddingMode = errors.New("policy: padding mode not permitted by key authorizations")
	ErrIncompatibleBlockMode  = errors.New("policy: block mode not permitted by key authorizations")
	ErrCallerNonceProhibited  = errors.New("policy: caller-supplied nonce not authorized for this key")
	ErrInvalidNonce           = errors.New("policy: nonce length incompatible with block mode")
	ErrUnsupportedMacLength   = errors.New("policy: MAC length out of bounds for this primitive")
)
