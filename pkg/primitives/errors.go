package primitives

import "errors"

// Errors surfaced by primitive adapters.
var (
	ErrVerificationFailed  = errors.New("primitives: verification failed")
	ErrInvalidInputLength  = errors.New("primitives: invalid input length")
	ErrIncompatibleDigest  = errors.New("primitives: digest incompatible with key size")
	ErrUnsupportedMacLen   = errors.New("primitives: MAC/tag length out of bounds")
	ErrUnknown             = errors.New("primitives: unknown primitive failure")
)
