package keys

import "errors"

// Parameter errors.
var (
	ErrUnsupportedAlgorithm       = errors.New("keys: unsupported algorithm")
	ErrUnsupportedKeySize         = errors.New("keys: unsupported key size")
	ErrUnsupportedKeyFormat       = errors.New("keys: unsupported key format")
	ErrMissingAlgorithm           = errors.New("keys: exactly one algorithm tag is required")
	ErrMissingKeySize             = errors.New("keys: key size is required")
	ErrMissingPublicExponent      = errors.New("keys: RSA public exponent is required")
	ErrImportParameterMismatch    = errors.New("keys: import parameter mismatch")
	ErrInvalidInputLength         = errors.New("keys: invalid input length")
	ErrInvalidArgument            = errors.New("keys: invalid argument")
)
