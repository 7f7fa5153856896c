package operation

import "errors"

// State errors.
var (
	ErrInvalidOperationHandle = errors.New("operation: invalid operation handle")
	ErrTooManyOperations      = errors.New("operation: too many concurrent operations")
)
