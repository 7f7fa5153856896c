// Package keymaster implements the service façade: the ten entry points
// (get-supported-*, generate, import, export, get-characteristics, begin,
// update, finish, abort, add-entropy) that orchestrate every other package
// in this module.
package keymaster

import "errors"

// Re-exported sentinels callers compare against with errors.Is. Most entry
// points actually return a sentinel from pkg/keys, pkg/blob, pkg/policy,
// pkg/primitives or pkg/operation directly; these cover the cases only the
// façade itself can detect.
var (
	ErrOutputParameterNull    = errors.New("keymaster: output parameter is nil")
	ErrUnsupportedPurpose     = errors.New("keymaster: unsupported purpose for this algorithm")
	ErrKeyExpired             = errors.New("keymaster: key is past its usage-expire date")
	ErrKeyNotYetValid         = errors.New("keymaster: key is before its active date")
	ErrKeyUserNotAuthenticated = errors.New("keymaster: key requires user authentication")
)
