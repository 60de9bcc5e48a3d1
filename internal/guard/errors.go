package guard

import "errors"

// ErrReservedTag is returned by AddInvariant when the caller attempts to use
// the tag that names the internal task branch of the race.
var ErrReservedTag = errors.New("invariant tag is reserved for the task branch")

// ErrDuplicateTag is returned by AddInvariant when the tag is already
// registered on the Definition. Matching is a case-sensitive exact comparison.
var ErrDuplicateTag = errors.New("invariant tag already registered")
