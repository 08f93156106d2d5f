package loads

import "errors"

// Sentinel errors used for classification across the engines. Wrap them with
// %w so callers can branch with errors.Is.
var (
	// ErrMalformedRecord marks a feed record missing the fields identity
	// derivation requires. Ingestion skips and counts these rows.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrStoreUnavailable marks a transaction or connection failure. The
	// operation is aborted and may be retried by the caller.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvariantViolation marks an attempted derived-state write outside
	// the sanctioned transition path. The write is refused.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrValidation marks a caller-supplied value of the wrong shape,
	// rejected before the store is touched.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an operation addressed at a load key with no row.
	ErrNotFound = errors.New("load not found")
)
