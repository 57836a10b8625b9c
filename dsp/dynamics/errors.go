package dynamics

import "errors"

// Errors returned by dynamics processors.
var (
	// ErrInvalidInput reports a malformed signal block: no channels or
	// ragged per-channel lengths.
	ErrInvalidInput = errors.New("dynamics: invalid input")

	// ErrNotProcessed reports a metering accessor called before the first
	// successful processing call.
	ErrNotProcessed = errors.New("dynamics: not yet processed")
)
