package format

import "errors"

// Format errors.
var (
	// ErrInvalidDescriptor is returned when a descriptor lacks a name or extension.
	ErrInvalidDescriptor = errors.New("invalid format descriptor")

	// ErrInvalidPattern is returned when an appendix or diagnostic pattern
	// does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)
