package claim

import "errors"

// Failure kinds. Every one of them aborts the run; nothing is committed.
var (
	// ErrDeserialization: input is not valid JSON or a nested layer is malformed
	ErrDeserialization = errors.New("deserialization error")

	// ErrMissingElement: a single-element collection does not hold exactly one element
	ErrMissingElement = errors.New("missing element")

	// ErrEncoding: a hex identifier, owner or signature has the wrong shape or length
	ErrEncoding = errors.New("encoding error")

	// ErrRange: amount does not fit the source integer width
	ErrRange = errors.New("range error")
)
