package alloc

import "errors"

var (
	// ErrExhausted means a badge or ID cursor ran out of assignable values
	// within the architecture's badge width or the configured mask.
	ErrExhausted = errors.New("badge allocation exhausted")
	// ErrNotAllocatable means the scan over the composition never reached
	// the requested end, so no badge applies to it.
	ErrNotAllocatable = errors.New("badge not allocatable")
	// ErrEndNotFound means the requested end is not part of the graph the
	// allocator was given. This is an integration defect in the caller, not
	// a configuration error, but it is still fatal.
	ErrEndNotFound = errors.New("connection end not found")
)
