package medfilt

import "errors"

// Errors returned by the filter and the windowing driver. All of them signal
// caller mistakes: they are raised before any state is mutated, so a failed
// call leaves the filter exactly as it was.
var (
	// ErrCapacityExceeded is returned by Grow when the filter already holds
	// its maximum window length of residents.
	ErrCapacityExceeded = errors.New("medfilt: filter is at capacity")

	// ErrNotFull is returned by Roll when the window has not yet been grown
	// to capacity.
	ErrNotFull = errors.New("medfilt: filter is not at capacity")

	// ErrUnderflow is returned by Shrink when only one resident remains; a
	// zero-length window has no median.
	ErrUnderflow = errors.New("medfilt: cannot shrink below one resident")

	// ErrInvalidArgument is returned (wrapped, with detail) for bad
	// capacities, window lengths, empty inputs, mis-sized output buffers and
	// unrecognized tapering or NaN-policy values.
	ErrInvalidArgument = errors.New("medfilt: invalid argument")

	// ErrInexactConversion is returned by Convert when a computed median
	// cannot be represented exactly in the requested output element type.
	ErrInexactConversion = errors.New("medfilt: inexact conversion")
)
