package domain

import "errors"

var (
	// ErrDataUnavailable means no opening value exists for the requested
	// date: the upstream has not published it yet, reported an explicit
	// error, or is temporarily unreachable.
	ErrDataUnavailable = errors.New("opening value unavailable")

	// ErrInvalidCoordinate means a latitude or longitude is outside the
	// valid range. Reported before any network access occurs.
	ErrInvalidCoordinate = errors.New("coordinate out of range")
)
