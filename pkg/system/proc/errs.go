package proc

import "errors"

var (
	// ErrUnavailable indicates that the counter interface could not be read
	// (missing file, permission denied, script exhausted).
	ErrUnavailable = errors.New("proc: counters unavailable")

	// ErrBadSelection indicates an empty, negative or duplicated CPU selection.
	ErrBadSelection = errors.New("proc: bad cpu selection")
)
