package willowmap

import "errors"

var (
	// ErrNilMap is returned when an overlay is mounted without a map.
	ErrNilMap = errors.New("willowmap: nil map")
	// ErrNotAttached is returned by operations that need a mounted overlay.
	ErrNotAttached = errors.New("willowmap: overlay is not attached to a map")
	// ErrInvalidOption wraps option validation failures.
	ErrInvalidOption = errors.New("willowmap: invalid option")
)
