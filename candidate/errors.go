package candidate

import "errors"

var (
	// ErrUnsorted is returned when a candidate list is not strictly ascending.
	ErrUnsorted = errors.New("candidate: list is not strictly ascending")

	// ErrOutOfMemory is returned when a result buffer cannot be reserved.
	ErrOutOfMemory = errors.New("candidate: result buffer allocation refused")
)
