package sandbox

import "errors"

var (
	// ErrAccessDenied is returned when a path or identifier would leave its root
	ErrAccessDenied = errors.New("access denied")

	// ErrEmptyRoot is returned when a root is configured as an empty path
	ErrEmptyRoot = errors.New("sandbox root is empty")
)
