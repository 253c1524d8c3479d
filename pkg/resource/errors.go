package resource

import "errors"

// ErrNotFound is returned when no shape of a resource exists on disk.
var ErrNotFound = errors.New("resource not found")
