package configstore

import "errors"

var (
	// ErrInvalidDocument is returned when a document is not a JSON object
	ErrInvalidDocument = errors.New("config must be a JSON object")

	// ErrMalformed is returned when the stored document cannot be parsed
	ErrMalformed = errors.New("stored config is not valid JSON")

	// ErrSnapshotNotFound is returned for an unknown history entry
	ErrSnapshotNotFound = errors.New("config snapshot not found")
)
