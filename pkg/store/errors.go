package store

import "errors"

var (
	// ErrNotFound is returned when an update or removal targets a missing id
	ErrNotFound = errors.New("entry not found")

	// ErrMalformed is returned when the document is not valid JSON or has an
	// unexpected shape
	ErrMalformed = errors.New("malformed store document")

	// ErrInvalidEntry is returned when an entry is not a JSON object
	ErrInvalidEntry = errors.New("entry must be a JSON object")
)
