package workspace

import "errors"

// EntryType is the kind of a tree entry
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
)

// TreeEntry is one child of a listed directory.
type TreeEntry struct {
	Name         string    `json:"name"`
	Type         EntryType `json:"type"`
	IsDirectory  bool      `json:"isDirectory"`
	Path         string    `json:"path"`         // absolute on-disk path
	RelativePath string    `json:"relativePath"` // root-relative, slash separated
	Size         int64     `json:"size"`
	Modified     int64     `json:"modified"` // epoch seconds
}

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileEventAdd    FileEventType = "add"
	FileEventChange FileEventType = "change"
	FileEventDelete FileEventType = "delete"
)

// FileEvent is a debounced change below the root.
type FileEvent struct {
	Event FileEventType `json:"event"`
	Path  string        `json:"path"` // root-relative, slash separated
}

var (
	// ErrPathRequired is returned when an operation needs a non-root path
	ErrPathRequired = errors.New("path is required")

	// ErrNotDirectory is returned when a tree is requested for a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrIsDirectory is returned when file content is requested for a directory
	ErrIsDirectory = errors.New("is a directory")

	// ErrExists is returned when a rename destination is already taken
	ErrExists = errors.New("destination already exists")
)
