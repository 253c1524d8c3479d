package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/harun/nanoboard/internal/fsutil"
	"github.com/harun/nanoboard/internal/metrics"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/rs/zerolog"
)

// Transform maps the current entry list to the next one. It must not keep
// references to its input after returning.
type Transform func([]Entry) ([]Entry, error)

// Options configures a Store.
type Options struct {
	// Root is the directory holding the document.
	Root *sandbox.Root
	// File is the document's leaf name under Root, e.g. "jobs.json".
	File string
	// Key names the array in a wrapped document, e.g. "jobs".
	Key string
	// AbsentShape is the shape created when the file does not exist yet.
	AbsentShape Shape
	// Name labels logs and metrics. Defaults to Key.
	Name string
	// IDPrefix is used by Append, e.g. "job_".
	IDPrefix string

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Store owns one document file.
type Store struct {
	opts Options
	path string
	ids  *IDGenerator
	mu   sync.Mutex
}

// New creates a store. The document location is resolved through the root
// here and re-checked before every read and write; the file itself is not
// touched until the first call.
func New(opts Options) (*Store, error) {
	if opts.Root == nil || opts.File == "" {
		return nil, fmt.Errorf("store root and file are required")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("store key is required")
	}
	if opts.Name == "" {
		opts.Name = opts.Key
	}
	path, err := opts.Root.Leaf(opts.File)
	if err != nil {
		return nil, fmt.Errorf("%s store: %w", opts.Name, err)
	}
	return &Store{
		opts: opts,
		path: path,
		ids:  NewIDGenerator(opts.IDPrefix),
	}, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Read loads the current document. A missing file yields an empty document
// of the configured absent shape.
func (s *Store) Read() (*Document, error) {
	if err := s.opts.Root.Contains(s.path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return emptyDocument(s.opts.AbsentShape, s.opts.Key), nil
		}
		return nil, fmt.Errorf("read %s store: %w", s.opts.Name, err)
	}
	return Decode(data, s.opts.Key)
}

// List returns the current entries.
func (s *Store) List() ([]Entry, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// Mutate runs one read-transform-write cycle and returns the written entries.
// If fn fails nothing is written.
func (s *Store) Mutate(fn Transform) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.mutateLocked(fn)
	s.opts.Metrics.RecordStoreMutation(s.opts.Name, err)
	return out, err
}

func (s *Store) mutateLocked(fn Transform) ([]Entry, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}

	next, err := fn(doc.Entries)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []Entry{}
	}
	doc.Entries = next

	data, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	if err := s.opts.Root.Contains(s.path); err != nil {
		return nil, err
	}
	if err := fsutil.AtomicWrite(s.path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s store: %w", s.opts.Name, err)
	}

	s.opts.Logger.Debug().
		Str("store", s.opts.Name).
		Str("shape", doc.Shape.String()).
		Str("key", doc.Key()).
		Int("count", len(next)).
		Msg("Persisted store")
	return next, nil
}

// Append assigns a fresh id to e and adds it at the end.
func (s *Store) Append(e Entry) (Entry, error) {
	e, err := ParseEntry(e)
	if err != nil {
		return nil, err
	}

	var added Entry
	_, err = s.Mutate(func(list []Entry) ([]Entry, error) {
		id := s.ids.Next()
		for indexOf(list, id) >= 0 {
			id = s.ids.Next()
		}
		withID, err := e.With("id", id)
		if err != nil {
			return nil, err
		}
		added = withID
		return append(list, withID), nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Merge applies patch over the entry with the given id.
func (s *Store) Merge(id string, patch Entry) (Entry, error) {
	return s.update(id, func(e Entry) (Entry, error) {
		return e.Merge(patch)
	})
}

// SetField sets one field on the entry with the given id.
func (s *Store) SetField(id, key string, value interface{}) (Entry, error) {
	return s.update(id, func(e Entry) (Entry, error) {
		return e.With(key, value)
	})
}

// Remove deletes the entry with the given id.
func (s *Store) Remove(id string) error {
	_, err := s.Mutate(func(list []Entry) ([]Entry, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return append(list[:i:i], list[i+1:]...), nil
	})
	return err
}

// Upsert adds e when no entry has its id. When one exists and replace is
// true the existing entry is merged with e; otherwise it is left alone.
// It reports whether an entry was added.
func (s *Store) Upsert(e Entry, replace bool) (bool, error) {
	e, err := ParseEntry(e)
	if err != nil {
		return false, err
	}
	id := e.ID()
	if id == "" {
		return false, ErrInvalidEntry
	}

	added := false
	_, err = s.Mutate(func(list []Entry) ([]Entry, error) {
		i := indexOf(list, id)
		if i < 0 {
			added = true
			return append(list, e), nil
		}
		if !replace {
			return list, nil
		}
		merged, err := list[i].Merge(e)
		if err != nil {
			return nil, err
		}
		list[i] = merged
		return list, nil
	})
	return added, err
}

// Find returns the entry with the given id.
func (s *Store) Find(id string) (Entry, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	if i := indexOf(list, id); i >= 0 {
		return list[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) update(id string, fn func(Entry) (Entry, error)) (Entry, error) {
	var updated Entry
	_, err := s.Mutate(func(list []Entry) ([]Entry, error) {
		i := indexOf(list, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next, err := fn(list[i])
		if err != nil {
			return nil, err
		}
		list[i] = next
		updated = next
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func indexOf(list []Entry, id string) int {
	if id == "" {
		return -1
	}
	for i, e := range list {
		if e.ID() == id {
			return i
		}
	}
	return -1
}
