package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harun/nanoboard/pkg/sandbox"
)

// DefaultPriority is the extension order used for every resource kind.
var DefaultPriority = []string{".md", ".json", ".jsonl"}

// Location is a resolved resource.
type Location struct {
	ID string
	// Path is the file holding the content.
	Path string
	// Container is the resource directory for directory-shaped resources,
	// empty otherwise.
	Container string
}

// Resolver finds resources of one kind under a root.
type Resolver struct {
	root     *sandbox.Root
	priority []string
}

// NewResolver creates a resolver. With no priority given, DefaultPriority applies.
func NewResolver(root *sandbox.Root, priority ...string) *Resolver {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	return &Resolver{root: root, priority: append([]string(nil), priority...)}
}

// Root returns the sandbox root the resolver is scoped to.
func (r *Resolver) Root() *sandbox.Root {
	return r.root
}

// Find returns the file backing id.
func (r *Resolver) Find(id string) (string, error) {
	return FindFile(r.root, id, r.priority)
}

// Locate runs the lookup and reports the shape that matched.
func (r *Resolver) Locate(id string) (Location, error) {
	return locate(r.root, id, r.priority)
}

// FindFile is the one-shot form of Resolver.Find.
func FindFile(root *sandbox.Root, id string, priority []string) (string, error) {
	loc, err := locate(root, id, priority)
	if err != nil {
		return "", err
	}
	return loc.Path, nil
}

func locate(root *sandbox.Root, id string, priority []string) (Location, error) {
	base, err := root.Leaf(id)
	if err != nil {
		return Location{}, err
	}

	info, err := os.Stat(base)
	switch {
	case err == nil && info.IsDir():
		child, err := pickChild(base, priority)
		if err != nil {
			return Location{}, err
		}
		if child == "" {
			return Location{}, fmt.Errorf("%w: %s has no content file", ErrNotFound, id)
		}
		path := filepath.Join(base, child)
		if err := root.Contains(path); err != nil {
			return Location{}, err
		}
		return Location{ID: id, Path: path, Container: base}, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return Location{}, fmt.Errorf("stat %s: %w", id, err)
	}

	candidates := make([]string, 0, len(priority)+1)
	for _, ext := range priority {
		candidates = append(candidates, id+ext)
	}
	candidates = append(candidates, id)

	for _, name := range candidates {
		path, err := root.Resolve(name)
		if err != nil {
			return Location{}, err
		}
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return Location{ID: id, Path: path}, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Location{}, fmt.Errorf("stat %s: %w", name, err)
		}
	}

	return Location{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// pickChild returns the first regular entry, in lexical order, carrying the
// highest priority extension. Subdirectories never match.
func pickChild(dir string, priority []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(dir), err)
	}
	for _, ext := range priority {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.HasSuffix(e.Name(), ext) {
				return e.Name(), nil
			}
		}
	}
	return "", nil
}

// HasKnownExtension reports whether name already ends in one of the
// resolver's extensions.
func (r *Resolver) HasKnownExtension(name string) bool {
	for _, ext := range r.priority {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// TrimExtension strips a recognized extension from a file name.
func (r *Resolver) TrimExtension(name string) string {
	for _, ext := range r.priority {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
