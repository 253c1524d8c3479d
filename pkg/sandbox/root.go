package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Root is a base directory fixed at startup. It is immutable and safe for
// concurrent use.
type Root struct {
	dir  string
	real string // dir with symlinks evaluated, empty while dir is missing
}

// NewRoot makes dir absolute and, when it exists, evaluates its symlinks
// once. The directory does not have to exist yet.
func NewRoot(dir string) (*Root, error) {
	abs, err := canonical(dir)
	if err != nil {
		return nil, err
	}
	r := &Root{dir: abs}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		r.real = real
	}
	return r, nil
}

// Dir returns the absolute root path.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve vets candidate lexically, then makes sure no symlink already on
// disk redirects the result outside the root.
func (r *Root) Resolve(candidate string) (string, error) {
	target, err := ResolveWithinBase(r.dir, candidate)
	if err != nil {
		return "", err
	}
	if err := r.checkLinks(target); err != nil {
		return "", err
	}
	return target, nil
}

// Leaf resolves a single-component identifier. It never yields the root
// itself.
func (r *Root) Leaf(id string) (string, error) {
	if !IsSafePathToken(id) {
		return "", fmt.Errorf("%w: unsafe identifier %q", ErrAccessDenied, id)
	}
	target, err := r.Resolve(id)
	if err != nil {
		return "", err
	}
	if target == r.dir {
		return "", fmt.Errorf("%w: identifier %q names the root", ErrAccessDenied, id)
	}
	return target, nil
}

// Contains re-validates an absolute path built from an already resolved one.
func (r *Root) Contains(target string) error {
	if !IsWithinBase(r.dir, target) {
		return fmt.Errorf("%w: %q is outside root", ErrAccessDenied, target)
	}
	return r.checkLinks(filepath.Clean(target))
}

// Rel returns target relative to the root using forward slashes. The root
// itself is "".
func (r *Root) Rel(target string) string {
	rel, err := filepath.Rel(r.dir, target)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// checkLinks evaluates the deepest existing ancestor of target that is at or
// below the root and requires it to stay under the real root.
func (r *Root) checkLinks(target string) error {
	existing := target
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", existing, err)
		}
		if existing == r.dir {
			return nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return nil
		}
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// dangling link
			return fmt.Errorf("%w: %q is a dangling link", ErrAccessDenied, r.Rel(existing))
		}
		return fmt.Errorf("eval symlinks %s: %w", existing, err)
	}
	if !within(r.realDir(), resolved) {
		return fmt.Errorf("%w: %q links outside root", ErrAccessDenied, r.Rel(existing))
	}
	return nil
}

// realDir is the root as resolved at construction. A root created before its
// directory existed is evaluated on demand.
func (r *Root) realDir() string {
	if r.real != "" {
		return r.real
	}
	if real, err := filepath.EvalSymlinks(r.dir); err == nil {
		return real
	}
	return r.dir
}
