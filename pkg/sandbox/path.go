package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithinBase joins candidate onto root and returns the cleaned absolute
// result if it stays inside root. Absolute candidates are joined like relative
// ones, so "/etc/passwd" addresses root/etc/passwd.
func ResolveWithinBase(root, candidate string) (string, error) {
	base, err := canonical(root)
	if err != nil {
		return "", err
	}
	if strings.ContainsRune(candidate, 0) {
		return "", fmt.Errorf("%w: path contains NUL", ErrAccessDenied)
	}

	target := filepath.Join(base, candidate)
	if !within(base, target) {
		return "", fmt.Errorf("%w: %q escapes root", ErrAccessDenied, candidate)
	}
	return target, nil
}

// IsWithinBase reports whether target, made absolute, is root or lies below it.
func IsWithinBase(root, target string) bool {
	base, err := canonical(root)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	return within(base, abs)
}

// IsSafePathToken reports whether v can be used as a single path component.
func IsSafePathToken(v string) bool {
	if strings.TrimSpace(v) == "" {
		return false
	}
	return !strings.ContainsAny(v, "/\\\x00")
}

// IsSafeLeafName is IsSafePathToken minus the dot entries. New names for a
// rename go through this.
func IsSafeLeafName(v string) bool {
	return IsSafePathToken(v) && v != "." && v != ".."
}

func canonical(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", ErrEmptyRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}
	return abs, nil
}

// within expects both paths absolute and clean.
func within(base, target string) bool {
	if target == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefix)
}
