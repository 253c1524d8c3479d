package sandbox

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoot(t *testing.T) {
	t.Run("should make the root absolute", func(t *testing.T) {
		r, err := NewRoot("relative/dir")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(r.Dir()))
	})

	t.Run("should reject an empty root", func(t *testing.T) {
		_, err := NewRoot("")
		assert.ErrorIs(t, err, ErrEmptyRoot)
	})
}

func TestRootResolve(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRoot(dir)
	require.NoError(t, err)

	t.Run("should resolve paths that do not exist yet", func(t *testing.T) {
		got, err := r.Resolve("new/dir/file.md")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(r.Dir(), "new", "dir", "file.md"), got)
	})

	t.Run("should deny traversal", func(t *testing.T) {
		_, err := r.Resolve("../outside")
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("should resolve inside a missing root", func(t *testing.T) {
		missing, err := NewRoot(filepath.Join(dir, "not-yet"))
		require.NoError(t, err)
		_, err = missing.Resolve("a/b")
		assert.NoError(t, err)
	})
}

func TestRootResolveSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	base := t.TempDir()
	rootDir := filepath.Join(base, "root")
	outside := filepath.Join(base, "outside")
	require.NoError(t, os.MkdirAll(filepath.Join(rootDir, "inner"), 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0o644))

	require.NoError(t, os.Symlink(outside, filepath.Join(rootDir, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(rootDir, "inner"), filepath.Join(rootDir, "alias")))

	r, err := NewRoot(rootDir)
	require.NoError(t, err)

	t.Run("should deny a link that points outside", func(t *testing.T) {
		_, err := r.Resolve("escape/secret")
		assert.ErrorIs(t, err, ErrAccessDenied)

		_, err = r.Resolve("escape/new-file")
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("should allow a link that stays inside", func(t *testing.T) {
		_, err := r.Resolve("alias/file.md")
		assert.NoError(t, err)
	})

	t.Run("should accept a root that is itself a link", func(t *testing.T) {
		link := filepath.Join(base, "root-link")
		require.NoError(t, os.Symlink(rootDir, link))

		lr, err := NewRoot(link)
		require.NoError(t, err)
		_, err = lr.Resolve("inner")
		assert.NoError(t, err)
	})

	t.Run("should keep the link target seen at startup", func(t *testing.T) {
		link := filepath.Join(base, "moving-link")
		require.NoError(t, os.Symlink(rootDir, link))
		lr, err := NewRoot(link)
		require.NoError(t, err)

		require.NoError(t, os.Remove(link))
		require.NoError(t, os.Symlink(outside, link))

		_, err = lr.Resolve("secret")
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("should evaluate a root created after startup", func(t *testing.T) {
		later := filepath.Join(base, "later")
		lr, err := NewRoot(later)
		require.NoError(t, err)

		require.NoError(t, os.MkdirAll(filepath.Join(later, "notes"), 0o755))
		_, err = lr.Resolve("notes")
		assert.NoError(t, err)
	})
}

func TestRootLeaf(t *testing.T) {
	r, err := NewRoot(t.TempDir())
	require.NoError(t, err)

	got, err := r.Leaf("notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir(), "notes"), got)

	for _, bad := range []string{"", "a/b", "..\\x", "x\x00"} {
		_, err := r.Leaf(bad)
		assert.ErrorIs(t, err, ErrAccessDenied, bad)
	}

	// ".." passes the token check but still cannot leave the root
	_, err = r.Leaf("..")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = r.Leaf(".")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestRootContainsAndRel(t *testing.T) {
	r, err := NewRoot(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, r.Contains(filepath.Join(r.Dir(), "a", "b")))
	assert.ErrorIs(t, r.Contains(filepath.Dir(r.Dir())), ErrAccessDenied)

	assert.Equal(t, "a/b", r.Rel(filepath.Join(r.Dir(), "a", "b")))
	assert.Equal(t, "", r.Rel(r.Dir()))
}
