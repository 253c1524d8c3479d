package resource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := sandbox.NewRoot(dir)
	require.NoError(t, err)
	return NewResolver(root), root.Dir()
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolverFind(t *testing.T) {
	t.Run("should pick the markdown file inside a directory", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "foo", "a.json"), "{}")
		write(t, filepath.Join(dir, "foo", "NOTES.md"), "# notes")

		got, err := r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo", "NOTES.md"), got)
	})

	t.Run("should fall back through json then jsonl inside a directory", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "foo", "z.jsonl"), "")
		write(t, filepath.Join(dir, "foo", "readme.txt"), "")

		got, err := r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo", "z.jsonl"), got)

		write(t, filepath.Join(dir, "foo", "y.json"), "[]")
		got, err = r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo", "y.json"), got)
	})

	t.Run("should report not found for a directory without content", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "foo", "readme.txt"), "")
		// a sibling file must not be consulted once the directory matched
		write(t, filepath.Join(dir, "foo.md"), "x")

		_, err := r.Find("foo")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should try extensions in order", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "foo.jsonl"), "")
		write(t, filepath.Join(dir, "foo"), "")

		got, err := r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo.jsonl"), got)

		write(t, filepath.Join(dir, "foo.json"), "")
		got, err = r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo.json"), got)

		write(t, filepath.Join(dir, "foo.md"), "")
		got, err = r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo.md"), got)
	})

	t.Run("should accept an extensionless file", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "plain"), "text")

		got, err := r.Find("plain")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "plain"), got)
	})

	t.Run("should skip subdirectories named like content files", func(t *testing.T) {
		r, dir := newResolver(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "foo", "archive.md"), 0o755))
		write(t, filepath.Join(dir, "foo", "notes.json"), "{}")

		got, err := r.Find("foo")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "foo", "notes.json"), got)
	})

	t.Run("should report a directory holding only subdirectories", func(t *testing.T) {
		r, dir := newResolver(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "foo", "archive.md"), 0o755))

		_, err := r.Find("foo")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should accept an id that already carries its extension", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "chat.jsonl"), "")

		got, err := r.Find("chat.jsonl")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "chat.jsonl"), got)
	})

	t.Run("should report not found when nothing exists", func(t *testing.T) {
		r, _ := newResolver(t)
		_, err := r.Find("missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, sandbox.ErrAccessDenied)
	})

	t.Run("should deny unsafe ids before touching disk", func(t *testing.T) {
		r, _ := newResolver(t)
		for _, id := range []string{"", " ", "../secret", "a/b", `a\b`, "..", "x\x00"} {
			_, err := r.Find(id)
			assert.ErrorIs(t, err, sandbox.ErrAccessDenied, "%q", id)
			assert.NotErrorIs(t, err, ErrNotFound, "%q", id)
		}
	})

	t.Run("should honour a custom priority", func(t *testing.T) {
		dir := t.TempDir()
		root, err := sandbox.NewRoot(dir)
		require.NoError(t, err)
		write(t, filepath.Join(root.Dir(), "foo.md"), "")
		write(t, filepath.Join(root.Dir(), "foo.json"), "")

		got, err := FindFile(root, "foo", []string{".json", ".md"})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root.Dir(), "foo.json"), got)
	})
}

func TestResolverLocate(t *testing.T) {
	r, dir := newResolver(t)
	write(t, filepath.Join(dir, "boxed", "a.md"), "")
	write(t, filepath.Join(dir, "flat.md"), "")

	loc, err := r.Locate("boxed")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "boxed"), loc.Container)

	loc, err = r.Locate("flat")
	require.NoError(t, err)
	assert.Empty(t, loc.Container)
	assert.Equal(t, "flat", loc.ID)
}

func TestResolverList(t *testing.T) {
	t.Run("should return an empty list for a missing root", func(t *testing.T) {
		root, err := sandbox.NewRoot(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)

		entries, err := NewResolver(root).List()
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NotNil(t, entries)
	})

	t.Run("should list recognized files and directories newest first", func(t *testing.T) {
		r, dir := newResolver(t)
		write(t, filepath.Join(dir, "old.md"), "a")
		write(t, filepath.Join(dir, "new.jsonl"), "bb")
		write(t, filepath.Join(dir, "boxed", "x.md"), "")
		write(t, filepath.Join(dir, "ignored.txt"), "")

		now := time.Now()
		require.NoError(t, os.Chtimes(filepath.Join(dir, "old.md"), now.Add(-time.Hour), now.Add(-time.Hour)))
		require.NoError(t, os.Chtimes(filepath.Join(dir, "boxed"), now.Add(-30*time.Minute), now.Add(-30*time.Minute)))
		require.NoError(t, os.Chtimes(filepath.Join(dir, "new.jsonl"), now, now))

		entries, err := r.List()
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, "new.jsonl", entries[0].ID)
		assert.Equal(t, "new", entries[0].Name)
		assert.Equal(t, int64(2), entries[0].Size)
		assert.Equal(t, "boxed", entries[1].ID)
		assert.Equal(t, "boxed", entries[1].Name)
		assert.True(t, entries[1].IsDir)
		assert.Equal(t, "old", entries[2].Name)
	})
}

func TestExtensionHelpers(t *testing.T) {
	r, _ := newResolver(t)
	assert.True(t, r.HasKnownExtension("a.md"))
	assert.True(t, r.HasKnownExtension("a.jsonl"))
	assert.False(t, r.HasKnownExtension("a.txt"))
	assert.Equal(t, "a", r.TrimExtension("a.jsonl"))
	assert.Equal(t, "a.txt", r.TrimExtension("a.txt"))
	assert.False(t, r.HasKnownExtension("a.markdown"))
}
