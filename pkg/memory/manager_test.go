package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harun/nanoboard/pkg/resource"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root, err := sandbox.NewRoot(filepath.Join(t.TempDir(), "memory"))
	require.NoError(t, err)
	return NewManager(resource.NewResolver(root), zerolog.Nop()), root.Dir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestManagerGet(t *testing.T) {
	t.Run("should return empty content for a missing memory", func(t *testing.T) {
		m, _ := newTestManager(t)
		content, err := m.Get("nope")
		require.NoError(t, err)
		assert.Equal(t, "", content)
	})

	t.Run("should read a directory shaped memory", func(t *testing.T) {
		m, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "day1", "MEMORY.md"), "remember")

		content, err := m.Get("day1")
		require.NoError(t, err)
		assert.Equal(t, "remember", content)
	})

	t.Run("should deny unsafe identifiers", func(t *testing.T) {
		m, _ := newTestManager(t)
		for _, id := range []string{"../x", "a/b", "..", ""} {
			_, err := m.Get(id)
			assert.ErrorIs(t, err, sandbox.ErrAccessDenied, id)
		}
	})
}

func TestManagerSave(t *testing.T) {
	t.Run("should create new memories as markdown", func(t *testing.T) {
		m, dir := newTestManager(t)
		require.NoError(t, m.Save("today", "# notes"))

		data, err := os.ReadFile(filepath.Join(dir, "today.md"))
		require.NoError(t, err)
		assert.Equal(t, "# notes", string(data))
	})

	t.Run("should keep a known extension on new memories", func(t *testing.T) {
		m, dir := newTestManager(t)
		require.NoError(t, m.Save("log.jsonl", "{}"))
		_, err := os.Stat(filepath.Join(dir, "log.jsonl"))
		assert.NoError(t, err)
	})

	t.Run("should overwrite the resolved file in place", func(t *testing.T) {
		m, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "old.json"), "[]")

		require.NoError(t, m.Save("old", `[{"role":"user"}]`))
		data, err := os.ReadFile(filepath.Join(dir, "old.json"))
		require.NoError(t, err)
		assert.Equal(t, `[{"role":"user"}]`, string(data))
		_, err = os.Stat(filepath.Join(dir, "old.md"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("should round trip through get", func(t *testing.T) {
		m, _ := newTestManager(t)
		require.NoError(t, m.Save("rt", "x\ny"))
		content, err := m.Get("rt")
		require.NoError(t, err)
		assert.Equal(t, "x\ny", content)
	})
}

func TestManagerDelete(t *testing.T) {
	t.Run("should remove a directory memory entirely", func(t *testing.T) {
		m, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "d", "a.md"), "a")
		writeFile(t, filepath.Join(dir, "d", "b.json"), "{}")

		require.NoError(t, m.Delete("d"))
		_, err := os.Stat(filepath.Join(dir, "d"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("should remove only the resolved file", func(t *testing.T) {
		m, dir := newTestManager(t)
		writeFile(t, filepath.Join(dir, "x.md"), "a")
		writeFile(t, filepath.Join(dir, "x.json"), "{}")

		require.NoError(t, m.Delete("x"))
		_, err := os.Stat(filepath.Join(dir, "x.md"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(dir, "x.json"))
		assert.NoError(t, err)
	})

	t.Run("should succeed for a missing memory", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.NoError(t, m.Delete("ghost"))
	})

	t.Run("should deny unsafe identifiers", func(t *testing.T) {
		m, _ := newTestManager(t)
		assert.ErrorIs(t, m.Delete("../../etc"), sandbox.ErrAccessDenied)
	})
}

func TestManagerList(t *testing.T) {
	t.Run("should list nothing when the root is missing", func(t *testing.T) {
		m, _ := newTestManager(t)
		list, err := m.List()
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
