package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRotatingWriter(t *testing.T) {
	t.Run("should create the file and its directory", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "subdir", "gateway.log")

		rw, err := NewRotatingWriter(logFile, 10, 7, false)
		require.NoError(t, err)
		defer rw.Close()

		_, err = os.Stat(logFile)
		assert.NoError(t, err)
	})

	t.Run("should remove expired rotations on open", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "gateway.log")
		old := logFile + ".20200101-120000.000"
		require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
		past := time.Now().AddDate(0, 0, -10)
		require.NoError(t, os.Chtimes(old, past, past))

		rw, err := NewRotatingWriter(logFile, 10, 7, false)
		require.NoError(t, err)
		defer rw.Close()

		_, err = os.Stat(old)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestRotatingWriterRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "gateway.log")

	rw, err := NewRotatingWriter(logFile, 1, 0, false)
	require.NoError(t, err)
	defer rw.Close()
	rw.maxSize = 64

	line := []byte(strings.Repeat("a", 40) + "\n")
	_, err = rw.Write(line)
	require.NoError(t, err)
	_, err = rw.Write(line)
	require.NoError(t, err)

	rotated, err := filepath.Glob(logFile + ".*")
	require.NoError(t, err)
	assert.Len(t, rotated, 1)

	current, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, line, current)
}

func TestRotatingWriterCompress(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "gateway.log")

	rw, err := NewRotatingWriter(logFile, 1, 0, true)
	require.NoError(t, err)
	defer rw.Close()
	rw.maxSize = 16

	_, err = rw.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	_, err = rw.Write([]byte("next"))
	require.NoError(t, err)

	gz, err := filepath.Glob(logFile + ".*.gz")
	require.NoError(t, err)
	assert.Len(t, gz, 1)
}

func TestRotatingWriterClose(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "gateway.log"), 10, 7, false)
	require.NoError(t, err)

	assert.NoError(t, rw.Close())
	assert.NoError(t, rw.Close())

	_, err = rw.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
