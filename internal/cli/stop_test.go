package cli

import (
	"os"
	"testing"

	"github.com/harun/nanoboard/internal/daemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopCommand(t *testing.T) {
	t.Run("should be registered", func(t *testing.T) {
		assert.True(t, hasCommand("stop"))
	})

	t.Run("should show help text", func(t *testing.T) {
		out, err := execute(t, "stop", "--help")
		require.NoError(t, err)

		assert.Contains(t, out, "Stop a running nanoboard gateway")
		assert.Contains(t, out, "timeout")
	})

	t.Run("should fail when nothing is running", func(t *testing.T) {
		path := writeConfig(t, map[string]any{})

		_, err := execute(t, "stop", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not running")
	})

	t.Run("should remove a stale PID file", func(t *testing.T) {
		dataDir := t.TempDir()
		path := writeConfig(t, map[string]any{"data_dir": dataDir})
		pidFile := daemon.PIDFile(dataDir)
		// PIDs this large are never handed out
		require.NoError(t, os.WriteFile(pidFile, []byte("999999999"), 0o644))

		_, err := execute(t, "stop", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale PID file")
		assert.NoFileExists(t, pidFile)
	})
}
