package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/harun/nanoboard/internal/daemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand(t *testing.T) {
	t.Run("should be registered with a start alias", func(t *testing.T) {
		assert.True(t, hasCommand("serve"))

		cmd, _, err := GetRootCmd().Find([]string{"start"})
		require.NoError(t, err)
		assert.Equal(t, "serve", cmd.Name())
	})

	t.Run("should show help text", func(t *testing.T) {
		out, err := execute(t, "serve", "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Run the nanoboard gateway in the foreground")
	})

	t.Run("should refuse an invalid configuration", func(t *testing.T) {
		path := writeConfig(t, map[string]any{
			"server": map[string]any{"port": 70000},
		})

		_, err := execute(t, "serve", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("should refuse to start twice", func(t *testing.T) {
		dataDir := t.TempDir()
		path := writeConfig(t, map[string]any{
			"data_dir": dataDir,
			"paths":    map[string]any{"base_dir": t.TempDir()},
		})
		pidFile := daemon.PIDFile(dataDir)
		require.NoError(t, os.MkdirAll(filepath.Dir(pidFile), 0o755))
		require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0o644))

		_, err := execute(t, "serve", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already running")
	})
}
