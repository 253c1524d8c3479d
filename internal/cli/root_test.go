package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a gateway config into a temp dir and returns its path.
func writeConfig(t *testing.T, cfg map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	if _, ok := cfg["data_dir"]; !ok {
		cfg["data_dir"] = filepath.Join(dir, "data")
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "nanoboard.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// resetFlags clears the boolean flags cobra leaves set between Execute
// calls on the shared command tree.
func resetFlags(cmd *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "help" || f.Name == "version" {
				_ = f.Value.Set("false")
				f.Changed = false
			}
		})
	}
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := GetRootCmd()
	resetFlags(cmd)
	cmd.SetArgs(args)

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)

	err := cmd.Execute()
	return output.String(), err
}

func hasCommand(name string) bool {
	for _, c := range GetRootCmd().Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

func TestRootCommand(t *testing.T) {
	t.Run("should print the version", func(t *testing.T) {
		out, err := execute(t, "--version")
		require.NoError(t, err)

		assert.Contains(t, out, "nanoboard version")
		assert.Contains(t, out, GetVersion())
	})

	t.Run("should describe the gateway in help", func(t *testing.T) {
		out, err := execute(t, "--help")
		require.NoError(t, err)

		assert.Contains(t, out, "Nanoboard")
		assert.Contains(t, out, "nanobot directory")
	})

	t.Run("should expose global flags", func(t *testing.T) {
		cmd := GetRootCmd()

		configFlag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, configFlag)
		assert.Equal(t, "", configFlag.DefValue)

		logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
		require.NotNil(t, logLevelFlag)
		assert.Equal(t, "info", logLevelFlag.DefValue)
	})
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	assert.NotEmpty(t, version)
	assert.True(t, strings.HasPrefix(version, "0."))
}
