package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	if args == nil {
		// nil makes cobra fall back to os.Args
		args = []string{}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRoot_InvalidMode(t *testing.T) {
	out, err := execute(t, "Standby")
	require.NoError(t, err)
	require.Equal(t, "Invalid mode Standby\n", out)
}

func TestRoot_RequiresExactlyOneMode(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)

	_, err = execute(t, "Sender", "Receiver")
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("default path may be missing", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().StringVarP(&configPath, "config", "c", filepath.Join(dir, "absent.yaml"), "")
		cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "")

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:3000", cfg.Receiver.String())
		require.Equal(t, 2*time.Second, cfg.Monitor.SweepInterval)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "")
		cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "")
		require.NoError(t, cmd.Flags().Parse([]string{"--config", filepath.Join(dir, "absent.yaml")}))

		_, err := loadConfig(cmd)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("log level flag overrides file", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log: { level: warn }\n"), 0o600))

		cmd := &cobra.Command{}
		cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "")
		cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "")
		require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--log-level", "debug"}))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		require.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("invalid log level flag", func(t *testing.T) {
		cmd := &cobra.Command{}
		cmd.Flags().StringVarP(&configPath, "config", "c", filepath.Join(dir, "absent.yaml"), "")
		cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "")
		require.NoError(t, cmd.Flags().Parse([]string{"--log-level", "loud"}))

		_, err := loadConfig(cmd)
		require.Error(t, err)
	})
}
