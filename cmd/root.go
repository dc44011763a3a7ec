package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/standby/logger"
	"github.com/adamgarcia4/goLearning/standby/node"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "standby <Sender|Failover|Receiver>",
	Short: "Primary/backup record sender with heartbeat failover",
	Long: `A sender streams sequenced records to a receiver while a failover monitor
watches its heartbeats. When the sender reports failure or falls silent for a
full sweep, the monitor promotes a standby sender that resumes the sequence.

Examples:
  standby Receiver
  standby Failover --config config.yaml
  standby Sender --log-level debug`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMode,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", node.DefaultConfigPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Minimum log level (debug, info, warn, error)")
}

func runMode(cmd *cobra.Command, args []string) error {
	mode, err := node.ParseMode(args[0])
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Invalid mode %s\n", args[0])
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Initialize logger for non-interactive mode (write to stdout)
	logger.Init("", true)
	if err := applyLogLevel(cfg); err != nil {
		return err
	}

	n, err := node.New(cfg, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", mode, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := n.Run(ctx); err != nil {
		logger.Errorf("%s stopped: %v", mode, err)
		return err
	}
	logger.Info("Shutting down...")
	return nil
}

// loadConfig reads --config. The default path may be absent, in which case
// the built-in defaults are used; an explicitly given path must exist.
func loadConfig(cmd *cobra.Command) (*node.Config, error) {
	cfg, err := node.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = node.DefaultConfig()
		cfg.Normalize()
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyLogLevel(cfg *node.Config) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	return logger.SetLevel(level)
}
