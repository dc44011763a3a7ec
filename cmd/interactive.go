package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/standby/node"
	"github.com/adamgarcia4/goLearning/standby/transport"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run a local Receiver, Failover and Sender with a live dashboard",
	Long: `Start all three modes in this process and watch the failover happen.

Keyboard shortcuts:
  K       - Kill the sender (it reports fail:<count> like on Ctrl-C and the
            standby takes over; promotion is one-way, so there is no restart)
  ↑/↓     - Scroll logs
  Q       - Quit

Examples:
  standby interactive
  standby interactive --config config.yaml`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Monitor.StatusAddr == "" {
		cfg.Monitor.StatusAddr = "127.0.0.1:0"
	}

	logBuffer, err := initBufferedLogger(cfg)
	if err != nil {
		return err
	}

	manager := node.NewManager(cfg)
	for _, mode := range node.Modes {
		if _, err := manager.Start(mode); err != nil {
			return errors.Join(err, manager.StopAll())
		}
	}

	target := manager.Get(node.ModeFailover).StatusAddr()
	client, err := transport.NewStatusClient(target)
	if err != nil {
		return errors.Join(err, manager.StopAll())
	}
	defer client.Close()

	p := tea.NewProgram(newModel("Standby Cluster", target, client, manager, logBuffer))
	if _, err := p.Run(); err != nil {
		return errors.Join(fmt.Errorf("interactive: %w", err), manager.StopAll())
	}
	return nil
}
