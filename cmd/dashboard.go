package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/adamgarcia4/goLearning/standby/failover"
	"github.com/adamgarcia4/goLearning/standby/logger"
	"github.com/adamgarcia4/goLearning/standby/node"
	"github.com/adamgarcia4/goLearning/standby/transport"
)

const (
	logLines      = 15
	maxLogScroll  = 100
	watchRetry    = time.Second
	refreshPeriod = time.Second
)

var dashboardTarget string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Watch a running failover monitor",
	Long: `Show the live state of a failover monitor through its gRPC status endpoint
(monitor.status_addr in the config).

Keyboard shortcuts:
  ↑/↓     - Scroll logs
  Q       - Quit

Examples:
  standby dashboard --target 127.0.0.1:9100`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashboardTarget, "target", "t", "127.0.0.1:9100", "Status address of the monitor")
}

type tickMsg struct{}

type statusMsg struct {
	service string
	status  transport.ServingStatus
}

type watchErrMsg struct {
	err error
}

type commandDoneMsg struct {
	err error
}

type shutdownCompleteMsg struct {
	err error
}

type model struct {
	title   string
	target  string
	manager *node.Manager // nil when watching a remote monitor

	ctx     context.Context
	cancel  context.CancelFunc
	updates <-chan tea.Msg

	liveness     transport.ServingStatus
	standby      transport.ServingStatus
	running      []node.Mode
	snapshot     failover.Snapshot
	haveSnapshot bool

	err       error
	logBuffer *logger.LogBuffer
	logScroll int
	width     int
	height    int
}

// initBufferedLogger sends all logging to the global log buffer; stdout
// belongs to the TUI.
func initBufferedLogger(cfg *node.Config) (*logger.LogBuffer, error) {
	logBuffer := logger.GetGlobalLogBuffer()
	logger.Init("", false)
	if err := logger.AddOutput(logger.NewLogBufferWriter(logBuffer)); err != nil {
		return nil, err
	}
	return logBuffer, applyLogLevel(cfg)
}

// newModel starts watching the status services of the monitor behind client.
func newModel(title, target string, client *transport.StatusClient, manager *node.Manager, logBuffer *logger.LogBuffer) model {
	ctx, cancel := context.WithCancel(context.Background())
	return model{
		title:     title,
		target:    target,
		manager:   manager,
		ctx:       ctx,
		cancel:    cancel,
		updates:   watchStatus(ctx, client, transport.LivenessService, transport.StandbyService),
		logBuffer: logBuffer,
	}
}

// watchStatus streams statusMsg and watchErrMsg values for services,
// re-establishing each watch until ctx is cancelled.
func watchStatus(ctx context.Context, client *transport.StatusClient, services ...string) <-chan tea.Msg {
	ch := make(chan tea.Msg, 16)
	send := func(msg tea.Msg) {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}

	log := logger.For("dashboard")
	for _, svc := range services {
		go func() {
			for ctx.Err() == nil {
				err := client.Watch(ctx, svc, func(st transport.ServingStatus) {
					log.Debugf("%s is %s", svc, st)
					send(statusMsg{service: svc, status: st})
				})
				if err != nil {
					send(watchErrMsg{err: err})
				}
				select {
				case <-ctx.Done():
				case <-time.After(watchRetry):
				}
			}
		}()
	}
	return ch
}

func waitForStatus(ctx context.Context, updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-updates:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshPeriod, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForStatus(m.ctx, m.updates))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case statusMsg:
		switch msg.service {
		case transport.LivenessService:
			m.liveness = msg.status
		case transport.StandbyService:
			m.standby = msg.status
		}
		m.err = nil
		return m, waitForStatus(m.ctx, m.updates)

	case watchErrMsg:
		m.err = msg.err
		m.liveness = healthpb.HealthCheckResponse_UNKNOWN
		return m, waitForStatus(m.ctx, m.updates)

	case commandDoneMsg:
		m.err = msg.err
		m.refresh()
		return m, nil

	case shutdownCompleteMsg:
		if msg.err != nil {
			logger.Errorf("Error stopping nodes during shutdown: %v", msg.err)
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		if m.manager == nil {
			return m, tea.Quit
		}
		return m, shutdownCluster(m.manager)

	case "k", "K":
		return m, m.killSender()

	case "up":
		// Scroll logs up (show older logs)
		maxScroll := m.logBuffer.Len() - logLines
		if maxScroll > maxLogScroll {
			maxScroll = maxLogScroll
		}
		if m.logScroll < maxScroll {
			m.logScroll++
		}
		return m, nil

	case "down":
		if m.logScroll > 0 {
			m.logScroll--
		}
		return m, nil
	}
	return m, nil
}

// killSender interrupts the local sender, which reports fail:<count> and
// hands over to the standby at once.
func (m model) killSender() tea.Cmd {
	manager := m.manager
	if manager == nil {
		return nil
	}
	return func() tea.Msg {
		return commandDoneMsg{err: manager.Stop(node.ModeSender)}
	}
}

func shutdownCluster(manager *node.Manager) tea.Cmd {
	return func() tea.Msg {
		return shutdownCompleteMsg{err: manager.StopAll()}
	}
}

// refresh reads in-process state when the cluster is local.
func (m *model) refresh() {
	if m.manager == nil {
		return
	}
	m.running = m.manager.Running()
	if f := m.manager.Get(node.ModeFailover); f != nil && f.Monitor() != nil {
		m.snapshot = f.Monitor().Snapshot()
		m.haveSnapshot = true
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(1, 2)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func livenessLabel(st transport.ServingStatus) string {
	switch st {
	case healthpb.HealthCheckResponse_SERVING:
		return okStyle.Render(failover.StateHealthy.String())
	case healthpb.HealthCheckResponse_NOT_SERVING:
		return warnStyle.Render(failover.StateArmed.String())
	default:
		return dimStyle.Render("UNKNOWN")
	}
}

func standbyLabel(st transport.ServingStatus) string {
	switch st {
	case healthpb.HealthCheckResponse_SERVING:
		return warnStyle.Render("PROMOTED")
	case healthpb.HealthCheckResponse_NOT_SERVING:
		return okStyle.Render("standing by")
	default:
		return dimStyle.Render("UNKNOWN")
	}
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	fmt.Fprintf(&s, "  Monitor:   %s\n", m.target)
	fmt.Fprintf(&s, "  Liveness:  %s\n", livenessLabel(m.liveness))
	fmt.Fprintf(&s, "  Standby:   %s\n", standbyLabel(m.standby))

	if m.haveSnapshot {
		fmt.Fprintf(&s, "  Counter:   %d\n", m.snapshot.Counter)
		if !m.snapshot.LastSignalAt.IsZero() {
			fmt.Fprintf(&s, "  Last seen: %s (%s ago)\n", m.snapshot.LastSignal,
				time.Since(m.snapshot.LastSignalAt).Truncate(time.Millisecond))
		}
	}

	if m.manager != nil {
		s.WriteString("\nRunning Nodes:\n\n")
		if len(m.running) == 0 {
			s.WriteString("  (none)\n")
		}
		for i, mode := range m.running {
			fmt.Fprintf(&s, "  [%d]   %s\n", i+1, mode)
		}
	}
	s.WriteString("\n")

	s.WriteString(m.renderLogs())
	s.WriteString("\n\n")

	instructionsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		PaddingTop(1)

	var help string
	if m.manager != nil {
		help = "Press K to kill the sender | "
	}
	help += "↑/↓ to scroll logs | Q to quit"
	s.WriteString(instructionsStyle.Render(help))

	return s.String()
}

// renderLogs shows the newest entries first; line 0 is the most recent.
func (m model) renderLogs() string {
	entries := m.logBuffer.GetAll()
	total := len(entries)

	var lines []string
	if total == 0 {
		lines = []string{"     | (no logs yet)"}
	} else {
		end := total - m.logScroll
		if end < 0 {
			end = 0
		}
		start := end - logLines
		if start < 0 {
			start = 0
		}
		for i := end - 1; i >= start; i-- {
			lines = append(lines, fmt.Sprintf("%4d | %s", total-1-i, logger.FormatLogEntry(entries[i])))
		}
	}

	boxWidth := 100
	if m.width > 0 {
		boxWidth = m.width - 4
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Height(logLines - 2).
		Width(boxWidth)

	return logStyle.Render("Logs:\n" + strings.Join(lines, "\n"))
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logBuffer, err := initBufferedLogger(cfg)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("target") && cfg.Monitor.StatusAddr != "" {
		dashboardTarget = cfg.Monitor.StatusAddr
	}

	client, err := transport.NewStatusClient(dashboardTarget)
	if err != nil {
		return err
	}
	defer client.Close()

	p := tea.NewProgram(newModel("Failover Monitor", dashboardTarget, client, nil, logBuffer))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
