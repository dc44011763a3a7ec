package node

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamgarcia4/goLearning/standby/failover"
	"github.com/adamgarcia4/goLearning/standby/logger"
)

// Default configuration constants
const (
	DefaultConfigPath   = "config.yaml"
	DefaultIP           = "127.0.0.1"
	DefaultReceiverPort = "3000"
	DefaultFailoverPort = "3001"
	DefaultSendInterval = time.Second
	DefaultDialTimeout  = 2 * time.Second
)

// Addr is an endpoint given as separate ip and port.
type Addr struct {
	IP   string `yaml:"ip"`
	Port string `yaml:"port"`
}

// String renders "ip:port".
func (a Addr) String() string {
	return net.JoinHostPort(a.IP, a.Port)
}

func (a Addr) validate() error {
	if a.IP == "" {
		return ErrIPRequired
	}
	if a.Port == "" {
		return ErrPortRequired
	}
	if p, err := strconv.Atoi(a.Port); err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidPort, a.Port)
	}
	return nil
}

// Config holds the configuration shared by all three modes.
type Config struct {
	Receiver Addr          `yaml:"receiver"`
	Failover Addr          `yaml:"failover"`
	Sender   SenderConfig  `yaml:"sender"`
	Monitor  MonitorConfig `yaml:"monitor"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Log      LogConfig     `yaml:"log"`
}

// SenderConfig configures the primary and the promoted standby producer.
type SenderConfig struct {
	AppID       string        `yaml:"app_id"`
	Interval    time.Duration `yaml:"interval"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Retry       RetryConfig   `yaml:"retry"`
}

// RetryConfig is the backoff between failed record deliveries.
type RetryConfig struct {
	Base       time.Duration `yaml:"base"`
	Max        time.Duration `yaml:"max"`
	Multiplier float64       `yaml:"multiplier"`
}

// MonitorConfig configures the failover monitor.
type MonitorConfig struct {
	// SweepInterval defaults to twice the sender interval.
	SweepInterval      time.Duration `yaml:"sweep_interval"`
	GapOffset          uint64        `yaml:"gap_offset"`
	RejectStaleSignals bool          `yaml:"reject_stale_signals"`
	// StatusAddr enables the gRPC health endpoint when set.
	StatusAddr string `yaml:"status_addr"`
}

// MetricsConfig holds the Prometheus endpoint of each mode. An empty
// address disables the endpoint for that mode.
type MetricsConfig struct {
	Sender   string `yaml:"sender"`
	Failover string `yaml:"failover"`
	Receiver string `yaml:"receiver"`
}

// Addr returns the metrics address for mode.
func (c MetricsConfig) Addr(mode Mode) string {
	switch mode {
	case ModeSender:
		return c.Sender
	case ModeFailover:
		return c.Failover
	case ModeReceiver:
		return c.Receiver
	}
	return ""
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	backoff := failover.DefaultBackoff()
	return &Config{
		Receiver: Addr{IP: DefaultIP, Port: DefaultReceiverPort},
		Failover: Addr{IP: DefaultIP, Port: DefaultFailoverPort},
		Sender: SenderConfig{
			AppID:       failover.DefaultAppID,
			Interval:    DefaultSendInterval,
			DialTimeout: DefaultDialTimeout,
			Retry: RetryConfig{
				Base:       backoff.Base,
				Max:        backoff.Max,
				Multiplier: backoff.Multiplier,
			},
		},
		Monitor: MonitorConfig{GapOffset: failover.DefaultGapOffset},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are rejected.
// A missing file yields an error wrapping os.ErrNotExist.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize fills values derived from other settings.
func (c *Config) Normalize() {
	if c.Sender.AppID == "" {
		c.Sender.AppID = failover.DefaultAppID
	}
	if c.Sender.DialTimeout <= 0 {
		c.Sender.DialTimeout = DefaultDialTimeout
	}
	if c.Monitor.SweepInterval == 0 {
		c.Monitor.SweepInterval = 2 * c.Sender.Interval
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if err := c.Receiver.validate(); err != nil {
		return fmt.Errorf("receiver: %w", err)
	}
	if err := c.Failover.validate(); err != nil {
		return fmt.Errorf("failover: %w", err)
	}
	if c.Sender.Interval <= 0 {
		return fmt.Errorf("sender.interval: %w", ErrInvalidInterval)
	}
	if c.Monitor.SweepInterval <= 0 {
		return fmt.Errorf("monitor.sweep_interval: %w", ErrInvalidInterval)
	}
	if m := c.Sender.Retry.Multiplier; m != 0 && m < 1 {
		return fmt.Errorf("sender.retry: %w", ErrInvalidMultiplier)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ProducerConfig converts the sender settings.
func (c *Config) ProducerConfig() failover.ProducerConfig {
	return failover.ProducerConfig{
		AppID:    c.Sender.AppID,
		Interval: c.Sender.Interval,
		Retry: failover.Backoff{
			Base:       c.Sender.Retry.Base,
			Max:        c.Sender.Retry.Max,
			Multiplier: c.Sender.Retry.Multiplier,
		},
	}
}

// MonitorConfig converts the monitor settings.
func (c *Config) MonitorConfig() failover.MonitorConfig {
	return failover.MonitorConfig{
		SweepInterval:      c.Monitor.SweepInterval,
		GapOffset:          c.Monitor.GapOffset,
		RejectStaleSignals: c.Monitor.RejectStaleSignals,
	}
}
