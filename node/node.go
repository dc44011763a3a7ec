package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/adamgarcia4/goLearning/standby/failover"
	"github.com/adamgarcia4/goLearning/standby/logger"
	"github.com/adamgarcia4/goLearning/standby/metrics"
	"github.com/adamgarcia4/goLearning/standby/transport"
)

// Sink receives every record accepted by a Receiver.
type Sink interface {
	Accept(r failover.Record)
}

// LogSink prints each record through the logger.
type LogSink struct {
	logger failover.Logger
}

// NewLogSink creates a sink writing to l.
func NewLogSink(l failover.Logger) *LogSink {
	return &LogSink{logger: l}
}

// Accept logs r.
func (s *LogSink) Accept(r failover.Record) {
	s.logger.Infof("record count=%d app_id=%s node_id=%s", r.Count, r.AppID, r.NodeID)
}

// Node runs one mode of the failover system.
type Node struct {
	config    *Config
	mode      Mode
	log       *logger.Component
	sink      Sink
	registry  *prometheus.Registry
	collector *metrics.Collector
	observers []failover.Observer

	ready     chan struct{}
	readyOnce sync.Once

	mu         sync.RWMutex
	monitor    *failover.Monitor
	statusAddr string
	listenAddr string
}

// Option customises a Node.
type Option func(*Node)

// WithSink replaces the default log sink of a Receiver.
func WithSink(s Sink) Option {
	return func(n *Node) {
		if s != nil {
			n.sink = s
		}
	}
}

// WithObserver registers an observer on a Failover node's monitor.
func WithObserver(o failover.Observer) Option {
	return func(n *Node) {
		if o != nil {
			n.observers = append(n.observers, o)
		}
	}
}

// WithRegistry sets the Prometheus registry the node's metrics are registered with.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(n *Node) {
		if reg != nil {
			n.registry = reg
		}
	}
}

// New creates a node for mode with the given configuration
func New(config *Config, mode Mode, opts ...Option) (*Node, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	n := &Node{
		config: config,
		mode:   mode,
		log:    logger.For(string(mode)),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.sink == nil {
		n.sink = NewLogSink(n.log)
	}
	if n.registry == nil {
		n.registry = prometheus.NewRegistry()
		n.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	collector, err := metrics.NewCollector(n.registry, "")
	if err != nil {
		return nil, err
	}
	n.collector = collector
	return n, nil
}

// Ready is closed once the node's endpoints are bound or its clients resolved.
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// Monitor returns the running monitor of a Failover node, nil otherwise.
func (n *Node) Monitor() *failover.Monitor {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.monitor
}

// StatusAddr returns the bound gRPC status address of a Failover node, if enabled.
func (n *Node) StatusAddr() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.statusAddr
}

// ListenAddr returns the bound address of a Receiver or Failover node.
func (n *Node) ListenAddr() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.listenAddr
}

// Run runs the node until ctx is cancelled. Bind and address errors are
// returned before anything is served.
func (n *Node) Run(ctx context.Context) error {
	if addr := n.config.Metrics.Addr(n.mode); addr != "" {
		srv := metrics.NewServer(addr, n.registry, logger.For("metrics"))
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			if err := srv.Shutdown(); err != nil {
				n.log.Warnf("metrics shutdown: %v", err)
			}
		}()
	}

	switch n.mode {
	case ModeSender:
		return n.runSender(ctx)
	case ModeFailover:
		return n.runFailover(ctx)
	default:
		return n.runReceiver(ctx)
	}
}

func (n *Node) runSender(ctx context.Context) error {
	records, err := transport.NewRecordClient(n.config.Receiver.String(), n.config.Sender.DialTimeout)
	if err != nil {
		return fmt.Errorf("receiver address: %w", err)
	}
	liveness, err := transport.NewLivenessClient(n.config.Failover.String())
	if err != nil {
		return fmt.Errorf("failover address: %w", err)
	}
	defer liveness.Close()

	producer, err := failover.NewProducer(n.config.ProducerConfig(), failover.NewCounter(0), records, liveness,
		failover.WithProducerLogger(n.log),
		failover.WithProducerMetrics(n.collector),
	)
	if err != nil {
		return err
	}

	n.markReady()
	n.log.Infof("sending to %s, heartbeats to %s", n.config.Receiver, n.config.Failover)
	return producer.Run(ctx, failover.RoleMaster)
}

func (n *Node) runFailover(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener, err := transport.ListenLiveness(n.config.Failover.String(), transport.WithLogger(n.log))
	if err != nil {
		return err
	}
	defer listener.Close()

	records, err := transport.NewRecordClient(n.config.Receiver.String(), n.config.Sender.DialTimeout)
	if err != nil {
		return fmt.Errorf("receiver address: %w", err)
	}

	counter := failover.NewCounter(0)
	standbyLog := logger.For("standby")

	// The standby reports to this monitor directly, so its heartbeats are
	// applied before it increments the counter.
	var monitor *failover.Monitor
	standby := failover.StandbyFunc(func(ctx context.Context, role failover.Role, start uint64) error {
		producer, err := failover.NewProducer(n.config.ProducerConfig(), counter, records, monitor.Notifier(ctx),
			failover.WithProducerLogger(standbyLog),
			failover.WithProducerMetrics(n.collector),
		)
		if err != nil {
			return err
		}
		return producer.Resume(ctx, role, start)
	})

	opts := []failover.MonitorOption{
		failover.WithMonitorLogger(n.log),
		failover.WithMonitorMetrics(n.collector),
	}
	for _, o := range n.observers {
		opts = append(opts, failover.WithObserver(o))
	}

	var status *transport.StatusServer
	if addr := n.config.Monitor.StatusAddr; addr != "" {
		status, err = transport.NewStatusServer(addr, transport.WithLogger(logger.For("status")))
		if err != nil {
			return err
		}
		if err := status.Start(); err != nil {
			return err
		}
		defer status.Stop()
		opts = append(opts, failover.WithObserver(status))
	}

	monitor, err = failover.NewMonitor(n.config.MonitorConfig(), counter, standby, opts...)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.monitor = monitor
	n.listenAddr = listener.Addr().String()
	if status != nil {
		n.statusAddr = status.Addr()
	}
	n.mu.Unlock()
	n.markReady()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		monitor.RunSweeps(ctx)
	}()

	err = listener.Serve(ctx, monitor.HandleMessage)
	cancel()
	<-sweepDone
	monitor.Wait()
	return err
}

func (n *Node) runReceiver(ctx context.Context) error {
	srv, err := transport.ListenRecords(n.config.Receiver.String(), transport.WithLogger(n.log))
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.listenAddr = srv.Addr().String()
	n.mu.Unlock()
	n.markReady()

	return srv.Serve(ctx, n.sink.Accept)
}

func (n *Node) markReady() {
	n.readyOnce.Do(func() { close(n.ready) })
}
