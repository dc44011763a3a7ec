package failover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultGapOffset is added to the counter when a sweep promotes the standby.
// It covers the cycles presumed lost while the switch was armed.
const DefaultGapOffset = 2

// Standby is the producer the Monitor activates on promotion. Resume starts
// producing as role from start, the counter value at the moment of promotion,
// and does not return until ctx is cancelled. *Producer implements it.
type Standby interface {
	Resume(ctx context.Context, role Role, start uint64) error
}

// StandbyFunc adapts an ordinary function to Standby.
type StandbyFunc func(ctx context.Context, role Role, start uint64) error

// Resume calls f(ctx, role, start).
func (f StandbyFunc) Resume(ctx context.Context, role Role, start uint64) error {
	return f(ctx, role, start)
}

// MonitorConfig holds the dead-man's-switch tuning.
type MonitorConfig struct {
	// SweepInterval is the period of the dead-man's-switch check,
	// normally twice the producer's send interval.
	SweepInterval time.Duration
	// GapOffset is added to the counter before a sweep-driven promotion.
	GapOffset uint64
	// RejectStaleSignals drops signals whose count is below the last accepted
	// count, and never moves the counter backwards. Off by default: the counter
	// follows the last received signal.
	RejectStaleSignals bool
}

// Snapshot is a point-in-time view of the Monitor.
type Snapshot struct {
	State        State
	Counter      uint64
	Promoted     bool
	LastSignal   Signal
	LastSignalAt time.Time
}

// Monitor decides when to promote the standby producer.
type Monitor struct {
	cfg      MonitorConfig
	counter  *Counter
	standby  Standby
	logger   Logger
	metrics  Metrics
	observer []Observer

	mu           sync.Mutex
	state        State
	lastAccepted uint64
	haveAccepted bool
	lastSignal   Signal
	lastSignalAt time.Time

	promoted  atomic.Bool
	standbyWG sync.WaitGroup

	// notifyMu orders observer callbacks so the last one always carries the
	// current state.
	notifyMu sync.Mutex
}

// MonitorOption customises a Monitor.
type MonitorOption func(*Monitor)

// WithMonitorLogger sets the monitor logger.
func WithMonitorLogger(l Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMonitorMetrics sets the monitor metrics collector.
func WithMonitorMetrics(mc Metrics) MonitorOption {
	return func(m *Monitor) {
		if mc != nil {
			m.metrics = mc
		}
	}
}

// WithObserver registers an observer of state changes and promotions.
func WithObserver(o Observer) MonitorOption {
	return func(m *Monitor) {
		if o != nil {
			m.observer = append(m.observer, o)
		}
	}
}

// NewMonitor builds a monitor in StateHealthy that promotes standby when the
// producer goes silent. The counter is the one standby produces from.
func NewMonitor(cfg MonitorConfig, counter *Counter, standby Standby, opts ...MonitorOption) (*Monitor, error) {
	if counter == nil {
		return nil, ErrCounterRequired
	}
	if standby == nil {
		return nil, ErrStandbyRequired
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("monitor: %w", ErrInvalidInterval)
	}

	m := &Monitor{
		cfg:     cfg,
		counter: counter,
		standby: standby,
		logger:  nopLogger{},
		metrics: NopMetrics{},
		state:   StateHealthy,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetMonitorState(StateHealthy)
	return m, nil
}

// HandleMessage parses one raw liveness datagram and applies it.
// Malformed input is logged and discarded; the returned error is informational.
func (m *Monitor) HandleMessage(ctx context.Context, raw []byte) error {
	sig, err := ParseSignal(raw)
	if err != nil {
		m.metrics.RecordMalformedSignal()
		m.logger.Warnf("discarding liveness message %q: %v", raw, err)
		return err
	}
	m.HandleSignal(ctx, sig)
	return nil
}

// HandleSignal applies a parsed liveness signal.
//
// The counter takes the signal's count. "fail" promotes the standby right away;
// "success" returns the switch to StateHealthy.
func (m *Monitor) HandleSignal(ctx context.Context, sig Signal) {
	m.metrics.RecordSignal(sig.Status)

	m.mu.Lock()
	if m.cfg.RejectStaleSignals && m.haveAccepted && sig.Count < m.lastAccepted {
		last := m.lastAccepted
		m.mu.Unlock()
		m.metrics.RecordStaleSignal()
		m.logger.Warnf("discarding stale signal %s, last accepted count %d", sig, last)
		return
	}
	m.lastAccepted, m.haveAccepted = sig.Count, true
	m.lastSignal, m.lastSignalAt = sig, time.Now()

	if m.cfg.RejectStaleSignals {
		m.counter.ObserveMax(sig.Count)
	} else {
		m.counter.Store(sig.Count)
	}

	current := m.counter.Load()

	changed := false
	if sig.Status == StatusSuccess && m.state != StateHealthy {
		m.state = StateHealthy
		changed = true
	}
	m.mu.Unlock()

	m.metrics.SetCounter(current)
	if changed {
		m.stateChanged()
	}

	if sig.Status == StatusFail {
		m.logger.Warnf("producer reported %s", sig)
		if !m.promoted.CompareAndSwap(false, true) {
			m.logger.Infof("standby already active, ignoring %s", ReasonFailSignal)
			return
		}
		m.activate(ctx, ReasonFailSignal, current)
	} else {
		m.logger.Debugf("heartbeat %s", sig)
	}
}

// Sweep runs one dead-man's-switch check: a HEALTHY monitor is armed, an
// ARMED monitor advances the counter by the gap offset and promotes the standby.
func (m *Monitor) Sweep(ctx context.Context) {
	m.mu.Lock()
	if m.state == StateHealthy {
		m.state = StateArmed
		m.mu.Unlock()
		m.stateChanged()
		return
	}

	var start uint64
	fire := m.promoted.CompareAndSwap(false, true)
	if fire {
		start = m.counter.Advance(m.cfg.GapOffset)
	}
	m.mu.Unlock()

	if !fire {
		m.logger.Warnf("no liveness signal from the promoted standby for a full sweep")
		return
	}

	m.logger.Warnf("no liveness signal for a full sweep, presuming producer dead")
	m.metrics.SetCounter(start)
	m.activate(ctx, ReasonSweepTimeout, start)
}

// RunSweeps calls Sweep every SweepInterval until ctx is cancelled.
func (m *Monitor) RunSweeps(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	m.logger.Infof("sweeping every %v (gap offset %d)", m.cfg.SweepInterval, m.cfg.GapOffset)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// State returns the current suspicion state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Promoted reports whether the standby has been activated.
func (m *Monitor) Promoted() bool {
	return m.promoted.Load()
}

// Snapshot returns the monitor's current view.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:        m.state,
		Counter:      m.counter.Load(),
		Promoted:     m.promoted.Load(),
		LastSignal:   m.lastSignal,
		LastSignalAt: m.lastSignalAt,
	}
}

// Wait blocks until a promoted standby has returned. It returns at once if
// there was no promotion.
func (m *Monitor) Wait() {
	m.standbyWG.Wait()
}

// Notifier returns a SignalSender that applies signals to m in-process.
// Each signal is handled before SendSignal returns.
func (m *Monitor) Notifier(ctx context.Context) SignalSender {
	return localNotifier{ctx: ctx, m: m}
}

type localNotifier struct {
	ctx context.Context
	m   *Monitor
}

func (n localNotifier) SendSignal(s Signal) error {
	n.m.HandleSignal(n.ctx, s)
	return nil
}

// activate starts the standby from start in its own goroutine. Callers must
// have won the promoted flag: there is a single standby and no demotion.
func (m *Monitor) activate(ctx context.Context, reason PromotionReason, start uint64) {
	m.logger.Warnf("promoting standby as %s from count %d (%s)", RoleSlave, start, reason)
	m.metrics.RecordPromotion(reason)
	for _, o := range m.observer {
		o.Promoted(start, reason)
	}

	m.standbyWG.Add(1)
	go func() {
		defer m.standbyWG.Done()
		if err := m.standby.Resume(ctx, RoleSlave, start); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Errorf("standby stopped: %v", err)
		}
	}()
}

func (m *Monitor) stateChanged() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	s := m.State()
	m.metrics.SetMonitorState(s)
	for _, o := range m.observer {
		o.StateChanged(s)
	}
}
