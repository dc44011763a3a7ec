package failover

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testLogger struct {
	t *testing.T
}

func newTestLogger(t *testing.T) Logger {
	return &testLogger{t: t}
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.t.Logf("DEBUG: "+format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.t.Logf("INFO: "+format, args...) }
func (l *testLogger) Warnf(format string, args ...interface{})  { l.t.Logf("WARN: "+format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.t.Logf("ERROR: "+format, args...) }

// fakeSink records delivered records and fails the first failFirst attempts.
type fakeSink struct {
	mu        sync.Mutex
	failFirst int
	failAll   bool
	attempts  int
	delivered []Record
}

func (s *fakeSink) SendRecord(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.failAll || s.attempts <= s.failFirst {
		return errors.New("connection refused")
	}
	s.delivered = append(s.delivered, r)
	return nil
}

func (s *fakeSink) records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.delivered...)
}

type fakeNotifier struct {
	mu      sync.Mutex
	signals []Signal
}

func (n *fakeNotifier) SendSignal(s Signal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signals = append(n.signals, s)
	return nil
}

func (n *fakeNotifier) sent() []Signal {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Signal(nil), n.signals...)
}

// fakeStandby captures the start value of each activation and blocks until cancelled.
type fakeStandby struct {
	mu     sync.Mutex
	starts []uint64
	roles  []Role
}

func (f *fakeStandby) Resume(ctx context.Context, role Role, start uint64) error {
	f.mu.Lock()
	f.starts = append(f.starts, start)
	f.roles = append(f.roles, role)
	f.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeStandby) runs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.starts...)
}

type promotion struct {
	start  uint64
	reason PromotionReason
	at     time.Time
}

type fakeObserver struct {
	mu         sync.Mutex
	states     []State
	promotions []promotion
}

func (o *fakeObserver) StateChanged(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, s)
}

func (o *fakeObserver) Promoted(start uint64, reason PromotionReason) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.promotions = append(o.promotions, promotion{start: start, reason: reason, at: time.Now()})
}

func (o *fakeObserver) promoted() []promotion {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]promotion(nil), o.promotions...)
}

// countingMetrics counts the events the monitor reports.
type countingMetrics struct {
	NopMetrics

	mu         sync.Mutex
	malformed  int
	stale      int
	retries    int
	sent       int
	promotions map[PromotionReason]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{promotions: map[PromotionReason]int{}}
}

func (c *countingMetrics) RecordMalformedSignal() { c.mu.Lock(); c.malformed++; c.mu.Unlock() }
func (c *countingMetrics) RecordStaleSignal()     { c.mu.Lock(); c.stale++; c.mu.Unlock() }
func (c *countingMetrics) RecordSendRetry(Role)   { c.mu.Lock(); c.retries++; c.mu.Unlock() }
func (c *countingMetrics) RecordSent(Role)        { c.mu.Lock(); c.sent++; c.mu.Unlock() }
func (c *countingMetrics) RecordPromotion(r PromotionReason) {
	c.mu.Lock()
	c.promotions[r]++
	c.mu.Unlock()
}
