package failover

import (
	"context"
	"fmt"
	"time"
)

// RecordSender delivers one record to the sink. Implementations open a new
// connection per call; the producer never reuses connections.
type RecordSender interface {
	SendRecord(ctx context.Context, r Record) error
}

// SignalSender delivers one liveness signal to the Monitor. Delivery is best effort.
type SignalSender interface {
	SendSignal(s Signal) error
}

// ProducerConfig holds the producer's timing and identity.
type ProducerConfig struct {
	// AppID is stamped on every record. Defaults to DefaultAppID.
	AppID string
	// Interval is the pause between production cycles.
	Interval time.Duration
	// Retry controls the delay between failed sink deliveries.
	Retry Backoff
}

// Producer emits one Record per cycle from the shared Counter.
type Producer struct {
	cfg      ProducerConfig
	counter  *Counter
	sink     RecordSender
	notifier SignalSender
	logger   Logger
	metrics  Metrics
}

// ProducerOption customises a Producer.
type ProducerOption func(*Producer)

// WithProducerLogger sets the producer logger.
func WithProducerLogger(l Logger) ProducerOption {
	return func(p *Producer) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProducerMetrics sets the producer metrics collector.
func WithProducerMetrics(m Metrics) ProducerOption {
	return func(p *Producer) {
		if m != nil {
			p.metrics = m
		}
	}
}

var _ Standby = (*Producer)(nil)

// NewProducer builds a producer around the shared counter.
func NewProducer(cfg ProducerConfig, counter *Counter, sink RecordSender, notifier SignalSender, opts ...ProducerOption) (*Producer, error) {
	if counter == nil {
		return nil, ErrCounterRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if notifier == nil {
		return nil, ErrNotifierRequired
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("producer: %w", ErrInvalidInterval)
	}
	if cfg.AppID == "" {
		cfg.AppID = DefaultAppID
	}
	if cfg.Retry == (Backoff{}) {
		cfg.Retry = DefaultBackoff()
	}

	p := &Producer{
		cfg:      cfg,
		counter:  counter,
		sink:     sink,
		notifier: notifier,
		logger:   nopLogger{},
		metrics:  NopMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run produces records as role until ctx is cancelled.
//
// Each cycle: build a record from the counter, deliver it (retrying with
// backoff while the sink is unreachable), send "success:<count>", increment
// the counter, sleep one interval. On cancellation a single "fail:<count>" is
// sent before Run returns so the Monitor can promote without waiting for a sweep.
func (p *Producer) Run(ctx context.Context, role Role) error {
	p.logger.Infof("producing as %s from count %d every %v", role, p.counter.Load(), p.cfg.Interval)

	for {
		if ctx.Err() != nil {
			return p.shutdown(role)
		}

		count := p.counter.Load()
		rec := NewRecord(count, p.cfg.AppID, role)

		if err := p.deliver(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return p.shutdown(role)
			}
			return err
		}

		p.notify(Success(count))
		p.metrics.RecordSent(role)
		p.metrics.SetCounter(p.counter.Inc())

		select {
		case <-ctx.Done():
			return p.shutdown(role)
		case <-time.After(p.cfg.Interval):
		}
	}
}

// Resume seeds the shared counter with start and runs as role. It makes the
// producer usable as a Monitor's Standby.
func (p *Producer) Resume(ctx context.Context, role Role, start uint64) error {
	p.counter.Store(start)
	return p.Run(ctx, role)
}

// deliver sends rec until it succeeds or ctx is cancelled.
func (p *Producer) deliver(ctx context.Context, rec Record) error {
	var delay time.Duration
	for attempt := 1; ; attempt++ {
		err := p.sink.SendRecord(ctx, rec)
		if err == nil {
			if attempt > 1 {
				p.logger.Infof("record %d delivered after %d attempts", rec.Count, attempt)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay = p.cfg.Retry.Next(delay)
		p.metrics.RecordSendRetry(rec.Role())
		p.logger.Warnf("record %d delivery attempt %d failed, retrying in %v: %v", rec.Count, attempt, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (p *Producer) shutdown(role Role) error {
	count := p.counter.Load()
	p.logger.Infof("%s stopping, reporting fail:%d", role, count)
	p.notify(Fail(count))
	return nil
}

func (p *Producer) notify(s Signal) {
	if err := p.notifier.SendSignal(s); err != nil {
		p.logger.Warnf("liveness signal %s not sent: %v", s, err)
	}
}
