package failover

// Logger is the logging contract used by the Producer and the Monitor.
// logger.Component satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Metrics receives failover events. metrics.Collector implements it with Prometheus.
type Metrics interface {
	RecordSignal(status Status)
	RecordMalformedSignal()
	RecordStaleSignal()
	SetMonitorState(state State)
	RecordPromotion(reason PromotionReason)
	SetCounter(value uint64)
	RecordSent(role Role)
	RecordSendRetry(role Role)
}

// Observer is notified of Monitor transitions, outside the state lock.
type Observer interface {
	StateChanged(state State)
	Promoted(start uint64, reason PromotionReason)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// NopMetrics discards all events.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) RecordSignal(Status)             {}
func (NopMetrics) RecordMalformedSignal()          {}
func (NopMetrics) RecordStaleSignal()              {}
func (NopMetrics) SetMonitorState(State)           {}
func (NopMetrics) RecordPromotion(PromotionReason) {}
func (NopMetrics) SetCounter(uint64)               {}
func (NopMetrics) RecordSent(Role)                 {}
func (NopMetrics) RecordSendRetry(Role)            {}
