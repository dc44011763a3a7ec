// Package metrics exposes failover events to Prometheus.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/adamgarcia4/goLearning/standby/failover"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "standby"

// Collector implements failover.Metrics backed by Prometheus.
type Collector struct {
	signals    *prometheus.CounterVec
	malformed  prometheus.Counter
	stale      prometheus.Counter
	armed      prometheus.Gauge
	promotions *prometheus.CounterVec
	counter    prometheus.Gauge
	sent       *prometheus.CounterVec
	retries    *prometheus.CounterVec
}

var _ failover.Metrics = (*Collector)(nil)

// NewCollector creates the failover metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer; an empty namespace uses DefaultNamespace.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "signals_total",
			Help:      "Liveness signals accepted by the monitor, by status.",
		}, []string{"status"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "malformed_signals_total",
			Help:      "Liveness datagrams discarded because they could not be parsed.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "stale_signals_total",
			Help:      "Liveness signals rejected for carrying an older count.",
		}),
		armed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "armed",
			Help:      "1 while the dead-man's switch is armed, 0 while healthy.",
		}),
		promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "promotions_total",
			Help:      "Standby promotions by reason (fail_signal, sweep_timeout).",
		}, []string{"reason"}),
		counter: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sequence_counter",
			Help:      "Last observed value of the shared sequence counter.",
		}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "producer",
			Name:      "records_sent_total",
			Help:      "Records delivered to the sink, by role.",
		}, []string{"role"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "producer",
			Name:      "send_retries_total",
			Help:      "Failed record deliveries that were retried, by role.",
		}, []string{"role"}),
	}

	for _, col := range []prometheus.Collector{
		c.signals, c.malformed, c.stale, c.armed, c.promotions, c.counter, c.sent, c.retries,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) RecordSignal(status failover.Status) {
	c.signals.WithLabelValues(string(status)).Inc()
}

func (c *Collector) RecordMalformedSignal() { c.malformed.Inc() }

func (c *Collector) RecordStaleSignal() { c.stale.Inc() }

func (c *Collector) SetMonitorState(state failover.State) {
	if state == failover.StateArmed {
		c.armed.Set(1)
		return
	}
	c.armed.Set(0)
}

func (c *Collector) RecordPromotion(reason failover.PromotionReason) {
	c.promotions.WithLabelValues(string(reason)).Inc()
}

func (c *Collector) SetCounter(value uint64) { c.counter.Set(float64(value)) }

func (c *Collector) RecordSent(role failover.Role) {
	c.sent.WithLabelValues(string(role)).Inc()
}

func (c *Collector) RecordSendRetry(role failover.Role) {
	c.retries.WithLabelValues(string(role)).Inc()
}
