package transport

import "github.com/adamgarcia4/goLearning/standby/failover"

// Option customises a transport endpoint.
type Option func(*options)

type options struct {
	logger failover.Logger
}

// WithLogger sets the endpoint logger.
func WithLogger(l failover.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: nopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
