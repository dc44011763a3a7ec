package logger

import "fmt"

// Component is a logger bound to one part of the process ("monitor", "sender", ...).
// Every line it writes starts with "[name]" so LogBufferWriter can attribute it.
type Component struct {
	name string
}

// For returns a component logger.
func For(name string) *Component {
	return &Component{name: name}
}

func (c *Component) logf(level Level, format string, args ...interface{}) {
	Logf(level, "[%s] %s", c.name, fmt.Sprintf(format, args...))
}

func (c *Component) Debugf(format string, args ...interface{}) { c.logf(LevelDebug, format, args...) }
func (c *Component) Infof(format string, args ...interface{})  { c.logf(LevelInfo, format, args...) }
func (c *Component) Warnf(format string, args ...interface{})  { c.logf(LevelWarn, format, args...) }
func (c *Component) Errorf(format string, args ...interface{}) { c.logf(LevelError, format, args...) }
