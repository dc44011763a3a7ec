package transport

import "testing"

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debugf(format string, args ...interface{}) { l.t.Logf("DEBUG: "+format, args...) }
func (l testLogger) Infof(format string, args ...interface{})  { l.t.Logf("INFO: "+format, args...) }
func (l testLogger) Warnf(format string, args ...interface{})  { l.t.Logf("WARN: "+format, args...) }
func (l testLogger) Errorf(format string, args ...interface{}) { l.t.Logf("ERROR: "+format, args...) }
