package testutils

import (
	"github.com/tada/mqtt-codec/logger"
)

// The T interface is fulfilled by *testing.T but can be implemented by a T mock if needed.
type T interface {
	Helper()
	Log(...interface{})
}

// NewLogger creates a new Logger configured to log at the given level. The logger uses the given
// testing.T's Log function for all output.
func NewLogger(l logger.Level, t T) logger.Logger {
	return &testLogger{l: l, t: t}
}

type testLogger struct {
	l logger.Level
	t T
}

func (t *testLogger) DebugEnabled() bool {
	return t.l >= logger.Debug
}

func (t *testLogger) Debug(args ...interface{}) {
	t.log(logger.Debug, args)
}

func (t *testLogger) ErrorEnabled() bool {
	return t.l >= logger.Error
}

func (t *testLogger) Error(args ...interface{}) {
	t.log(logger.Error, args)
}

func (t *testLogger) InfoEnabled() bool {
	return t.l >= logger.Info
}

func (t *testLogger) Info(args ...interface{}) {
	t.log(logger.Info, args)
}

func (t *testLogger) log(l logger.Level, args []interface{}) {
	if t.l >= l {
		t.t.Helper()
		na := make([]interface{}, len(args)+1)
		na[0] = l.Tag()
		copy(na[1:], args)
		t.t.Log(na...)
	}
}
