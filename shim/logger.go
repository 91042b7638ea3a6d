package shim

// Logger is the leveled logging contract the CORE depends on. It is
// satisfied by internal/logging's logrus-backed implementation, but the
// CORE never imports logrus itself — it only knows this interface, the way
// go-mcast's core package only knows types.Logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// nopLogger discards everything; used when a caller builds an Environment
// without supplying a Logger (mainly in tests).
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Fatalf(string, ...interface{}) {}
