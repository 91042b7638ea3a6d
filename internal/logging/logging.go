// Package logging adapts github.com/sirupsen/logrus to the shim.Logger
// interface, in the style of go-mcast's definition.DefaultLogger wrapping
// the standard library's *log.Logger: CORE code never sees logrus directly,
// only the small leveled contract it declares for itself.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nmota/reactorshim/shim"
)

// adapter satisfies shim.Logger over a *logrus.Logger.
type adapter struct {
	entry *logrus.Entry
}

// New returns a shim.Logger backed by logrus, text-formatted with
// timestamps and writing to stderr. debug raises the level to DebugLevel;
// otherwise the logger stays at InfoLevel.
func New(me shim.Name, debug bool) shim.Logger {
	base := logrus.New()
	base.Out = os.Stderr
	base.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	if debug {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.InfoLevel)
	}
	return &adapter{entry: base.WithField("node", string(me))}
}

func (a *adapter) Debugf(format string, args ...interface{}) { a.entry.Debugf(format, args...) }
func (a *adapter) Infof(format string, args ...interface{})  { a.entry.Infof(format, args...) }
func (a *adapter) Warnf(format string, args ...interface{})  { a.entry.Warnf(format, args...) }
func (a *adapter) Errorf(format string, args ...interface{}) { a.entry.Errorf(format, args...) }

// Fatalf logs at logrus's Error level (not logrus's own Fatalf, which calls
// os.Exit) and lets the caller decide how to terminate — shim.Run always
// re-panics immediately after logging Fatalf, and an os.Exit here would
// skip that panic's own cleanup/propagation.
func (a *adapter) Fatalf(format string, args ...interface{}) { a.entry.Errorf(format, args...) }
