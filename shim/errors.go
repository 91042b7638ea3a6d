package shim

import (
	"errors"
	"fmt"
)

// Disconnect is raised by the framing codec and the client-read task when a
// client connection can no longer be trusted: a short read, a decode
// failure, or a clean peer close. It always carries the owning fd so the
// caller can attribute the failure to a task without a second lookup.
type Disconnect struct {
	FD      int
	Message string
}

func (d *Disconnect) Error() string {
	return fmt.Sprintf("disconnect fd=%d: %s", d.FD, d.Message)
}

func newDisconnect(fd int, format string, args ...interface{}) *Disconnect {
	return &Disconnect{FD: fd, Message: fmt.Sprintf(format, args...)}
}

// IsDisconnect reports whether err is (or wraps) a *Disconnect.
func IsDisconnect(err error) bool {
	var d *Disconnect
	return errors.As(err, &d)
}
