//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import (
	"golang.org/x/sys/unix"
)

// newListenerTask builds the §4.3 acceptor: a task pinned to the
// client-listener fd that accepts exactly one connection per readiness
// invocation, mints a ClientId, records the fd<->id mapping, and spawns a
// client-read task for the new connection.
func newListenerTask[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], fd int) *Task[S] {
	t := &Task[S]{
		FD:       fd,
		Kind:     KindListener,
		SelectOn: true,
	}

	t.processRead = func(state S) taskResult[S] {
		newfd, _, err := unix.Accept(fd)
		if err != nil {
			env.Log.Warnf("accept: %v", err)
			return taskResult[S]{state: state}
		}
		if err := unix.SetNonblock(newfd, false); err != nil {
			env.Log.Warnf("accept fd=%d: set blocking: %v", newfd, err)
			_ = unix.Close(newfd)
			return taskResult[S]{state: state}
		}

		id := env.Arr.CreateClientID()
		env.registerClient(newfd, id)

		clientTask := newClientTask(env, newfd, id)
		env.Log.Infof("accepted client %s (fd=%d)", clientTask.ClientUID, newfd)
		return taskResult[S]{state: state, spawned: []*Task[S]{clientTask}}
	}

	t.finalizeFunc = func(state S) S {
		env.closeFD(fd)
		env.Log.Infof("listener closed")
		return state
	}

	return t
}
