//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

// newClientTask builds the §4.5 client-read task: pinned to one accepted
// client fd, it decodes exactly one framed request per invocation and
// invokes OnInput. A Disconnect (framing/IO error) or a decode failure
// finishes the task; finalize then unwinds both directions of the client
// map and closes the fd.
func newClientTask[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], fd int, id C) *Task[S] {
	uid := env.Arr.SerializeClientID(id)

	t := &Task[S]{
		FD:        fd,
		Kind:      KindClient,
		SelectOn:  true,
		ClientUID: uid,
	}

	t.processRead = func(state S) taskResult[S] {
		payload, err := receiveChunk(fd)
		if err != nil {
			env.Log.Warnf("client %s (fd=%d): %v", uid, fd, err)
			return taskResult[S]{finished: true, state: state}
		}

		input, ok := env.Arr.DeserializeInput(payload, id)
		if !ok {
			env.Log.Warnf("client %s (fd=%d): %v", uid, fd, newDisconnect(fd, "could not deserialize input"))
			return taskResult[S]{finished: true, state: state}
		}

		if env.Arr.Debug() {
			env.Arr.DebugInput(env.Me, input)
		}

		result := env.Arr.OnInput(env.Me, input, state)
		return taskResult[S]{state: dispatch[S, I, O, M, C](env, result)}
	}

	t.finalizeFunc = func(state S) S {
		env.Log.Infof("client %s (fd=%d) disconnected", uid, fd)
		env.unregisterClient(fd)
		env.closeFD(fd)
		return state
	}

	return t
}
