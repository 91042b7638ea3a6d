//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import "golang.org/x/sys/unix"

const maxDatagramSize = 65536

// newPeerTask builds the §4.4 peer datagram task: pinned to peer_sock, it
// reads one datagram per invocation, resolves the sender to a Name (dropping
// silently on an unconfigured sender per §6.2/§7), decodes it, and invokes
// OnPeer.
func newPeerTask[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], fd int) *Task[S] {
	t := &Task[S]{
		FD:       fd,
		Kind:     KindPeer,
		SelectOn: true,
	}

	buf := make([]byte, maxDatagramSize)

	t.processRead = func(state S) taskResult[S] {
		n, from, err := unix.Recvfrom(fd, buf, 0)
		if err != nil {
			env.Log.Warnf("peer recv: %v", err)
			return taskResult[S]{state: state}
		}

		addr := udpAddrFromSockaddr(from)
		if addr == nil {
			env.Log.Warnf("peer recv: unsupported sockaddr family")
			return taskResult[S]{state: state}
		}

		src, ok := env.nameOfAddr(addr)
		if !ok {
			if env.Arr.Debug() {
				env.Log.Debugf("dropping datagram from unconfigured sender %s", addr)
			}
			return taskResult[S]{state: state}
		}

		msg, err := env.Arr.DeserializeMsg(buf[:n])
		if err != nil {
			env.Log.Warnf("peer recv from %q: deserialize: %v", src, err)
			return taskResult[S]{state: state}
		}

		if env.Arr.Debug() {
			env.Arr.DebugRecv(env.Me, src, msg)
		}

		result := env.Arr.OnPeer(env.Me, src, msg, state)
		return taskResult[S]{state: dispatch[S, I, O, M, C](env, result)}
	}

	t.finalizeFunc = func(state S) S {
		env.closeFD(fd)
		env.Log.Infof("peer socket closed")
		return state
	}

	return t
}
