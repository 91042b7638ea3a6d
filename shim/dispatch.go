//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import "golang.org/x/sys/unix"

// dispatch implements §4.7: it flushes a handler result's outputs to the
// client fds bound to their ClientIds, transmits the peer sends as
// datagrams, and returns the new state. This is the single choke point
// every handler invocation (client input, peer message, timer fire) passes
// its Result through.
func dispatch[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], result Result[S, O, M]) S {
	for _, out := range result.Outputs {
		dispatchOutput(env, out)
	}
	for _, send := range result.PeerSends {
		dispatchPeerSend(env, send)
	}
	return result.State
}

func dispatchOutput[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], out O) {
	id, payload, err := env.Arr.SerializeOutput(out)
	if err != nil {
		env.Log.Errorf("serialize output: %v", err)
		return
	}

	fd, ok := env.clientFD(id)
	if !ok {
		env.Log.Warnf("output for unknown client id, dropping")
		return
	}

	if env.Arr.Debug() {
		env.Log.Debugf("sending %d bytes to client fd=%d", len(payload), fd)
	}

	if err := sendChunk(fd, payload); err != nil {
		env.Log.Warnf("send to client fd=%d failed, scheduling teardown: %v", fd, err)
		if task, ok := env.tasks[fd]; ok {
			task.scheduleFinalize()
		}
	}
}

func dispatchPeerSend[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], send PeerSend[M]) {
	addr, ok := env.addrOfPeer(send.Dest)
	if !ok {
		env.Log.Warnf("peer send to unconfigured destination %q, dropping", send.Dest)
		return
	}

	payload, err := env.Arr.SerializeMsg(send.Msg)
	if err != nil {
		env.Log.Errorf("serialize peer message to %q: %v", send.Dest, err)
		return
	}

	if env.Arr.Debug() {
		env.Arr.DebugSend(env.Me, send.Dest, send.Msg)
	}

	if err := unix.Sendto(env.peerFD, payload, 0, sockaddrFromUDPAddr(addr)); err != nil {
		env.Log.Warnf("sendto %q (%s) failed, dropping: %v", send.Dest, addr, err)
	}
}
