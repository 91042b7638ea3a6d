//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

// Package shim is the CORE of a runtime that hosts a verified
// distributed-system arrangement (see Arrangement) on real hardware: a
// single-threaded, select(2)-driven reactor giving the arrangement
// peer-to-peer datagram messaging, client request/response streams, and
// periodic timer ticks, while preserving its one-input/one-transition
// semantics.
package shim

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Serve binds the local node's peer datagram socket and client listener per
// the given ClusterMap, wires up the arrangement's declared timeout tasks,
// and runs the event loop until ctx is cancelled or a fatal setup/runtime
// error occurs. It is the single entry point cmd/node uses to host an
// arrangement.
//
// onReady, if non-nil, is invoked exactly once with the bound peer and
// client addresses after both sockets are listening but before the event
// loop starts — chiefly so callers (and tests) that bind with clientPort=0
// can discover the OS-assigned port before connecting.
func Serve[S, I, O, M any, C comparable](
	ctx context.Context,
	me Name,
	clientPort int,
	cluster ClusterMap,
	arr Arrangement[S, I, O, M, C],
	log Logger,
	pollCap time.Duration,
	onReady func(clientAddr, peerAddr net.Addr),
) error {
	resolved, err := resolveCluster(cluster)
	if err != nil {
		return errors.Wrap(err, "resolve cluster map")
	}

	selfAddr, ok := resolved.addrOf(me)
	if !ok {
		return errors.Errorf("local name %q is not present in the cluster map", me)
	}

	peerFD, peerBound, err := bindPeerSocket(selfAddr)
	if err != nil {
		return errors.Wrapf(err, "bind peer socket %s", selfAddr)
	}

	listenFD, clientBound, err := bindClientListener(clientPort)
	if err != nil {
		unixCloseBestEffort(peerFD)
		return errors.Wrapf(err, "bind client listener on port %d", clientPort)
	}

	env := newEnv(me, arr, log, resolved)
	env.peerFD = peerFD
	env.listenFD = listenFD

	state := arr.Init(me)

	env.addTask(newListenerTask(env, listenFD))
	env.addTask(newPeerTask(env, peerFD))
	for _, spec := range arr.TimeoutTasks() {
		env.addTask(newTimerTask(env, spec, state))
	}

	env.Log.Infof("node %q serving: peer=%s client=%s", me, peerBound, clientBound)
	if onReady != nil {
		onReady(clientBound, peerBound)
	}
	return Run(ctx, env, state, pollCap)
}

// bindPeerSocket opens and duplicates the UDP socket backing the local
// node's datagram address, returning a raw fd the event loop drives
// directly (see framing.go's dupRawFD doc comment for why) along with the
// address actually bound.
func bindPeerSocket(addr *net.UDPAddr) (int, net.Addr, error) {
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return -1, nil, err
	}
	bound := conn.LocalAddr()
	fd, err := dupRawFD(conn)
	conn.Close()
	if err != nil {
		return -1, nil, err
	}
	return fd, bound, nil
}

// bindClientListener opens and duplicates the client-listener stream
// socket, returning the address actually bound (useful when port is 0).
func bindClientListener(port int) (int, net.Addr, error) {
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{Port: port})
	if err != nil {
		return -1, nil, err
	}
	bound := ln.Addr()
	fd, err := dupRawFD(ln)
	ln.Close()
	if err != nil {
		return -1, nil, err
	}
	return fd, bound, nil
}

func unixCloseBestEffort(fd int) {
	if fd >= 0 {
		_ = unix.Close(fd)
	}
}
