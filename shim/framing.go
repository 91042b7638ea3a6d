//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

// Package shim's framing codec reads and writes length-prefixed chunks on
// raw client file descriptors accepted from a listener that dupRawFD took
// outside the Go runtime's netpoller — the same dup(2)-and-operate-on-the-
// raw-fd technique socket515-gaio's handlePending uses — so that this
// package's own single-threaded select(2) loop is the only thing driving
// readiness for those fds.
package shim

import (
	"encoding/binary"
	"io"
	"syscall"

	"golang.org/x/sys/unix"
)

const maxChunkSize = 1 << 20 // 1MiB; guards against a corrupt/hostile length header.

const chunkHeaderSize = 4

// dupRawFD duplicates the file descriptor backing conn and switches the
// duplicate to blocking mode; closing the original wrapper is left to the
// caller. Every subsequent operation on the socket goes through the
// returned raw fd via golang.org/x/sys/unix, never through conn again.
func dupRawFD(conn syscall.Conn) (int, error) {
	rc, err := conn.SyscallConn()
	if err != nil {
		return -1, err
	}

	var dupfd int
	var dupErr error
	ctrlErr := rc.Control(func(fd uintptr) {
		dupfd, dupErr = unix.Dup(int(fd))
	})
	if ctrlErr != nil {
		return -1, ctrlErr
	}
	if dupErr != nil {
		return -1, dupErr
	}

	if err := unix.SetNonblock(dupfd, false); err != nil {
		unix.Close(dupfd)
		return -1, err
	}
	return dupfd, nil
}

// sendChunk writes a 4-byte big-endian length header followed by exactly
// len(payload) bytes, retrying on partial writes until the full chunk is
// written or an IO error occurs (§9 open question, resolved in DESIGN.md:
// the client link is not assumed to be purely local, so a short write is
// not treated as fatal on its own).
func sendChunk(fd int, payload []byte) error {
	if len(payload) > maxChunkSize {
		return newDisconnect(fd, "chunk of %d bytes exceeds maximum %d", len(payload), maxChunkSize)
	}

	var header [chunkHeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if err := writeAll(fd, header[:]); err != nil {
		return newDisconnect(fd, "writing chunk header: %v", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if err := writeAll(fd, payload); err != nil {
		return newDisconnect(fd, "writing chunk payload: %v", err)
	}
	return nil
}

func writeAll(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := syscall.Write(fd, buf)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		buf = buf[n:]
	}
	return nil
}

// receiveChunk reads exactly one length header and exactly one payload read
// from fd. Per §4.1, each segment is a single read(2) call: a zero-length
// read signals a clean peer close, and any other short read is treated as a
// framing violation rather than retried — the unordered shim assumes a
// local/low-latency link for the read side (§9).
//
// The header read (readOnce) stays blocking: select(2) already guaranteed
// at least one byte is queued before process_read was invoked, and read(2)
// on a stream socket returns with whatever is currently queued rather than
// waiting for the rest — it cannot block further. The payload read has no
// such guarantee: a client that sends the 4-byte header and then stalls
// would otherwise leave this, the event loop's only thread, blocked
// indefinitely inside read(2), violating §5's "the only suspension point is
// the readiness wait." readPayload guards against exactly that by making
// the one payload read attempt non-blocking and treating "no data queued
// yet" the same as any other short read.
func receiveChunk(fd int) ([]byte, error) {
	header := make([]byte, chunkHeaderSize)
	if err := readOnce(fd, header); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > maxChunkSize {
		return nil, newDisconnect(fd, "chunk length %d exceeds maximum %d", length, maxChunkSize)
	}
	if length == 0 {
		return nil, nil
	}

	payload := make([]byte, length)
	if err := readPayload(fd, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// readOnce performs exactly one read(2) call (retrying only across EINTR,
// which delivered no data) and classifies the result per §4.1: a
// zero-length read is a clean peer close, and anything less than len(buf)
// is a framing violation — receive_chunk does not loop to fill buf across
// multiple reads.
func readOnce(fd int, buf []byte) error {
	var n int
	var err error
	for {
		n, err = syscall.Read(fd, buf)
		if err == syscall.EINTR {
			continue
		}
		break
	}
	if err != nil {
		return newDisconnect(fd, "reading: %v", err)
	}
	if n == 0 {
		return newDisconnect(fd, "closed connection")
	}
	if n < len(buf) {
		return newDisconnect(fd, "did not arrive all at once")
	}
	return nil
}

// readPayload is readOnce's counterpart for the payload segment: it flips
// fd to non-blocking for the duration of a single read(2) attempt so a
// client that has not yet sent the payload it promised in its length
// header cannot stall the event loop. No data queued (EAGAIN/EWOULDBLOCK)
// is treated as a short read, consistent with readOnce's "no retry to
// fill" semantics — the fix here is against blocking forever, not against
// genuinely partial delivery, which is still a Disconnect either way.
func readPayload(fd int, buf []byte) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return newDisconnect(fd, "setting payload read nonblocking: %v", err)
	}
	defer unix.SetNonblock(fd, false)

	var n int
	var err error
	for {
		n, err = syscall.Read(fd, buf)
		if err == syscall.EINTR {
			continue
		}
		break
	}
	if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
		return newDisconnect(fd, "payload did not arrive with the header")
	}
	if err != nil {
		return newDisconnect(fd, "reading payload: %v", err)
	}
	if n == 0 {
		return newDisconnect(fd, "closed connection")
	}
	if n < len(buf) {
		return newDisconnect(fd, "did not arrive all at once")
	}
	return nil
}
