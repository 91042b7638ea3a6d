//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// socketpair returns two connected, blocking AF_UNIX stream fds, closed
// automatically at test cleanup.
func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestSendReceiveChunkRoundTrip(t *testing.T) {
	a, b := socketpair(t)

	payload := []byte("hello from the other side")
	require.NoError(t, sendChunk(a, payload))

	got, err := receiveChunk(b)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestSendReceiveChunkEmptyPayload(t *testing.T) {
	a, b := socketpair(t)

	require.NoError(t, sendChunk(a, nil))

	got, err := receiveChunk(b)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSendChunkRejectsOversizedPayload(t *testing.T) {
	a, _ := socketpair(t)

	oversized := make([]byte, maxChunkSize+1)
	err := sendChunk(a, oversized)
	require.Error(t, err)
	require.True(t, IsDisconnect(err))
}

func TestReceiveChunkOnClosedConnection(t *testing.T) {
	a, b := socketpair(t)
	unix.Close(a)

	_, err := receiveChunk(b)
	require.Error(t, err)
	require.True(t, IsDisconnect(err))
}

// TestReceiveChunkRejectsOversizedHeader exercises the length-guard branch
// directly: a header claiming more than maxChunkSize bytes is a framing
// violation, not an allocation attempt.
func TestReceiveChunkRejectsOversizedHeader(t *testing.T) {
	a, b := socketpair(t)

	header := []byte{0x7f, 0xff, 0xff, 0xff} // far beyond maxChunkSize
	require.NoError(t, writeAll(a, header))

	_, err := receiveChunk(b)
	require.Error(t, err)
	require.True(t, IsDisconnect(err))
}
