//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestFdSetBitAndIsSet(t *testing.T) {
	var set unix.FdSet
	fdZero(&set)

	require.False(t, fdIsSet(3, &set))
	require.False(t, fdIsSet(70, &set))

	fdSetBit(3, &set)
	fdSetBit(70, &set) // exercises a byte beyond the first platform word

	require.True(t, fdIsSet(3, &set))
	require.True(t, fdIsSet(70, &set))
	require.False(t, fdIsSet(4, &set))
}
