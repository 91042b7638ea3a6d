//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// unix.FdSet's Bits field is a fixed-size array whose element width differs
// by platform (int64 words on Linux, int32 on the BSDs/Darwin). Addressing
// it byte-wise via unsafe sidesteps that without needing a build file per
// platform — the same trick manual fd_set users reach for in the absence of
// FD_SET/FD_ISSET wrappers in golang.org/x/sys/unix.
const fdSetBytes = unsafe.Sizeof(unix.FdSet{})

func fdZero(set *unix.FdSet) {
	*set = unix.FdSet{}
}

func fdSetBit(fd int, set *unix.FdSet) {
	bytes := (*[fdSetBytes]byte)(unsafe.Pointer(set))
	bytes[fd/8] |= 1 << uint(fd%8)
}

func fdIsSet(fd int, set *unix.FdSet) bool {
	bytes := (*[fdSetBytes]byte)(unsafe.Pointer(set))
	return bytes[fd/8]&(1<<uint(fd%8)) != 0
}
