//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import (
	"net"

	"golang.org/x/sys/unix"
)

// udpAddrFromSockaddr converts the unix.Sockaddr returned by Recvfrom into
// the *net.UDPAddr form the cluster map resolver keys its reverse lookup by.
func udpAddrFromSockaddr(sa unix.Sockaddr) *net.UDPAddr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, a.Addr[:])
		return &net.UDPAddr{IP: ip, Port: a.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, a.Addr[:])
		return &net.UDPAddr{IP: ip, Port: a.Port}
	default:
		return nil
	}
}

// sockaddrFromUDPAddr converts a resolved cluster-map address into the form
// unix.Sendto expects.
func sockaddrFromUDPAddr(addr *net.UDPAddr) unix.Sockaddr {
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return sa
	}
	ip6 := addr.IP.To16()
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], ip6)
	return sa
}
