package shim

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// PeerAddr is one entry of a Cluster Map: the host/port a peer's datagram
// socket is bound to.
type PeerAddr struct {
	Host string
	Port int
}

func (a PeerAddr) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// ClusterMap is the static, process-lifetime mapping from peer Name to
// datagram address. It is loaded externally (see internal/config) and
// handed to shim.Serve; the CORE never mutates it.
type ClusterMap map[Name]PeerAddr

// resolved is the runtime-resolved, bijective form of a ClusterMap: Name to
// *net.UDPAddr and back, used by the peer datagram task to map an inbound
// sender address to a Name (§4.4) and by the dispatcher to map an outbound
// Name to an address (§4.7).
type resolved struct {
	byName map[Name]*net.UDPAddr
	byAddr map[string]Name
}

func resolveCluster(cm ClusterMap) (*resolved, error) {
	r := &resolved{
		byName: make(map[Name]*net.UDPAddr, len(cm)),
		byAddr: make(map[string]Name, len(cm)),
	}
	for name, pa := range cm {
		addr, err := net.ResolveUDPAddr("udp", pa.String())
		if err != nil {
			return nil, errors.Wrapf(err, "resolve peer %q address %s", name, pa)
		}
		r.byName[name] = addr
		// Normalize through net.UDPAddr.String() so that a hostname in the
		// config (e.g. "localhost") keys by the same textual IP:port form we
		// later see on inbound datagrams' source address.
		r.byAddr[addr.String()] = name
	}
	return r, nil
}

func (r *resolved) addrOf(name Name) (*net.UDPAddr, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// nameOf resolves an inbound datagram's source address to a peer Name.
// Returns ok=false for unconfigured senders, which the peer task silently
// drops per §6.2.
func (r *resolved) nameOf(src *net.UDPAddr) (Name, bool) {
	n, ok := r.byAddr[src.String()]
	return n, ok
}
