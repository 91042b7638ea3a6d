// Package stub is the reference arrangement from spec.md §8: a trivial
// counter handler (State = int, Input = Incr, Output = Ack, Msg = Ping)
// whose sole purpose is to exercise shim's contract end to end for the
// S1–S6 scenario tests. It has no verification pedigree of its own — unlike
// a real arrangement it is written by hand, directly against the contract
// in shim/arrangement.go.
package stub

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nmota/reactorshim/shim"
)

// ClientID is the opaque per-connection identifier this arrangement mints:
// a simple monotonic counter, rendered as "client-<n>" for logging.
type ClientID uint64

func (id ClientID) String() string { return fmt.Sprintf("client-%d", uint64(id)) }

// incrMarker is the exact payload a client must send to produce a valid
// Incr input; anything else fails to decode, per S4.
const incrMarker = "INCR"

// pingMarker is the exact payload exchanged between peers for Ping.
const pingMarker = "PING"

// Incr is the one client request this arrangement understands: "increment
// my counter and tell me the new value." It carries the ClientID so
// OnInput can address the resulting Ack back to the right connection
// without the shim needing to know anything about ClientID's shape.
type Incr struct {
	Client ClientID
}

// Ack is the response to an Incr: the counter's new value, addressed to
// Client.
type Ack struct {
	Client ClientID
	Value  int
}

// Ping is the only peer message this arrangement exchanges: an empty
// heartbeat carrying no payload of its own.
type Ping struct{}

// Stub implements shim.Arrangement[int, Incr, Ack, Ping, ClientID]. State is
// simply the running counter value. It is safe for use by exactly one
// shim.Run invocation at a time (the contract shim itself imposes).
type Stub struct {
	debug      bool
	nextID     uint64
	timerDest  shim.Name
	timerEvery func(state int) time.Duration // recomputed against state each cycle; nil disables the timer
}

// New returns a Stub with no timer tasks configured (suitable for S1–S4
// and S6, which exercise only client input and peer delivery).
func New(debug bool) *Stub {
	return &Stub{debug: debug}
}

// NewWithTimer returns a Stub that additionally fires a Ping to dest every
// interval, for scenarios (S5) exercising the timeout task.
func NewWithTimer(debug bool, dest shim.Name, every func(state int) time.Duration) *Stub {
	return &Stub{debug: debug, timerDest: dest, timerEvery: every}
}

func (s *Stub) Init(me shim.Name) int {
	return 0
}

func (s *Stub) OnInput(me shim.Name, input Incr, state int) shim.Result[int, Ack, Ping] {
	next := state + 1
	return shim.Result[int, Ack, Ping]{
		Outputs: []Ack{{Client: input.Client, Value: next}},
		State:   next,
	}
}

// OnPeer has no side effect on state: a Ping carries no information beyond
// its own arrival, which is enough for S2 ("peer messages do not affect
// client-visible state").
func (s *Stub) OnPeer(me shim.Name, src shim.Name, msg Ping, state int) shim.Result[int, Ack, Ping] {
	return shim.Result[int, Ack, Ping]{State: state}
}

func (s *Stub) SerializeMsg(msg Ping) ([]byte, error) {
	return []byte(pingMarker), nil
}

func (s *Stub) DeserializeMsg(data []byte) (Ping, error) {
	if string(data) != pingMarker {
		return Ping{}, fmt.Errorf("stub: unrecognized peer payload %q", data)
	}
	return Ping{}, nil
}

// DeserializeInput accepts only the exact incrMarker payload; anything else
// is a malformed chunk (ok=false), which the client-read task turns into a
// Disconnect — this is the S4 scenario.
func (s *Stub) DeserializeInput(data []byte, id ClientID) (Incr, bool) {
	if string(data) != incrMarker {
		return Incr{}, false
	}
	return Incr{Client: id}, true
}

func (s *Stub) SerializeOutput(out Ack) (ClientID, []byte, error) {
	return out.Client, []byte(fmt.Sprintf("ACK:%d", out.Value)), nil
}

func (s *Stub) CreateClientID() ClientID {
	return ClientID(atomic.AddUint64(&s.nextID, 1))
}

func (s *Stub) SerializeClientID(id ClientID) string {
	return id.String()
}

func (s *Stub) TimeoutTasks() []shim.TimeoutTask[int, Ack, Ping] {
	if s.timerEvery == nil {
		return nil
	}
	dest := s.timerDest
	every := s.timerEvery
	return []shim.TimeoutTask[int, Ack, Ping]{
		{
			Name: "heartbeat",
			Handler: func(me shim.Name, state int) shim.Result[int, Ack, Ping] {
				return shim.Result[int, Ack, Ping]{
					State:     state,
					PeerSends: []shim.PeerSend[Ping]{{Dest: dest, Msg: Ping{}}},
				}
			},
			Interval: every,
		},
	}
}

func (s *Stub) Debug() bool { return s.debug }

func (s *Stub) DebugInput(me shim.Name, input Incr)            {}
func (s *Stub) DebugRecv(me shim.Name, src shim.Name, msg Ping) {}
func (s *Stub) DebugSend(me shim.Name, dest shim.Name, msg Ping) {}
