package shim

import "time"

// Name identifies a peer (and, as the "me" argument, the local node) in the
// cluster map. The §6.1 contract's serialize_name/deserialize_name are
// elided here: Name is already a string, peer identity is always resolved
// from a datagram's source address via the cluster map (never decoded off
// the wire, see cluster.go's nameOf), and Go string conversion is exactly
// identity serialization — a separate round-trip pair would add no
// information the type doesn't already carry.
type Name string

// PeerSend is one outbound peer message produced by a handler invocation,
// addressed by destination Name. The shim resolves Name to a socket address
// via the cluster map (see ClusterMap) and never inspects Msg's contents.
type PeerSend[M any] struct {
	Dest Name
	Msg  M
}

// Result is the uniform shape every arrangement entry point returns: a batch
// of client-facing outputs plus the handler's new state, together with any
// peer messages to emit. This mirrors go-mcast's core.Result tuple
// ((outputs, state'), peer_sends).
type Result[S, O, M any] struct {
	Outputs   []O
	State     S
	PeerSends []PeerSend[M]
}

// TimeoutTask pairs a periodic handler with the function that computes its
// next interval from the (possibly just-updated) state. Interval is
// recomputed after every firing since it may depend on current state
// (randomized or adaptive back-off).
type TimeoutTask[S, O, M any] struct {
	Name     string
	Handler  func(me Name, state S) Result[S, O, M]
	Interval func(me Name, state S) time.Duration
}

// Arrangement is the §6.1 contract: an opaque, deterministic handler
// produced by a higher-level verification framework. It knows nothing of
// sockets, timeouts, or scheduling — the shim supplies all of that. S is the
// handler's internal state, I/O are client-facing request/response types, M
// is the peer wire message type, and C is the opaque per-connection client
// identifier type the arrangement itself mints.
//
// Implementations must be total over their declared inputs: on_input and
// on_peer are not permitted to return an error, and a panic escaping either
// is treated by the shim as a program bug (see Run's panic-and-log policy),
// not a recoverable condition.
type Arrangement[S, I, O, M any, C comparable] interface {
	// Init returns the handler's initial state for the local node me.
	Init(me Name) S

	// OnInput processes one client-originated request.
	OnInput(me Name, input I, state S) Result[S, O, M]

	// OnPeer processes one inbound peer message from src.
	OnPeer(me Name, src Name, msg M, state S) Result[S, O, M]

	// SerializeMsg/DeserializeMsg convert a peer message to and from the
	// bytes carried by exactly one UDP datagram.
	SerializeMsg(msg M) ([]byte, error)
	DeserializeMsg(data []byte) (M, error)

	// DeserializeInput decodes one client-framed chunk for the client
	// identified by id. ok=false signals a malformed chunk, which the
	// client-read task turns into a Disconnect.
	DeserializeInput(data []byte, id C) (I, bool)

	// SerializeOutput encodes a response and names which client it is
	// addressed to.
	SerializeOutput(out O) (C, []byte, error)

	// CreateClientID mints a fresh, opaque identifier for a newly accepted
	// connection.
	CreateClientID() C

	// SerializeClientID renders id as a string for logging/diagnostics —
	// the §6.1 contract's serialize_client_id. The shim never parses the
	// result or uses it as a key; it exists purely so a ClientID with no
	// natural string form (e.g. a struct) can still be named in a log line
	// (see Task.ClientUID).
	SerializeClientID(id C) string

	// TimeoutTasks lists the periodic callbacks the shim should drive for
	// the life of the process. Evaluated once at startup.
	TimeoutTasks() []TimeoutTask[S, O, M]

	// Debug reports whether debug hooks should be invoked. Consulted anew
	// on every event (and per dispatched output/send), never cached, so it
	// may be backed by a live flag.
	Debug() bool

	// DebugInput/DebugRecv/DebugSend are pure observers invoked only when
	// Debug() is true, for tracing without affecting handler semantics.
	DebugInput(me Name, input I)
	DebugRecv(me Name, src Name, msg M)
	DebugSend(me Name, dest Name, msg M)
}
