package stub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nmota/reactorshim/shim"
)

func TestOnInputIncrementsSharedCounter(t *testing.T) {
	s := New(false)
	state := s.Init("A")

	result := s.OnInput("A", Incr{Client: 1}, state)
	require.Equal(t, 1, result.State)
	require.Equal(t, []Ack{{Client: 1, Value: 1}}, result.Outputs)

	result = s.OnInput("A", Incr{Client: 2}, result.State)
	require.Equal(t, 2, result.State)
	require.Equal(t, ClientID(2), result.Outputs[0].Client)
}

func TestOnPeerLeavesStateUnchanged(t *testing.T) {
	s := New(false)
	result := s.OnPeer("A", "B", Ping{}, 5)
	require.Equal(t, 5, result.State)
	require.Empty(t, result.Outputs)
	require.Empty(t, result.PeerSends)
}

func TestDeserializeInputRejectsMalformedChunk(t *testing.T) {
	s := New(false)
	_, ok := s.DeserializeInput([]byte("INCR"), ClientID(1))
	require.True(t, ok)

	_, ok = s.DeserializeInput([]byte("garbage"), ClientID(1))
	require.False(t, ok)
}

func TestSerializeDeserializeMsgRoundTrip(t *testing.T) {
	s := New(false)
	data, err := s.SerializeMsg(Ping{})
	require.NoError(t, err)

	_, err = s.DeserializeMsg(data)
	require.NoError(t, err)

	_, err = s.DeserializeMsg([]byte("not a ping"))
	require.Error(t, err)
}

func TestSerializeOutputAddressesTheIssuingClient(t *testing.T) {
	s := New(false)
	id, payload, err := s.SerializeOutput(Ack{Client: 42, Value: 7})
	require.NoError(t, err)
	require.Equal(t, ClientID(42), id)
	require.Equal(t, "ACK:7", string(payload))
}

func TestCreateClientIDIsMonotonicAndUnique(t *testing.T) {
	s := New(false)
	first := s.CreateClientID()
	second := s.CreateClientID()
	require.NotEqual(t, first, second)
	require.Greater(t, uint64(second), uint64(first))
}

func TestTimeoutTasksEmptyWithoutTimer(t *testing.T) {
	s := New(false)
	require.Empty(t, s.TimeoutTasks())
}

func TestTimeoutTasksConfiguredWithTimer(t *testing.T) {
	s := NewWithTimer(false, "B", func(int) time.Duration { return time.Second })
	tasks := s.TimeoutTasks()
	require.Len(t, tasks, 1)

	result := tasks[0].Handler("A", 3)
	require.Equal(t, 3, result.State)
	require.Equal(t, []shim.PeerSend[Ping]{{Dest: "B", Msg: Ping{}}}, result.PeerSends)
	require.Equal(t, time.Second, tasks[0].Interval("A", 3))
}

func TestClientIDString(t *testing.T) {
	require.Equal(t, "client-7", ClientID(7).String())
}
