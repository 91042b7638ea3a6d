package shim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskScheduleFinalizeDefersTeardown(t *testing.T) {
	calls := 0
	task := &Task[int]{
		FD:       5,
		SelectOn: true,
		processRead: func(state int) taskResult[int] {
			calls++
			return taskResult[int]{state: state}
		},
	}

	task.scheduleFinalize()

	require.False(t, task.SelectOn)
	require.NotNil(t, task.WakeAt)

	res := task.processRead(7)
	require.True(t, res.finished)
	require.Equal(t, 7, res.state)
	require.Equal(t, 0, calls) // the original callback was replaced, never invoked

	res = task.processWake(9)
	require.True(t, res.finished)
	require.Equal(t, 9, res.state)
}

func TestTaskKindString(t *testing.T) {
	require.Equal(t, "listener", KindListener.String())
	require.Equal(t, "peer", KindPeer.String())
	require.Equal(t, "client", KindClient.String())
	require.Equal(t, "timer", KindTimer.String())
	require.Equal(t, "unknown", TaskKind(99).String())
}
