package shim

import "time"

// TaskKind discriminates the tagged variant a Task plays, per the §9 design
// note: rather than holding arbitrary closures with no further structure,
// every task is one of these four roles, which keeps ownership of the
// client maps explicit in Env instead of hidden inside closures.
type TaskKind int

const (
	KindListener TaskKind = iota
	KindPeer
	KindClient
	KindTimer
)

func (k TaskKind) String() string {
	switch k {
	case KindListener:
		return "listener"
	case KindPeer:
		return "peer"
	case KindClient:
		return "client"
	case KindTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// taskResult is what every callback in Task returns: whether the task is
// finished, any newly spawned tasks, and the handler state reached after
// this invocation.
type taskResult[S any] struct {
	finished bool
	spawned  []*Task[S]
	state    S
}

// Task is a record over a single fd (§3). FD may be a real socket or a
// negative synthetic key used solely to give a timer a distinct slot in the
// environment's task map (see newTimerFD). The callbacks close over
// whichever Env they were constructed against — the environment is not
// threaded through as an explicit parameter, since Go closures already give
// each task exclusive access to the one Env that created it.
type Task[S any] struct {
	FD       int
	Kind     TaskKind
	SelectOn bool
	WakeAt   *time.Time

	// ClientUID, set only for KindClient tasks, is an opaque serialized
	// form of the client id so logging/finalize can name the client without
	// depending on the arrangement's concrete ClientID type.
	ClientUID string

	processRead  func(state S) taskResult[S]
	processWake  func(state S) taskResult[S]
	finalizeFunc func(state S) S
}

func (t *Task[S]) finalize(state S) S {
	return t.finalizeFunc(state)
}

// scheduleFinalize implements the §4.7 "schedule-finalize-task" primitive:
// it mutates the task in place so the loop tears it down on its own next
// iteration, rather than reaching into another task's state while that
// task's own callback is still executing on the stack.
func (t *Task[S]) scheduleFinalize() {
	t.SelectOn = false
	deadline := time.Now().Add(scheduleFinalizeDelay)
	t.WakeAt = &deadline
	t.processRead = func(state S) taskResult[S] {
		return taskResult[S]{finished: true, state: state}
	}
	t.processWake = func(state S) taskResult[S] {
		return taskResult[S]{finished: true, state: state}
	}
}

const scheduleFinalizeDelay = 500 * time.Millisecond
