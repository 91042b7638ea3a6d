//go:build linux || darwin || netbsd || freebsd || openbsd || dragonfly

package shim

import (
	"context"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultPollCap bounds how long a single readiness wait may block when no
// task has a nearer deadline, so a cancelled context is noticed promptly
// even while every task is purely periodic.
const DefaultPollCap = 1 * time.Second

// Run drives the §4.2 event loop until ctx is cancelled. It owns env and
// state exclusively for the duration of the call (§5: single-threaded
// cooperative scheduling, no locking) — no other goroutine may read or
// write either while Run is executing. On return (including via ctx
// cancellation) every remaining task has been finalized exactly once.
func Run[S, I, O, M any, C comparable](ctx context.Context, env *Env[S, I, O, M, C], state S, pollCap time.Duration) error {
	if pollCap <= 0 {
		pollCap = DefaultPollCap
	}

	defer func() {
		if r := recover(); r != nil {
			env.Log.Fatalf("panic in event loop: %v", r)
			panic(r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			state = finalizeAll(env, state)
			return ctx.Err()
		default:
		}

		wait := nextDeadline(env, pollCap)

		var readSet unix.FdSet
		fdZero(&readSet)
		maxFD := -1
		for fd, t := range env.tasks {
			if t.SelectOn && fd >= 0 {
				fdSetBit(fd, &readSet)
				if fd > maxFD {
					maxFD = fd
				}
			}
		}

		if maxFD >= 0 {
			timeout := unix.NsecToTimeval(wait.Nanoseconds())
			_, err := unix.Select(maxFD+1, &readSet, nil, nil, &timeout)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				state = finalizeAll(env, state)
				return err
			}
		} else {
			// Nothing real to wait on (only timers remain, or none at
			// all); sleep out the computed deadline directly.
			time.Sleep(wait)
			fdZero(&readSet)
		}

		now := time.Now()
		for _, fd := range env.snapshotOrder() {
			t, ok := env.tasks[fd]
			if !ok {
				continue
			}

			var res taskResult[S]
			switch {
			case t.SelectOn && fd >= 0 && fdIsSet(fd, &readSet):
				res = t.processRead(state)
			case t.WakeAt != nil && !now.Before(*t.WakeAt) && t.processWake != nil:
				res = t.processWake(state)
			default:
				continue
			}

			state = res.state
			for _, spawned := range res.spawned {
				env.addTask(spawned)
			}
			if res.finished {
				state = t.finalize(state)
				env.removeTask(fd)
			}
		}
	}
}

// nextDeadline computes min(wake_at_i) over tasks with a deadline, clamped
// to pollCap; absent any deadline at all, it returns pollCap (§4.2 step 1).
func nextDeadline[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], pollCap time.Duration) time.Duration {
	now := time.Now()
	wait := pollCap
	for _, t := range env.tasks {
		if t.WakeAt == nil {
			continue
		}
		d := t.WakeAt.Sub(now)
		if d < 0 {
			d = 0
		}
		if d < wait {
			wait = d
		}
	}
	return wait
}

// finalizeAll tears down every remaining task once, in snapshot order, used
// when Run's context is cancelled.
func finalizeAll[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], state S) S {
	for _, fd := range env.snapshotOrder() {
		t, ok := env.tasks[fd]
		if !ok {
			continue
		}
		state = t.finalize(state)
		env.removeTask(fd)
	}
	return state
}
