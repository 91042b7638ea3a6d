package shim

import "time"

// newTimerTask builds the §4.6 timeout task for one arrangement-supplied
// TimeoutTask entry. It owns a synthetic, negative fd so it can occupy its
// own slot in Env.tasks without ever colliding with a real socket fd.
func newTimerTask[S, I, O, M any, C comparable](env *Env[S, I, O, M, C], spec TimeoutTask[S, O, M], initialState S) *Task[S] {
	fd := env.newTimerFD()

	t := &Task[S]{
		FD:       fd,
		Kind:     KindTimer,
		SelectOn: false,
	}

	first := time.Now().Add(spec.Interval(env.Me, initialState))
	t.WakeAt = &first

	t.processWake = func(state S) taskResult[S] {
		result := spec.Handler(env.Me, state)
		newState := dispatch[S, I, O, M, C](env, result)

		// The interval function is recomputed against the post-dispatch
		// state every cycle (§4.6 rationale: it may be randomized or
		// adaptive), and re-arms this same task rather than spawning a
		// replacement.
		next := time.Now().Add(spec.Interval(env.Me, newState))
		t.WakeAt = &next

		return taskResult[S]{state: newState}
	}

	t.finalizeFunc = func(state S) S {
		env.Log.Infof("timer %q stopped", spec.Name)
		return state
	}

	return t
}
