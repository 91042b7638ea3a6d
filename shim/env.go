package shim

import (
	"net"

	"golang.org/x/sys/unix"
)

// Env is the process-wide runtime context described in §3: the resolved
// cluster map, the two listening sockets, the bidirectional client maps,
// and the task table. Exactly one Env exists per process and it is owned
// exclusively by the event loop goroutine for the life of the run — no
// locking is required (§5).
type Env[S, I, O, M any, C comparable] struct {
	Me  Name
	Arr Arrangement[S, I, O, M, C]
	Log Logger

	cluster *resolved

	peerFD   int
	listenFD int

	clientIn  map[int]C // fd -> ClientId
	clientOut map[C]int // ClientId -> fd

	tasks     map[int]*Task[S]
	taskOrder []int // insertion order of live task fds, pruned lazily

	nextTimerFD int
}

func newEnv[S, I, O, M any, C comparable](me Name, arr Arrangement[S, I, O, M, C], log Logger, cluster *resolved) *Env[S, I, O, M, C] {
	if log == nil {
		log = nopLogger{}
	}
	return &Env[S, I, O, M, C]{
		Me:          me,
		Arr:         arr,
		Log:         log,
		cluster:     cluster,
		clientIn:    make(map[int]C),
		clientOut:   make(map[C]int),
		tasks:       make(map[int]*Task[S]),
		nextTimerFD: -1,
	}
}

// newTimerFD mints a synthetic, negative task-map key for a timer task
// (§4.6, §9 open question): real fds returned by the kernel are always
// non-negative, so negative keys can never collide with one.
func (e *Env[S, I, O, M, C]) newTimerFD() int {
	fd := e.nextTimerFD
	e.nextTimerFD--
	return fd
}

func (e *Env[S, I, O, M, C]) addTask(t *Task[S]) {
	e.tasks[t.FD] = t
	e.taskOrder = append(e.taskOrder, t.FD)
}

func (e *Env[S, I, O, M, C]) removeTask(fd int) {
	delete(e.tasks, fd)
}

// snapshotOrder returns the live task fds in insertion order (§4.2 step 4)
// and, as a side effect, compacts taskOrder so it does not grow unbounded
// across a long-running process with high client churn.
func (e *Env[S, I, O, M, C]) snapshotOrder() []int {
	compacted := make([]int, 0, len(e.taskOrder))
	for _, fd := range e.taskOrder {
		if _, ok := e.tasks[fd]; ok {
			compacted = append(compacted, fd)
		}
	}
	e.taskOrder = compacted
	snapshot := make([]int, len(compacted))
	copy(snapshot, compacted)
	return snapshot
}

// registerClient inserts both directions of the client fd<->id mapping
// (invariant 1 in §8); only the acceptor calls this.
func (e *Env[S, I, O, M, C]) registerClient(fd int, id C) {
	e.clientIn[fd] = id
	e.clientOut[id] = fd
}

// unregisterClient removes both directions; only client-read finalize calls
// this, keeping the maps' mutual-inverse invariant intact at every
// observable moment.
func (e *Env[S, I, O, M, C]) unregisterClient(fd int) {
	id, ok := e.clientIn[fd]
	if !ok {
		return
	}
	delete(e.clientIn, fd)
	delete(e.clientOut, id)
}

func (e *Env[S, I, O, M, C]) clientFD(id C) (int, bool) {
	fd, ok := e.clientOut[id]
	return fd, ok
}

func (e *Env[S, I, O, M, C]) clientID(fd int) (C, bool) {
	id, ok := e.clientIn[fd]
	return id, ok
}

func (e *Env[S, I, O, M, C]) addrOfPeer(name Name) (*net.UDPAddr, bool) {
	return e.cluster.addrOf(name)
}

func (e *Env[S, I, O, M, C]) nameOfAddr(addr *net.UDPAddr) (Name, bool) {
	return e.cluster.nameOf(addr)
}

// closeFD closes a raw fd, logging but not failing on error — the caller is
// always already tearing a task down, so there is nothing further to do
// with the error.
func (e *Env[S, I, O, M, C]) closeFD(fd int) {
	if fd < 0 {
		return // synthetic timer key, nothing to close
	}
	if err := unix.Close(fd); err != nil {
		e.Log.Warnf("close fd=%d: %v", fd, err)
	}
}
