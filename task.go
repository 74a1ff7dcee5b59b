package sched

import (
	"context"
	"fmt"
	"sync"

	"github.com/qmuntal/stateless"
)

// TaskState is a lifecycle state of a Task, per spec.md §4.4's state
// machine: UNSTARTED -> SCHEDULED -> RUNNING -> (PENDING -> SCHEDULED)* ->
// FINISHED, with CANCELLED reachable from any non-terminal state.
type TaskState int

const (
	TaskUnstarted TaskState = iota
	TaskScheduled
	TaskRunning
	TaskPending
	TaskFinished
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskUnstarted:
		return "UNSTARTED"
	case TaskScheduled:
		return "SCHEDULED"
	case TaskRunning:
		return "RUNNING"
	case TaskPending:
		return "PENDING"
	case TaskFinished:
		return "FINISHED"
	case TaskCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// task lifecycle triggers driving the stateless.StateMachine below.
const (
	evQueue stateless.Trigger = iota
	evResume
	evSuspend
	evFire
	evFinish
	evCancel
)

// TaskFunc is the body of a scheduled coroutine. It receives the Task it
// is running as, to call [Task.Await] and observe [Task.Context]. Returning
// a value or an error both terminate the task into TaskFinished; a panic
// is recovered and recorded as the terminal error, matching the teacher's
// Promisify panic-to-[PanicError] behavior in promisify.go.
type TaskFunc func(t *Task) (any, error)

// advanceResult is what a task's goroutine sends back to whichever
// goroutine is driving it (always the scheduler goroutine, by
// construction): either "I yielded this trigger" or "I'm done".
type advanceResult struct {
	trigger  Trigger
	terminal bool
	outcome  Outcome
}

// Task wraps one coroutine. Its body runs on a dedicated goroutine that is
// blocked on a channel receive at every point except the single instant the
// scheduler is actively advancing it — preserving the single-threaded
// cooperative model spec.md §5 requires, while using Go's native
// goroutine+channel primitives as the "stackful fiber" spec.md §9 calls
// for in a systems target without native coroutines.
type Task struct {
	id   uint64
	name string
	fn   TaskFunc
	log  Logger
	sm   *stateless.StateMachine

	ctx    context.Context
	cancel context.CancelFunc

	sched *Scheduler

	mu             sync.Mutex
	started        bool
	outcome        *Outcome
	pendingTrigger Trigger
	doneCallbacks  []func(*Task)
	killed         bool

	advanceCh chan advanceResult
	resumeCh  chan Outcome
}

func newTask(id uint64, name string, fn TaskFunc, sched *Scheduler, log Logger) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		id:        id,
		name:      name,
		fn:        fn,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		sched: sched,
		// Both channels are buffered by 1. The rendezvous is still a
		// strict one-send-per-receive handshake in the normal case; the
		// buffer only matters for a task abandoned via terminate() after
		// it has already started — its goroutine's final send on
		// advanceCh (nobody is listening for it any more) completes
		// instead of leaking a blocked goroutine forever.
		advanceCh: make(chan advanceResult, 1),
		resumeCh:  make(chan Outcome, 1),
	}
	t.sm = stateless.NewStateMachine(TaskUnstarted)
	t.sm.Configure(TaskUnstarted).
		Permit(evQueue, TaskScheduled).
		Permit(evCancel, TaskCancelled)
	t.sm.Configure(TaskScheduled).
		Permit(evResume, TaskRunning).
		Permit(evCancel, TaskCancelled)
	t.sm.Configure(TaskRunning).
		Permit(evSuspend, TaskPending).
		Permit(evFinish, TaskFinished).
		Permit(evCancel, TaskCancelled)
	t.sm.Configure(TaskPending).
		Permit(evFire, TaskScheduled).
		Permit(evCancel, TaskCancelled)
	t.sm.Configure(TaskFinished)
	t.sm.Configure(TaskCancelled)
	return t
}

// ID returns the task's unique, monotonic identifier.
func (t *Task) ID() uint64 { return t.id }

// Name returns the human-readable label given at Spawn time.
func (t *Task) Name() string { return t.name }

// Context returns a context cancelled when the task is cancelled or
// killed, for task bodies performing blocking work that should notice.
func (t *Task) Context() context.Context { return t.ctx }

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	return t.sm.MustState().(TaskState)
}

func (t *Task) isTerminalLocked() bool {
	s := t.State()
	return s == TaskFinished || s == TaskCancelled
}

// Await suspends the calling task's goroutine until trigger fires (or the
// task is cancelled), sending trigger to the scheduler and blocking for
// resume. It must only be called from within the task's own TaskFunc.
func (t *Task) Await(trigger Trigger) (any, error) {
	t.advanceCh <- advanceResult{trigger: trigger}
	out := <-t.resumeCh
	return out.Value, out.Err
}

// OnDone registers a callback invoked exactly once, synchronously, on
// entry to FINISHED or CANCELLED. If the task is already terminal, cb runs
// immediately (matching the teacher's eventtarget.go "once" listeners and
// spec.md §4.4's "registering a callback on a terminal task invokes it
// immediately").
func (t *Task) OnDone(cb func(*Task)) {
	t.mu.Lock()
	if t.isTerminalLocked() {
		t.mu.Unlock()
		cb(t)
		return
	}
	t.doneCallbacks = append(t.doneCallbacks, cb)
	t.mu.Unlock()
}

// Result returns the task's return value if it finished successfully,
// re-raises its error if it finished with one or was cancelled, or
// signals ErrTaskNotDone otherwise.
func (t *Task) Result() (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outcome == nil {
		return nil, ErrTaskNotDone
	}
	return t.outcome.Value, t.outcome.Err
}

// Exception is the symmetric counterpart to Result: it returns the
// captured error (nil if the task finished successfully) instead of
// propagating it, or ErrTaskNotDone if the task has not reached a
// terminal state.
func (t *Task) Exception() (error, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.outcome == nil {
		return nil, ErrTaskNotDone
	}
	return t.outcome.Err, nil
}

// Killed reports whether the task was terminated via Kill (as opposed to
// Cancel, or natural completion). Preserves the legacy "outcome silently
// swallowed" behavior of kill() from spec.md §9 while exposing a
// non-breaking way to detect it.
func (t *Task) Killed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.killed
}

// ErrTaskNotDone is returned by Result/Exception for a task that has not
// reached a terminal state.
var ErrTaskNotDone = fmt.Errorf("sched: task is not done")

// Cancel requests cooperative termination: the scheduler deregisters the
// task's pending trigger (or pulls it out of the ready queue), then it
// transitions to CANCELLED with a CancelledError outcome. A no-op on an
// already-terminal task. Cancellation is synchronous from the caller's
// perspective: done-callbacks run before Cancel returns.
func (t *Task) Cancel(reason string) {
	if t.sched != nil {
		t.sched.unschedule(t)
	}
	t.terminate(reason, false)
}

// Kill forcibly terminates the task the same way Cancel does, but records
// a silent Value(nil) outcome instead of a CancelledError — matching
// spec.md §9's noted legacy behavior that kill() swallows the outcome.
// Use Killed to distinguish this from ordinary completion after the fact.
func (t *Task) Kill() {
	if t.sched != nil {
		t.sched.unschedule(t)
	}
	t.terminate("", true)
}

// markQueued performs the UNSTARTED->SCHEDULED or PENDING->SCHEDULED
// transition required before the scheduler may place this task on the
// ready queue.
func (t *Task) markQueued() error {
	switch t.State() {
	case TaskUnstarted:
		return t.sm.Fire(evQueue)
	case TaskPending:
		return t.sm.Fire(evFire)
	case TaskScheduled:
		return ErrAlreadyQueued
	default:
		return newInternalError("cannot queue task %d from state %s", t.id, t.State())
	}
}

// advance injects outcome into the task's coroutine: starting it (on the
// first call) or resuming its blocked goroutine. It returns the trigger
// yielded, or reports that the task is now terminal.
func (t *Task) advance(outcome Outcome) (yielded Trigger, terminal bool) {
	if t.State() != TaskScheduled {
		panic(&InternalError{Message: fmt.Sprintf("task %d", t.id), Cause: ErrReentrantResume})
	}

	t.mu.Lock()
	first := !t.started
	t.started = true
	t.mu.Unlock()

	if err := t.sm.Fire(evResume); err != nil {
		panic(newInternalError("task %d: resume from %s: %v", t.id, t.State(), err))
	}

	if first {
		go t.run()
	} else {
		t.resumeCh <- outcome
	}

	res := <-t.advanceCh
	if res.terminal {
		t.finish(TaskFinished, res.outcome)
		return nil, true
	}

	if err := t.sm.Fire(evSuspend); err != nil {
		panic(newInternalError("task %d: suspend from %s: %v", t.id, t.State(), err))
	}
	t.mu.Lock()
	t.pendingTrigger = res.trigger
	t.mu.Unlock()
	return res.trigger, false
}

// run is the task's dedicated goroutine body. It blocks on advanceCh/
// resumeCh for its entire life except while fn is actually executing.
func (t *Task) run() {
	outcome := capture(func() (any, error) { return t.fn(t) })
	t.advanceCh <- advanceResult{terminal: true, outcome: outcome}
}

// finish transitions the task into a terminal state, records its outcome
// and fires done-callbacks exactly once. It is idempotent: finishing an
// already-terminal task (e.g. Cancel racing natural completion) is a
// no-op, matching spec.md §8's "cancel() on an already-terminal task is a
// no-op".
func (t *Task) finish(state TaskState, outcome Outcome) {
	t.mu.Lock()
	if t.isTerminalLocked() {
		t.mu.Unlock()
		return
	}
	ev := evFinish
	if state == TaskCancelled {
		ev = evCancel
	}
	if err := t.sm.Fire(ev); err != nil {
		t.mu.Unlock()
		panic(newInternalError("task %d: finish from %s: %v", t.id, t.State(), err))
	}
	t.outcome = &outcome
	t.pendingTrigger = nil
	cbs := t.doneCallbacks
	t.doneCallbacks = nil
	t.mu.Unlock()

	t.cancel()
	for _, cb := range cbs {
		cb(t)
	}
}

// terminate forces CANCELLED on behalf of Cancel or Kill. silent selects kill()'s legacy Value(nil) outcome vs. cancel()'s
// CancelledError outcome (spec.md §4.4, §9 Design Notes).
func (t *Task) terminate(reason string, silent bool) {
	t.mu.Lock()
	if t.isTerminalLocked() {
		t.mu.Unlock()
		return
	}
	started := t.started
	t.killed = silent
	t.mu.Unlock()

	var outcome Outcome
	if silent {
		outcome = Value(nil)
	} else {
		outcome = Error(&CancelledError{Reason: reason})
	}
	t.finish(TaskCancelled, outcome)

	if started {
		// Unblock an orphaned goroutine parked in Await so it can observe
		// ctx.Done() and return; resumeCh is buffered so this never blocks
		// the canceller. Go has no generator.close() — the task body is
		// expected to notice t.Context().Done() the way idiomatic Go code
		// notices ctx.Done(), rather than being forcibly unwound.
		select {
		case t.resumeCh <- Outcome{Err: &CancelledError{Reason: reason}}:
		default:
		}
	}
}
