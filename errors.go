package sched

import (
	"errors"
	"fmt"
)

// InternalError signals that a scheduler invariant was violated, or wraps a
// panic recovered from a task body. A broken invariant is raised as a
// panic; a recovered task panic is recorded as that task's error outcome.
// The scheduler has no termination state of its own and keeps running
// other tasks after either.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sched: internal error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("sched: internal error: %s", e.Message)
}

func (e *InternalError) Unwrap() error { return e.Cause }

func newInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// SimFailureError wraps a failure reported by the simulator itself. The
// scheduler installs no GPI sim-event callback, so nothing in this package
// constructs it or injects it into a task.
type SimFailureError struct {
	Reason string
}

func (e *SimFailureError) Error() string {
	return fmt.Sprintf("sched: simulator reported failure: %s", e.Reason)
}

// SimTimeoutError is raised by with_timeout when its Timer fires before the
// wrapped awaitable completes.
type SimTimeoutError struct {
	Duration string
}

func (e *SimTimeoutError) Error() string {
	return fmt.Sprintf("sched: timed out after %s", e.Duration)
}

// CancelledError is the outcome error recorded for a task terminated via
// Task.Cancel. It is returned by Result/Exception, and propagates to any
// Join of the cancelled task.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	if e.Reason == "" {
		return "sched: task was cancelled"
	}
	return fmt.Sprintf("sched: task was cancelled: %s", e.Reason)
}

// TriggerException is raised synchronously at the call site of
// Trigger.register when the simulator (or another fire source) refuses to
// prime the underlying callback.
type TriggerException struct {
	Trigger string
	Cause   error
}

func (e *TriggerException) Error() string {
	return fmt.Sprintf("sched: failed to prime trigger %s: %v", e.Trigger, e.Cause)
}

func (e *TriggerException) Unwrap() error { return e.Cause }

// RangeError reports a value outside its domain, e.g. a negative or zero
// Timer duration.
type RangeError struct {
	Message string
}

func (e *RangeError) Error() string { return fmt.Sprintf("sched: range error: %s", e.Message) }

// TypeError reports an unexpected value shape. Durations in this package
// are time.Duration values, so no call takes a time-unit argument.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string { return fmt.Sprintf("sched: type error: %s", e.Message) }

// Sentinel errors for conditions that do not carry extra context.
var (
	// ErrDoubleAwait names a second await on a one-shot trigger. Combine and
	// First register on their sub-triggers directly, and nothing in this
	// package returns it.
	ErrDoubleAwait = errors.New("sched: trigger may only be awaited once")

	// ErrLockNotHeld is returned by Lock.Release when the lock is already free.
	ErrLockNotHeld = errors.New("sched: release of a lock that is not held")

	// ErrReentrantResume is the cause of the InternalError panic raised when
	// a task is advanced while it is not in the SCHEDULED state.
	ErrReentrantResume = errors.New("sched: resume called while a task is already running")

	// ErrAlreadyQueued is returned by Task.markQueued when the task is
	// already SCHEDULED, i.e. present in the ready queue.
	ErrAlreadyQueued = errors.New("sched: task is already queued")

	// ErrSchedulerTerminated is returned by RunUntilDone when the gpi.Fake
	// simulator has no more work to step while a target task is not done.
	ErrSchedulerTerminated = errors.New("sched: scheduler has terminated")

	// ErrNotExternal names a queue_function call made from outside an
	// external goroutine. Scheduler.QueueFunction accepts calls from any
	// goroutine and does not return it.
	ErrNotExternal = errors.New("sched: queue_function called outside an external thread")

	// ErrWrongThread names a main-thread-only operation invoked off the
	// scheduler goroutine. The scheduler does not check which goroutine
	// calls it, and nothing in this package returns it.
	ErrWrongThread = errors.New("sched: operation must run on the scheduler goroutine")
)

// WrapError wraps an error with a message, preserving the cause chain so
// that errors.Is/errors.As continue to match against err.
func WrapError(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}
