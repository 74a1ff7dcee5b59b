package sched

import (
	"time"

	"github.com/gosimrt/scheduler/gpi"
)

// WithTimeout returns a Trigger that fires when awaitable fires, or
// surfaces a SimTimeoutError outcome if d elapses first — a direct
// analog of cocotb's with_timeout, built on First against a Timer the way
// spec.md §4.3 prescribes.
func WithTimeout(sim gpi.Simulator, awaitable Trigger, d time.Duration) Trigger {
	timer := NewTimer(sim, d)
	inner := First(awaitable, timer).(*firstTrigger)
	return &timeoutTrigger{inner: inner, timer: timer, d: d}
}

type timeoutTrigger struct {
	inner *firstTrigger
	timer Trigger
	d     time.Duration
}

func (t *timeoutTrigger) register(cb reactFunc) (HandleID, error) {
	// Hand t, not the inner First, to cb so the scheduler resolves the
	// resume outcome through t.resumeOutcome.
	return t.inner.register(func(Trigger) { cb(t) })
}
func (t *timeoutTrigger) deregister(id HandleID) { t.inner.deregister(id) }
func (t *timeoutTrigger) name() string           { return "WithTimeout" }

func (t *timeoutTrigger) resumeOutcome() Outcome {
	winner := t.inner.winnerTrigger()
	if winner == t.timer {
		return Error(&SimTimeoutError{Duration: t.d.String()})
	}
	if ro, ok := winner.(resumeOutcomer); ok {
		return ro.resumeOutcome()
	}
	return Value(winner)
}
