package sched

import (
	"time"

	"github.com/gosimrt/scheduler/gpi"
)

// Timer is a one-shot Trigger that fires delay simulation time after it is
// awaited, backed by the simulator's RegisterTimed GPI call.
type Timer struct {
	*base
	sim    gpi.Simulator
	delay  time.Duration
	handle gpi.Handle
	primed bool
}

// NewTimer returns a Trigger that fires delay after it is registered.
func NewTimer(sim gpi.Simulator, delay time.Duration) Trigger {
	t := &Timer{sim: sim, delay: delay}
	t.base = newBase(t)
	return t
}

func (t *Timer) name() string { return "Timer" }

func (t *Timer) prime() error {
	if t.delay <= 0 {
		return &RangeError{Message: "Timer delay must be positive, got " + t.delay.String()}
	}
	h, err := t.sim.RegisterTimed(t.delay, func() {
		t.primed = false
		t.base.react(t)
	})
	if err != nil {
		return &TriggerException{Trigger: "Timer", Cause: err}
	}
	t.handle = h
	t.primed = true
	return nil
}

func (t *Timer) unprime() {
	if t.primed {
		t.sim.Deregister(t.handle)
		t.primed = false
	}
}

func (t *Timer) cleanup() {}
