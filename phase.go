package sched

import "github.com/gosimrt/scheduler/gpi"

// Phase is the simulator's current position within one simulation time
// step: normal execution, the ReadWrite window where signal writes are
// visible to the kernel, and the ReadOnly window where only reads are
// permitted. Mirrors cocotb's NORMAL/READ_WRITE/READ_ONLY phase discipline.
type Phase int

const (
	PhaseNormal Phase = iota
	PhaseReadWrite
	PhaseReadOnly
)

func (p Phase) String() string {
	switch p {
	case PhaseReadWrite:
		return "ReadWrite"
	case PhaseReadOnly:
		return "ReadOnly"
	default:
		return "Normal"
	}
}

// gpiPhaseTrigger is the shared implementation backing ReadWriteTrigger,
// ReadOnlyTrigger and NextTimeStep: a one-shot Trigger primed against one
// of the simulator's three phase-callback registrations.
type gpiPhaseTrigger struct {
	*base
	sim     gpi.Simulator
	label   string
	handle  gpi.Handle
	primed  bool
	register func(cb func()) (gpi.Handle, error)
}

func newPhaseTrigger(sim gpi.Simulator, label string, register func(cb func()) (gpi.Handle, error)) Trigger {
	t := &gpiPhaseTrigger{sim: sim, label: label, register: register}
	t.base = newBase(t)
	return t
}

func (t *gpiPhaseTrigger) name() string { return t.label }

func (t *gpiPhaseTrigger) prime() error {
	h, err := t.register(func() {
		t.primed = false
		t.base.react(t)
	})
	if err != nil {
		return &TriggerException{Trigger: t.label, Cause: err}
	}
	t.handle = h
	t.primed = true
	return nil
}

func (t *gpiPhaseTrigger) unprime() {
	if t.primed {
		t.sim.Deregister(t.handle)
		t.primed = false
	}
}

func (t *gpiPhaseTrigger) cleanup() {}

// ReadWriteTrigger fires the next time the simulator enters its ReadWrite
// phase for the current time step.
func ReadWriteTrigger(sim gpi.Simulator) Trigger {
	return newPhaseTrigger(sim, "ReadWrite", sim.RegisterReadWrite)
}

// ReadOnlyTrigger fires the next time the simulator enters its ReadOnly
// phase for the current time step.
func ReadOnlyTrigger(sim gpi.Simulator) Trigger {
	return newPhaseTrigger(sim, "ReadOnly", sim.RegisterReadOnly)
}

// NextTimeStep fires once the simulator has moved on to a new simulation
// time, after the current step's ReadOnly phase has run.
func NextTimeStep(sim gpi.Simulator) Trigger {
	return newPhaseTrigger(sim, "NextTimeStep", sim.RegisterNextTimeStep)
}
