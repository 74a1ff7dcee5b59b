package sched

import "github.com/gosimrt/scheduler/gpi"

// signalTrigger is the shared implementation backing ValueChange,
// RisingEdge and FallingEdge: a one-shot Trigger primed against the
// simulator's RegisterValueChange GPI call for one signal path and edge.
type signalTrigger struct {
	*base
	sim    gpi.Simulator
	path   string
	edge   gpi.Edge
	handle gpi.Handle
	primed bool
}

func newSignalTrigger(sim gpi.Simulator, path string, edge gpi.Edge) Trigger {
	t := &signalTrigger{sim: sim, path: path, edge: edge}
	t.base = newBase(t)
	return t
}

func (t *signalTrigger) name() string { return "ValueChange(" + t.path + ")" }

func (t *signalTrigger) prime() error {
	h, err := t.sim.RegisterValueChange(t.path, t.edge, func() {
		t.primed = false
		t.base.react(t)
	})
	if err != nil {
		return &TriggerException{Trigger: t.name(), Cause: err}
	}
	t.handle = h
	t.primed = true
	return nil
}

func (t *signalTrigger) unprime() {
	if t.primed {
		t.sim.Deregister(t.handle)
		t.primed = false
	}
}

func (t *signalTrigger) cleanup() {}

// ValueChange fires the next time path's value changes, regardless of
// direction.
func ValueChange(sim gpi.Simulator, path string) Trigger {
	return newSignalTrigger(sim, path, gpi.EdgeAny)
}

// RisingEdge fires the next time path transitions from zero to non-zero.
func RisingEdge(sim gpi.Simulator, path string) Trigger {
	return newSignalTrigger(sim, path, gpi.EdgeRising)
}

// FallingEdge fires the next time path transitions from non-zero to zero.
func FallingEdge(sim gpi.Simulator, path string) Trigger {
	return newSignalTrigger(sim, path, gpi.EdgeFalling)
}
