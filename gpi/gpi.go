// Package gpi defines the generic procedural interface contract a digital
// logic simulator implements to be driven by the sched scheduler, plus a
// Fake in-memory simulator for tests and standalone tools that exercises
// the same contract without a real HDL simulator attached.
package gpi

import "time"

// Handle identifies one registered callback for later deregistration.
type Handle uint64

// Edge selects which signal transitions a value-change registration
// should fire on.
type Edge int

const (
	EdgeAny Edge = iota
	EdgeRising
	EdgeFalling
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return "any"
	}
}

// Simulator is the collaborator contract a cosimulation backend
// implements: scheduling time-stepped and signal-driven callbacks, and
// performing signal I/O. sched's GPI-backed triggers (Timer, ValueChange,
// RisingEdge, FallingEdge, the phase triggers) are all thin adapters over
// this interface, the way cocotb's own scheduler is a thin layer over its
// C-extension GPI.
type Simulator interface {
	// RegisterTimed arranges for cb to run once, delay simulation time
	// after now.
	RegisterTimed(delay time.Duration, cb func()) (Handle, error)
	// RegisterValueChange arranges for cb to run the next time signal's
	// value changes per edge.
	RegisterValueChange(signal string, edge Edge, cb func()) (Handle, error)
	// RegisterReadWrite arranges for cb to run on the simulator's next
	// ReadWrite phase entry of the current time step.
	RegisterReadWrite(cb func()) (Handle, error)
	// RegisterReadOnly arranges for cb to run on the simulator's next
	// ReadOnly phase entry of the current time step.
	RegisterReadOnly(cb func()) (Handle, error)
	// RegisterNextTimeStep arranges for cb to run at the start of the
	// next distinct simulation time, after the current step's ReadOnly
	// phase has completed.
	RegisterNextTimeStep(cb func()) (Handle, error)
	// Deregister cancels a still-pending registration; deregistering an
	// unknown or already-fired handle is a no-op.
	Deregister(h Handle)

	// ReadSignal returns the current value at path.
	ReadSignal(path string) (uint64, error)
	// WriteSignal schedules value onto path. Per spec.md §6.2, writes
	// issued outside the ReadWrite phase are buffered by sched's
	// write-scheduler and replayed here on the next ReadWrite entry.
	WriteSignal(path string, value uint64) error

	// Time returns the simulator's current time.
	Time() time.Duration
	// Precision returns the simulator's minimum time resolution.
	Precision() time.Duration

	// SetSimEventCallback installs a callback for out-of-band simulator
	// events (finish, fatal error, and similar).
	SetSimEventCallback(cb func(event string))
}
