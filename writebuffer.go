package sched

import (
	"sync"

	"github.com/gosimrt/scheduler/gpi"
)

// pendingWrite is one signal write waiting for the next ReadWrite phase.
type pendingWrite struct {
	path  string
	value uint64
}

// writeScheduler buffers signal writes issued outside the ReadWrite phase
// and replays them, in insertion order, the next time the simulator
// enters ReadWrite — the collaborator spec.md §6.2 assigns to break the
// "write visible to the kernel only during ReadWrite" rule real HDL
// simulators enforce.
type writeScheduler struct {
	mu      sync.Mutex
	sim     gpi.Simulator
	pending []pendingWrite
}

func newWriteScheduler(sim gpi.Simulator) *writeScheduler {
	return &writeScheduler{sim: sim}
}

// schedule buffers the write. The caller (Scheduler.WriteSignal) is
// responsible for writing immediately instead when already in the
// ReadWrite phase.
func (w *writeScheduler) schedule(path string, value uint64) {
	w.mu.Lock()
	w.pending = append(w.pending, pendingWrite{path: path, value: value})
	w.mu.Unlock()
}

// flush replays every buffered write, in order, directly against the
// simulator, then clears the buffer.
func (w *writeScheduler) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, p := range pending {
		_ = w.sim.WriteSignal(p.path, p.value)
	}
}

// WriteSignal writes value to path: immediately if the scheduler believes
// the simulator is currently in the ReadWrite phase, otherwise buffered
// for replay at the next ReadWrite entry.
func (s *Scheduler) WriteSignal(path string, value uint64) error {
	if s.Phase() == PhaseReadWrite {
		return s.sim.WriteSignal(path, value)
	}
	s.write.schedule(path, value)
	return nil
}

// ReadSignal reads path's current value straight through to the
// simulator; reads are always immediate, in every phase.
func (s *Scheduler) ReadSignal(path string) (uint64, error) {
	return s.sim.ReadSignal(path)
}

// armPhaseObservers installs self-perpetuating ReadWrite/ReadOnly/
// NextTimeStep callbacks so the scheduler continuously tracks the
// simulator's current Phase and flushes buffered writes on every
// ReadWrite entry, for the lifetime of the scheduler.
func (s *Scheduler) armPhaseObservers() {
	var onReadWrite, onReadOnly, onNextStep func()

	onReadWrite = func() {
		s.mu.Lock()
		s.phase = PhaseReadWrite
		s.mu.Unlock()
		s.write.flush()
		if _, err := s.sim.RegisterReadWrite(onReadWrite); err != nil {
			logf(s.log, LevelError, "re-arm ReadWrite observer failed", Field{"err", err.Error()})
		}
	}
	onReadOnly = func() {
		s.mu.Lock()
		s.phase = PhaseReadOnly
		s.mu.Unlock()
		if _, err := s.sim.RegisterReadOnly(onReadOnly); err != nil {
			logf(s.log, LevelError, "re-arm ReadOnly observer failed", Field{"err", err.Error()})
		}
	}
	onNextStep = func() {
		s.mu.Lock()
		s.phase = PhaseNormal
		s.mu.Unlock()
		if _, err := s.sim.RegisterNextTimeStep(onNextStep); err != nil {
			logf(s.log, LevelError, "re-arm NextTimeStep observer failed", Field{"err", err.Error()})
		}
	}

	if _, err := s.sim.RegisterReadWrite(onReadWrite); err != nil {
		logf(s.log, LevelError, "arm ReadWrite observer failed", Field{"err", err.Error()})
	}
	if _, err := s.sim.RegisterReadOnly(onReadOnly); err != nil {
		logf(s.log, LevelError, "arm ReadOnly observer failed", Field{"err", err.Error()})
	}
	if _, err := s.sim.RegisterNextTimeStep(onNextStep); err != nil {
		logf(s.log, LevelError, "arm NextTimeStep observer failed", Field{"err", err.Error()})
	}
}
