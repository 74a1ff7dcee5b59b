package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gosimrt/scheduler/gpi"
)

// readyEntry is one task waiting to be advanced, carrying the outcome to
// inject into it (Value(nil) for a fresh Spawn, the fired trigger's
// resume outcome otherwise).
type readyEntry struct {
	task    *Task
	outcome Outcome
}

// waitRecord is what the scheduler remembers about a PENDING task so it
// can be torn down cleanly on Cancel/Kill: which trigger it is waiting on
// and the handle it holds there.
type waitRecord struct {
	trigger Trigger
	handle  HandleID
}

// Scheduler is the cooperative core spec.md §4.5 describes: it owns a
// ready queue, a trigger-wait table, and the current simulator Phase, and
// drives task goroutines one at a time via Task.advance. Grounded on the
// teacher event loop's Loop type (Run/Shutdown/cleanup) and its state.go
// CAS-guarded lifecycle.
type Scheduler struct {
	name            string
	runID           string
	log             Logger
	shutdownTimeout time.Duration
	sim             gpi.Simulator

	mu       sync.Mutex
	registry *taskRegistry
	ready    []readyEntry
	waiting  map[uint64]waitRecord
	write    *writeScheduler
	phase    Phase
	external []func()
}

// New constructs a Scheduler driving sim, applying opts in order.
func New(sim gpi.Simulator, opts ...Option) *Scheduler {
	s := &Scheduler{
		runID:           uuid.NewString(),
		log:             NewNoOpLogger(),
		shutdownTimeout: 5 * time.Second,
		sim:             sim,
		registry:        newTaskRegistry(),
		waiting:         make(map[uint64]waitRecord),
	}
	s.write = newWriteScheduler(sim)
	for _, opt := range opts {
		opt(s)
	}
	s.armPhaseObservers()
	return s
}

// RunID returns this scheduler instance's correlation id, used in log
// lines the way the teacher's Loop tags entries with a loop id.
func (s *Scheduler) RunID() string { return s.runID }

// Phase returns the simulator phase the scheduler currently believes it
// is in.
func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Spawn creates and schedules a new Task running fn, returning
// immediately; fn does not start executing until the scheduler next
// drains its ready queue.
func (s *Scheduler) Spawn(name string, fn TaskFunc) *Task {
	s.mu.Lock()
	id := s.registry.allocID()
	s.mu.Unlock()

	t := newTask(id, name, fn, s, s.log)

	s.mu.Lock()
	s.registry.put(t)
	s.mu.Unlock()

	logf(s.log, LevelDebug, "task spawned", Field{"task_id", id}, Field{"name", name})
	s.enqueueReady(t, Value(nil))
	return t
}

// enqueueReady performs the required state transition then appends task
// to the ready queue.
func (s *Scheduler) enqueueReady(t *Task, outcome Outcome) {
	if err := t.markQueued(); err != nil {
		logf(s.log, LevelWarn, "enqueue rejected", Field{"task_id", t.id}, Field{"err", err.Error()})
		return
	}
	s.mu.Lock()
	s.ready = append(s.ready, readyEntry{task: t, outcome: outcome})
	s.mu.Unlock()
}

func (s *Scheduler) popReady() (readyEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		return readyEntry{}, false
	}
	e := s.ready[0]
	s.ready = s.ready[1:]
	return e, true
}

// DrainReady advances every task currently on the ready queue, including
// any newly readied as a direct consequence (e.g. a NullTrigger-awaiting
// task re-queuing itself), until the queue is empty — first draining any
// functions foreign goroutines queued via QueueFunction, so their effects
// (e.g. spawning or resuming a task) are visible before this pass ends.
func (s *Scheduler) DrainReady() {
	for {
		didWork := s.drainExternal()
		if e, ok := s.popReady(); ok {
			s.advanceTask(e.task, e.outcome)
			didWork = true
		}
		if !didWork {
			return
		}
	}
}

func (s *Scheduler) drainExternal() bool {
	s.mu.Lock()
	fns := s.external
	s.external = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns) > 0
}

func (s *Scheduler) advanceTask(t *Task, outcome Outcome) {
	logf(s.log, LevelDebug, "task advancing", Field{"task_id", t.id}, Field{"state", t.State().String()})
	trigger, terminal := t.advance(outcome)
	if terminal {
		s.mu.Lock()
		s.registry.delete(t.id)
		s.mu.Unlock()
		logf(s.log, LevelDebug, "task finished", Field{"task_id", t.id})
		return
	}
	s.suspend(t, trigger)
}

// suspend registers t on trigger; when it fires, t is re-queued with the
// trigger's resume outcome. A priming failure forcibly finishes t with a
// TriggerException instead of leaving it stuck.
func (s *Scheduler) suspend(t *Task, trigger Trigger) {
	handle, err := trigger.register(func(fired Trigger) {
		s.mu.Lock()
		delete(s.waiting, t.id)
		s.mu.Unlock()
		s.enqueueReady(t, resumeOutcomeFor(fired))
	})
	if err != nil {
		logf(s.log, LevelError, "trigger prime failed", Field{"task_id", t.id}, Field{"trigger", trigger.name()})
		t.finish(TaskFinished, Error(&TriggerException{Trigger: trigger.name(), Cause: err}))
		s.mu.Lock()
		s.registry.delete(t.id)
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.waiting[t.id] = waitRecord{trigger: trigger, handle: handle}
	s.mu.Unlock()
}

func resumeOutcomeFor(fired Trigger) Outcome {
	if ro, ok := fired.(resumeOutcomer); ok {
		return ro.resumeOutcome()
	}
	return Value(fired)
}

// unschedule removes t from whatever the scheduler is holding it in —
// the ready queue, or a trigger's wait list, and the task registry — so
// Task.Cancel/Kill can force termination without leaving dangling
// registrations.
func (s *Scheduler) unschedule(t *Task) {
	s.mu.Lock()
	s.registry.delete(t.id)
	wr, waiting := s.waiting[t.id]
	delete(s.waiting, t.id)
	idx := -1
	for i, e := range s.ready {
		if e.task.id == t.id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		s.ready = append(s.ready[:idx], s.ready[idx+1:]...)
	}
	s.mu.Unlock()

	if waiting {
		wr.trigger.deregister(wr.handle)
	}
}

// RunUntilDone drains the ready queue and, for a *gpi.Fake simulator,
// steps simulated time forward whenever Go-level work has gone quiet,
// until every target task is terminal. Against a real Simulator — which
// drives its own event loop and calls back into the scheduler rather than
// being polled — it instead blocks for the targets' done-callbacks to
// fire, trusting the simulator to keep calling back until they do.
func (s *Scheduler) RunUntilDone(targets ...*Task) error {
	if len(targets) == 0 {
		s.DrainReady()
		return nil
	}

	var remaining int32 = int32(len(targets))
	done := make(chan struct{})
	var closeOnce sync.Once
	for _, t := range targets {
		t.OnDone(func(*Task) {
			if atomic.AddInt32(&remaining, -1) == 0 {
				closeOnce.Do(func() { close(done) })
			}
		})
	}

	fake, isFake := s.sim.(*gpi.Fake)
	for {
		s.DrainReady()
		select {
		case <-done:
			return nil
		default:
		}
		if !isFake {
			<-done
			return nil
		}
		if !fake.Step() {
			return ErrSchedulerTerminated
		}
	}
}

// Shutdown cancels every live task, in no particular order, and waits up to
// the configured shutdown timeout for their done-callbacks to settle —
// grounded on the teacher Loop's Shutdown/cleanup pass over outstanding
// promises and timers.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	tasks := make([]*Task, 0, s.registry.len())
	for _, t := range s.registry.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, t := range tasks {
		t.OnDone(func(*Task) { wg.Done() })
		t.Cancel("scheduler shutdown")
	}

	wait := make(chan struct{})
	go func() {
		wg.Wait()
		close(wait)
	}()
	select {
	case <-wait:
	case <-time.After(s.shutdownTimeout):
		logf(s.log, LevelWarn, "shutdown timed out waiting for tasks", Field{"remaining", len(tasks)})
	}
}
