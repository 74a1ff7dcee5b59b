package gpi

import (
	"container/heap"
	"fmt"
	"sync"
	"time"
)

// Fake is an in-memory Simulator used by tests, examples and cmd/cosimctl
// in absence of a real HDL simulator — the same role the teacher event
// loop's single in-process FastPoller implementation plays for automated
// tests of the polling layer, minus any actual OS I/O.
type Fake struct {
	mu         sync.Mutex
	now        time.Duration
	precision  time.Duration
	nextHandle uint64

	timed     timedHeap
	vc        map[string][]vcWatch
	signals   map[string]uint64
	readWrite []regEntry
	readOnly  []regEntry
	nextStep  []regEntry

	eventCB func(string)
}

// NewFake returns an empty Fake simulator with the given time precision
// (e.g. time.Nanosecond).
func NewFake(precision time.Duration) *Fake {
	return &Fake{
		precision: precision,
		vc:        make(map[string][]vcWatch),
		signals:   make(map[string]uint64),
	}
}

type regEntry struct {
	handle Handle
	cb     func()
}

type vcWatch struct {
	handle Handle
	edge   Edge
	cb     func()
}

type timedEntry struct {
	handle   Handle
	deadline time.Duration
	seq      uint64
	cb       func()
}

type timedHeap []timedEntry

func (h timedHeap) Len() int { return len(h) }
func (h timedHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h timedHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *timedHeap) Push(x any)        { *h = append(*h, x.(timedEntry)) }
func (h *timedHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

func (f *Fake) alloc() Handle {
	f.nextHandle++
	return Handle(f.nextHandle)
}

func (f *Fake) RegisterTimed(delay time.Duration, cb func()) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.alloc()
	heap.Push(&f.timed, timedEntry{handle: h, deadline: f.now + delay, seq: f.nextHandle, cb: cb})
	return h, nil
}

func (f *Fake) RegisterValueChange(signal string, edge Edge, cb func()) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.alloc()
	f.vc[signal] = append(f.vc[signal], vcWatch{handle: h, edge: edge, cb: cb})
	return h, nil
}

func (f *Fake) RegisterReadWrite(cb func()) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.alloc()
	f.readWrite = append(f.readWrite, regEntry{handle: h, cb: cb})
	return h, nil
}

func (f *Fake) RegisterReadOnly(cb func()) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.alloc()
	f.readOnly = append(f.readOnly, regEntry{handle: h, cb: cb})
	return h, nil
}

func (f *Fake) RegisterNextTimeStep(cb func()) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.alloc()
	f.nextStep = append(f.nextStep, regEntry{handle: h, cb: cb})
	return h, nil
}

func (f *Fake) Deregister(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.timed {
		if f.timed[i].handle == h {
			heap.Remove(&f.timed, i)
			return
		}
	}
	for sig, watches := range f.vc {
		for i, w := range watches {
			if w.handle == h {
				f.vc[sig] = append(watches[:i], watches[i+1:]...)
				return
			}
		}
	}
	f.readWrite = removeEntry(f.readWrite, h)
	f.readOnly = removeEntry(f.readOnly, h)
	f.nextStep = removeEntry(f.nextStep, h)
}

func removeEntry(entries []regEntry, h Handle) []regEntry {
	for i, e := range entries {
		if e.handle == h {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func (f *Fake) ReadSignal(path string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signals[path], nil
}

// WriteSignal applies value immediately and fires any matching
// value-change watchers. Real GPI backends apply the write through the
// simulator kernel instead; sched's write-scheduler is what defers calls
// to this method until the ReadWrite phase.
func (f *Fake) WriteSignal(path string, value uint64) error {
	f.mu.Lock()
	prev, had := f.signals[path]
	f.signals[path] = value
	watches := append([]vcWatch(nil), f.vc[path]...)
	f.mu.Unlock()

	for _, w := range watches {
		if matchesEdge(w.edge, prev, value, had) {
			w.cb()
		}
	}
	return nil
}

func matchesEdge(edge Edge, prev, next uint64, had bool) bool {
	if !had {
		return true
	}
	if prev == next {
		return false
	}
	switch edge {
	case EdgeRising:
		return prev == 0 && next != 0
	case EdgeFalling:
		return prev != 0 && next == 0
	default:
		return true
	}
}

func (f *Fake) Time() time.Duration      { f.mu.Lock(); defer f.mu.Unlock(); return f.now }
func (f *Fake) Precision() time.Duration { return f.precision }

func (f *Fake) SetSimEventCallback(cb func(event string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCB = cb
}

// Finish invokes the registered sim-event callback (if any) with "finish",
// mirroring a real simulator's end-of-run notification.
func (f *Fake) Finish() {
	f.mu.Lock()
	cb := f.eventCB
	f.mu.Unlock()
	if cb != nil {
		cb("finish")
	}
}

// Step advances the fake simulator by one logical time point: firing any
// timed callbacks due next, then draining ReadWrite, then ReadOnly, then
// (if any timed callback fired) NextTimeStep callbacks — the same ordering
// spec.md §6.2/§6.1 requires of a real GPI backend. It reports whether
// there was anything to do.
func (f *Fake) Step() bool {
	advanced := f.fireDueTimers()

	didWork := advanced
	if f.drainReadWrite() {
		didWork = true
	}
	if f.drainReadOnly() {
		didWork = true
	}
	if advanced {
		if f.drainNextStep() {
			didWork = true
		}
	}
	return didWork
}

func (f *Fake) fireDueTimers() bool {
	f.mu.Lock()
	if len(f.timed) == 0 {
		f.mu.Unlock()
		return false
	}
	deadline := f.timed[0].deadline
	if deadline > f.now {
		f.now = deadline
	}
	var due []timedEntry
	for len(f.timed) > 0 && f.timed[0].deadline == deadline {
		due = append(due, heap.Pop(&f.timed).(timedEntry))
	}
	f.mu.Unlock()

	for _, e := range due {
		e.cb()
	}
	return true
}

func (f *Fake) drainReadWrite() bool {
	f.mu.Lock()
	entries := f.readWrite
	f.readWrite = nil
	f.mu.Unlock()
	for _, e := range entries {
		e.cb()
	}
	return len(entries) > 0
}

func (f *Fake) drainReadOnly() bool {
	f.mu.Lock()
	entries := f.readOnly
	f.readOnly = nil
	f.mu.Unlock()
	for _, e := range entries {
		e.cb()
	}
	return len(entries) > 0
}

func (f *Fake) drainNextStep() bool {
	f.mu.Lock()
	entries := f.nextStep
	f.nextStep = nil
	f.mu.Unlock()
	for _, e := range entries {
		e.cb()
	}
	return len(entries) > 0
}

// Run steps the fake simulator until neither timers nor any phase queue
// has pending work, or maxSteps is exhausted — guarding tests and
// cmd/cosimctl against a runaway task graph that never goes quiet.
func (f *Fake) Run(maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		if !f.Step() {
			return nil
		}
	}
	return fmt.Errorf("gpi: fake simulator did not quiesce within %d steps", maxSteps)
}
