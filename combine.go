package sched

import "sync"

// subHandle pairs a sub-trigger with the HandleID this composite holds on
// it, so unprime can cleanly deregister.
type subHandle struct {
	trigger Trigger
	id      HandleID
}

// Combine returns a Trigger that fires once every trigger in triggers has
// fired at least once — the "wait for all" composite spec.md calls for,
// grounded on the teacher promise.go's Promise.All fan-in counter.
func Combine(triggers ...Trigger) Trigger {
	c := &combineTrigger{remaining: triggers}
	c.base = newBase(c)
	return c
}

type combineTrigger struct {
	*base
	remaining []Trigger

	mu      sync.Mutex
	pending int
	subs    []subHandle
}

func (c *combineTrigger) name() string { return "Combine" }

func (c *combineTrigger) prime() error {
	c.mu.Lock()
	c.pending = len(c.remaining)
	c.mu.Unlock()

	if c.pending == 0 {
		c.base.react(c)
		return nil
	}

	for _, sub := range c.remaining {
		sub := sub
		id, err := sub.register(func(Trigger) {
			c.mu.Lock()
			c.pending--
			done := c.pending == 0
			c.mu.Unlock()
			if done {
				c.base.react(c)
			}
		})
		if err != nil {
			c.unprime()
			return err
		}
		c.mu.Lock()
		c.subs = append(c.subs, subHandle{trigger: sub, id: id})
		c.mu.Unlock()
	}
	return nil
}

// release deregisters from every sub-trigger this composite is still
// holding a handle on. It runs both when the composite fires normally
// (cleanup, after all subs have already settled themselves — deregister
// on an already-drained handle is a harmless no-op) and when it is
// abandoned before firing (unprime, e.g. the waiting task was cancelled).
func (c *combineTrigger) release() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, s := range subs {
		s.trigger.deregister(s.id)
	}
}

func (c *combineTrigger) unprime() { c.release() }
func (c *combineTrigger) cleanup() { c.release() }

// First returns a Trigger that fires as soon as any one of triggers
// fires, then deregisters the rest — the "wait for any" composite,
// grounded on the teacher promise.go's Promise.Race-style first-settle
// fan-in, with_timeout (timeout.go) is built directly on this.
func First(triggers ...Trigger) Trigger {
	f := &firstTrigger{options: triggers}
	f.base = newBase(f)
	return f
}

type firstTrigger struct {
	*base
	options []Trigger

	mu     sync.Mutex
	fired  bool
	subs   []subHandle
	winner Trigger
}

func (f *firstTrigger) name() string { return "First" }

func (f *firstTrigger) prime() error {
	for _, opt := range f.options {
		opt := opt
		id, err := opt.register(func(t Trigger) {
			f.mu.Lock()
			if f.fired {
				f.mu.Unlock()
				return
			}
			f.fired = true
			f.winner = t
			f.mu.Unlock()
			f.base.react(f)
		})
		if err != nil {
			f.unprime()
			return err
		}
		f.mu.Lock()
		f.subs = append(f.subs, subHandle{trigger: opt, id: id})
		f.mu.Unlock()
	}
	return nil
}

// release deregisters from every option not already drained by its own
// firing, whether First fired (cleanup) or was abandoned (unprime).
func (f *firstTrigger) release() {
	f.mu.Lock()
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()
	for _, s := range subs {
		s.trigger.deregister(s.id)
	}
}

func (f *firstTrigger) unprime() { f.release() }
func (f *firstTrigger) cleanup() { f.release() }

// winnerTrigger returns whichever option fired, or nil before that.
func (f *firstTrigger) winnerTrigger() Trigger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.winner
}

// resumeOutcome forwards the winning sub-trigger's own resume outcome
// (e.g. a joined task's result, if First(Join(t), Timer(...)) fired on the
// Join side) rather than resolving to the First trigger itself.
func (f *firstTrigger) resumeOutcome() Outcome {
	f.mu.Lock()
	winner := f.winner
	f.mu.Unlock()
	if ro, ok := winner.(resumeOutcomer); ok {
		return ro.resumeOutcome()
	}
	return Value(winner)
}
