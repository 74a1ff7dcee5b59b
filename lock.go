package sched

import "sync"

// Lock is a FIFO mutual-exclusion primitive for tasks: Acquire() trigger
// fires immediately if the lock is free, otherwise the caller joins a
// strict first-in-first-out queue released one at a time by Release.
// There is no teacher analog (the event loop has nothing like it); this is
// new code serving spec.md's synchronization-trigger requirement.
type Lock struct {
	mu     sync.Mutex
	locked bool
	queue  []*lockWait
	label  string
}

// NewLock returns an unlocked Lock.
func NewLock(label string) *Lock {
	return &Lock{label: label}
}

// Locked reports whether the lock is currently held.
func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Acquire returns a fresh Trigger that fires once the caller holds the
// lock: immediately if it was free, or after every earlier waiter has
// acquired and released it.
func (l *Lock) Acquire() Trigger {
	w := &lockWait{lock: l}
	w.base = newBase(w)
	return w
}

// Release hands the lock to the next FIFO waiter, or marks it free if
// none are queued. It returns ErrLockNotHeld if the lock is not currently
// held.
func (l *Lock) Release() error {
	l.mu.Lock()
	if !l.locked {
		l.mu.Unlock()
		return ErrLockNotHeld
	}
	if len(l.queue) == 0 {
		l.locked = false
		l.mu.Unlock()
		return nil
	}
	next := l.queue[0]
	l.queue = l.queue[1:]
	l.mu.Unlock()
	next.base.react(next)
	return nil
}

type lockWait struct {
	*base
	lock *Lock
}

func (w *lockWait) name() string { return "Lock(" + w.lock.label + ").acquire" }

func (w *lockWait) prime() error {
	w.lock.mu.Lock()
	if !w.lock.locked {
		w.lock.locked = true
		w.lock.mu.Unlock()
		w.base.react(w)
		return nil
	}
	w.lock.queue = append(w.lock.queue, w)
	w.lock.mu.Unlock()
	return nil
}

func (w *lockWait) unprime() {
	w.lock.mu.Lock()
	defer w.lock.mu.Unlock()
	for i, o := range w.lock.queue {
		if o == w {
			w.lock.queue = append(w.lock.queue[:i], w.lock.queue[i+1:]...)
			break
		}
	}
}

func (w *lockWait) cleanup() {}
