package sched

import "sync"

// Join returns a Trigger that fires when task reaches a terminal state;
// awaiting it yields the joined task's result (or its error), matching
// cocotb's `await Join(coro)` returning the joined coroutine's return
// value. Grounded on the teacher's promise.go subscriber-list/ToChannel
// pattern, generalized from "subscribe to one promise settling" to
// "subscribe to one task's done-callback list".
func Join(task *Task) Trigger {
	j := &joinTrigger{task: task}
	j.base = newBase(j)
	return j
}

type joinTrigger struct {
	*base
	task *Task

	mu     sync.Mutex
	active bool
}

func (j *joinTrigger) name() string { return "Join" }

func (j *joinTrigger) prime() error {
	j.mu.Lock()
	j.active = true
	j.mu.Unlock()

	j.task.OnDone(func(*Task) {
		j.mu.Lock()
		active := j.active
		j.mu.Unlock()
		if active {
			j.base.react(j)
		}
	})
	return nil
}

func (j *joinTrigger) unprime() {
	j.mu.Lock()
	j.active = false
	j.mu.Unlock()
}

func (j *joinTrigger) cleanup() {}

// resumeOutcome implements resumeOutcomer: the task awaiting Join(task)
// receives task's own outcome, not the Join trigger.
func (j *joinTrigger) resumeOutcome() Outcome {
	v, err := j.task.Result()
	return Outcome{Value: v, Err: err}
}
