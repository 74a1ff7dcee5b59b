package sched

// RunInExecutor offloads a blocking call onto its own goroutine without
// blocking the single-threaded scheduler: the calling task suspends on an
// Event that a helper goroutine Sets once fn returns, then resumes with
// fn's result. This is the Go-native counterpart to cocotb's
// run_in_executor, grounded on the teacher's promisify.go pattern of
// wrapping a goroutine's return value/panic as a settled result and
// handing it back through a channel-backed primitive — here, an Event.
func RunInExecutor(t *Task, fn func() (any, error)) (any, error) {
	done := NewEvent("run_in_executor")
	var result Outcome
	go func() {
		result = capture(fn)
		done.Set()
	}()

	if _, err := t.Await(done.Wait()); err != nil {
		// the task was cancelled or killed while waiting; fn's goroutine is
		// abandoned to finish on its own, matching spec.md's allowance that
		// Go cannot forcibly unwind a blocked foreign call.
		return nil, err
	}
	return result.Value, result.Err
}

// QueueFunction schedules fn to run on the scheduler's own goroutine at
// its next DrainReady pass, the safe way for a foreign goroutine (one not
// part of the cooperative task pool — e.g. a callback delivered on an
// external library's own thread) to inject work such as spawning or
// resuming a task. Grounded on the teacher's ingress.go ChunkedIngress,
// which plays the identical "foreign producer, single-consumer-loop"
// role for the JS-compatible event loop.
func (s *Scheduler) QueueFunction(fn func()) {
	s.mu.Lock()
	s.external = append(s.external, fn)
	s.mu.Unlock()
}
