package sched

import "time"

// Option configures a Scheduler at construction time, following the
// teacher event loop's functional-options pattern in its own options.go.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's Logger (NewNoOpLogger by default).
func WithLogger(log Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithName attaches a label to the scheduler, surfaced in log lines for
// correlation when multiple schedulers run in one process (e.g. parallel
// cosimulation runs in a test binary).
func WithName(name string) Option {
	return func(s *Scheduler) { s.name = name }
}

// WithShutdownTimeout bounds how long Shutdown waits for the cancelled
// tasks' done-callbacks to run before returning anyway.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}
