// Package sched provides the cooperative task scheduler and trigger system
// at the core of a hardware-simulator cosimulation runtime: user testbench
// code, written as goroutine-backed coroutines, is driven and observed
// through a generic procedural interface (GPI) exposed by a running
// digital-logic simulator.
//
// # Architecture
//
// The scheduler is built around a [Scheduler] core that owns a ready queue,
// the current simulator [Phase], and a trigger→tasks map. A [Task] wraps
// one coroutine and tracks its lifecycle via a [stateless.StateMachine].
// Coroutines suspend by yielding a [Trigger] — [Timer], [ValueChange],
// [RisingEdge], [FallingEdge], [ReadWriteTrigger], [ReadOnlyTrigger],
// [NextTimeStep], [Event.Wait], [Lock.Acquire], [NullTrigger], [Join],
// [Combine] or [First] — which the scheduler primes against its fire
// source and re-queues the task when it fires.
//
// # Phase discipline
//
// Signal writes issued outside the ReadWrite phase are buffered by the
// [writeScheduler] and replayed, in insertion order, the next time the
// simulator enters ReadWrite.
//
// # Foreign threads
//
// [RunInExecutor] and [Scheduler.QueueFunction] bridge blocking foreign goroutines
// ("externals") with the single-threaded scheduler, following the
// rendezvous design in external.go.
//
// # Usage
//
//	sim := gpi.NewFake(time.Nanosecond)
//	s := sched.New(sim, sched.WithLogger(sched.NewLogifaceLogger(os.Stderr, sched.LevelInfo)))
//
//	task := s.Spawn("demo", func(t *sched.Task) (any, error) {
//	    if _, err := t.Await(sched.NewTimer(sim, 10*time.Nanosecond)); err != nil {
//	        return nil, err
//	    }
//	    return nil, nil
//	})
//
//	s.RunUntilDone(task)
package sched
