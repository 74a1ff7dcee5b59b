package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosimrt/scheduler/gpi"
)

func TestSchedulerTimerAwaitAndResult(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	task := s.Spawn("t", func(tk *Task) (any, error) {
		if _, err := tk.Await(NewTimer(sim, 10*time.Nanosecond)); err != nil {
			return nil, err
		}
		return 42, nil
	})

	require.NoError(t, s.RunUntilDone(task))
	require.Equal(t, TaskFinished, task.State())

	v, err := task.Result()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 10*time.Nanosecond, sim.Time())
}

func TestSchedulerJoinYieldsChildResult(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	child := s.Spawn("child", func(tk *Task) (any, error) {
		if _, err := tk.Await(NewTimer(sim, 5*time.Nanosecond)); err != nil {
			return nil, err
		}
		return "child-result", nil
	})
	parent := s.Spawn("parent", func(tk *Task) (any, error) {
		return tk.Await(Join(child))
	})

	require.NoError(t, s.RunUntilDone(parent))
	v, err := parent.Result()
	require.NoError(t, err)
	require.Equal(t, "child-result", v)
}

func TestSchedulerJoinPropagatesChildError(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	boom := &RangeError{Message: "boom"}
	child := s.Spawn("child", func(*Task) (any, error) {
		return nil, boom
	})
	parent := s.Spawn("parent", func(tk *Task) (any, error) {
		return tk.Await(Join(child))
	})

	require.NoError(t, s.RunUntilDone(parent))
	_, err := parent.Result()
	require.ErrorIs(t, err, boom)
}

func TestSchedulerWithTimeoutSurfacesTimeout(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	slow := NewEvent("never-set")
	task := s.Spawn("t", func(tk *Task) (any, error) {
		_, err := tk.Await(WithTimeout(sim, slow.Wait(), 10*time.Nanosecond))
		return nil, err
	})

	require.NoError(t, s.RunUntilDone(task))
	_, err := task.Result()
	require.Error(t, err)
	var timeoutErr *SimTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestSchedulerWithTimeoutAwaitableWinsFirst(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	e := NewEvent("wins")
	task := s.Spawn("t", func(tk *Task) (any, error) {
		return tk.Await(WithTimeout(sim, e.Wait(), time.Hour))
	})
	s.DrainReady()
	e.Set()
	require.NoError(t, s.RunUntilDone(task))

	_, err := task.Result()
	require.NoError(t, err)
}

func TestTaskCancelWhilePendingOnTimer(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	task := s.Spawn("t", func(tk *Task) (any, error) {
		_, err := tk.Await(NewTimer(sim, time.Hour))
		return nil, err
	})
	s.DrainReady() // task starts and suspends on the Timer

	require.Equal(t, TaskPending, task.State())
	task.Cancel("shutting down")
	require.Equal(t, TaskCancelled, task.State())

	_, err := task.Result()
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
}

func TestTaskKillRecordsSilentOutcome(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	task := s.Spawn("t", func(tk *Task) (any, error) {
		_, err := tk.Await(NewTimer(sim, time.Hour))
		return nil, err
	})
	s.DrainReady()

	task.Kill()
	require.True(t, task.Killed())
	v, err := task.Result()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSchedulerWriteBufferingOutsideReadWrite(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	require.NoError(t, s.WriteSignal("top.sig", 7))
	// Outside the ReadWrite phase the write must not be visible yet.
	v, _ := sim.ReadSignal("top.sig")
	require.EqualValues(t, 0, v)

	// Stepping the fake simulator runs its ReadWrite phase, which the
	// scheduler's phase observer uses to flush the buffered write.
	require.True(t, sim.Step())
	v, _ = sim.ReadSignal("top.sig")
	require.EqualValues(t, 7, v)
}
