package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosimrt/scheduler/gpi"
)

func TestTaskOnDoneFiresOnceAndImmediatelyWhenAlreadyTerminal(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	calls := 0
	task := s.Spawn("t", func(*Task) (any, error) { return "done", nil })
	task.OnDone(func(*Task) { calls++ })

	require.NoError(t, s.RunUntilDone(task))
	require.Equal(t, 1, calls)

	// Registering after the task is already terminal must invoke the
	// callback immediately, without a second contribution to calls from
	// the original registration firing twice.
	task.OnDone(func(*Task) { calls++ })
	require.Equal(t, 2, calls)
}

func TestTaskStateTransitionsThroughLifecycle(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	started := NewEvent("started")
	release := NewEvent("release")
	task := s.Spawn("t", func(tk *Task) (any, error) {
		started.Set()
		_, err := tk.Await(release.Wait())
		return nil, err
	})

	require.Equal(t, TaskScheduled, task.State())
	s.DrainReady()
	require.True(t, started.IsSet())
	require.Equal(t, TaskPending, task.State())

	release.Set()
	s.DrainReady()
	require.Equal(t, TaskFinished, task.State())
}

func TestTaskResultBeforeDoneReturnsErrTaskNotDone(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	block := NewEvent("block")
	task := s.Spawn("t", func(tk *Task) (any, error) {
		return tk.Await(block.Wait())
	})
	s.DrainReady()

	_, err := task.Result()
	require.ErrorIs(t, err, ErrTaskNotDone)
}

func TestTaskCancelOnAlreadyFinishedTaskIsNoOp(t *testing.T) {
	sim := gpi.NewFake(time.Nanosecond)
	s := New(sim)

	task := s.Spawn("t", func(*Task) (any, error) { return "ok", nil })
	require.NoError(t, s.RunUntilDone(task))

	task.Cancel("too late")
	require.Equal(t, TaskFinished, task.State())
	v, err := task.Result()
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}
