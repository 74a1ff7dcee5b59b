package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockFIFOOrdering(t *testing.T) {
	lock := NewLock("test")
	var order []int

	first := lock.Acquire()
	_, err := first.register(func(Trigger) { order = append(order, 1) })
	require.NoError(t, err)
	require.True(t, lock.Locked())
	require.Equal(t, []int{1}, order)

	second := lock.Acquire()
	_, err = second.register(func(Trigger) { order = append(order, 2) })
	require.NoError(t, err)
	require.Equal(t, []int{1}, order, "second waiter must not fire while the lock is held")

	third := lock.Acquire()
	_, err = third.register(func(Trigger) { order = append(order, 3) })
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	require.Equal(t, []int{1, 2}, order, "release must hand the lock to the earliest queued waiter")

	require.NoError(t, lock.Release())
	require.Equal(t, []int{1, 2, 3}, order)

	// The third waiter now holds the lock; its release frees it, and only a
	// further release is a double release.
	require.NoError(t, lock.Release())
	require.ErrorIs(t, lock.Release(), ErrLockNotHeld)
}

func TestLockAcquireImmediateWhenFree(t *testing.T) {
	lock := NewLock("test")
	var fired bool
	_, err := lock.Acquire().register(func(Trigger) { fired = true })
	require.NoError(t, err)
	require.True(t, fired)
}
