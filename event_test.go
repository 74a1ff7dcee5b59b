package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventFanOutAndLevelSemantics(t *testing.T) {
	e := NewEvent("test")
	var fired []int

	_, err := e.Wait().register(func(Trigger) { fired = append(fired, 1) })
	require.NoError(t, err)
	_, err = e.Wait().register(func(Trigger) { fired = append(fired, 2) })
	require.NoError(t, err)
	require.Empty(t, fired)

	e.Set()
	require.ElementsMatch(t, []int{1, 2}, fired)

	// Waiting after Set observes the still-set flag and fires immediately.
	_, err = e.Wait().register(func(Trigger) { fired = append(fired, 3) })
	require.NoError(t, err)
	require.Contains(t, fired, 3)

	e.Clear()
	require.False(t, e.IsSet())
	var fourthFired bool
	_, err = e.Wait().register(func(Trigger) { fourthFired = true })
	require.NoError(t, err)
	require.False(t, fourthFired, "Wait after Clear must not fire until the next Set")

	e.Set()
	require.True(t, fourthFired)
}

func TestEventWaitUnprimeRemovesWaiter(t *testing.T) {
	e := NewEvent("test")
	var fired bool
	w := e.Wait()
	id, err := w.register(func(Trigger) { fired = true })
	require.NoError(t, err)

	w.deregister(id)
	e.Set()
	require.False(t, fired, "a deregistered waiter must not fire on a later Set")
}
