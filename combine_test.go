package sched

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombineWaitsForEveryTrigger(t *testing.T) {
	e1, e2 := NewEvent("a"), NewEvent("b")
	c := Combine(e1.Wait(), e2.Wait())

	var fired bool
	_, err := c.register(func(Trigger) { fired = true })
	require.NoError(t, err)
	require.False(t, fired)

	e1.Set()
	require.False(t, fired, "Combine must not fire until every sub-trigger has fired")

	e2.Set()
	require.True(t, fired)
}

func TestFirstFiresOnceAndReleasesTheRest(t *testing.T) {
	e1, e2 := NewEvent("a"), NewEvent("b")
	f := First(e1.Wait(), e2.Wait())

	var winner Trigger
	calls := 0
	_, err := f.register(func(t Trigger) {
		calls++
		winner = t
	})
	require.NoError(t, err)

	e1.Set()
	require.Equal(t, 1, calls)
	require.NotNil(t, winner)

	// e2 firing afterwards must not re-trigger First's callback: its
	// registration was released when First settled.
	e2.Set()
	require.Equal(t, 1, calls)
}
