package gpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeRegisterTimedFiresInDeadlineOrder(t *testing.T) {
	f := NewFake(time.Nanosecond)
	var order []int

	_, err := f.RegisterTimed(20*time.Nanosecond, func() { order = append(order, 2) })
	require.NoError(t, err)
	_, err = f.RegisterTimed(10*time.Nanosecond, func() { order = append(order, 1) })
	require.NoError(t, err)
	_, err = f.RegisterTimed(30*time.Nanosecond, func() { order = append(order, 3) })
	require.NoError(t, err)

	require.NoError(t, f.Run(10))
	require.Equal(t, []int{1, 2, 3}, order)
	require.Equal(t, 30*time.Nanosecond, f.Time())
}

func TestFakeDeregisterRemovesTimedCallback(t *testing.T) {
	f := NewFake(time.Nanosecond)
	var fired bool
	h, err := f.RegisterTimed(10*time.Nanosecond, func() { fired = true })
	require.NoError(t, err)

	f.Deregister(h)
	require.NoError(t, f.Run(5))
	require.False(t, fired)
}

func TestFakeValueChangeEdgeMatching(t *testing.T) {
	f := NewFake(time.Nanosecond)
	var risingCount, fallingCount, anyCount int

	_, err := f.RegisterValueChange("sig", EdgeRising, func() { risingCount++ })
	require.NoError(t, err)
	_, err = f.RegisterValueChange("sig", EdgeFalling, func() { fallingCount++ })
	require.NoError(t, err)
	_, err = f.RegisterValueChange("sig", EdgeAny, func() { anyCount++ })
	require.NoError(t, err)

	require.NoError(t, f.WriteSignal("sig", 0)) // first write: had=false, "any" semantics for all watchers
	require.NoError(t, f.WriteSignal("sig", 1)) // 0 -> 1: rising
	require.NoError(t, f.WriteSignal("sig", 1)) // no change: nothing fires
	require.NoError(t, f.WriteSignal("sig", 0)) // 1 -> 0: falling

	require.Equal(t, 2, risingCount) // first write (unconditional) + the 0->1 transition
	require.Equal(t, 2, fallingCount)
	require.Equal(t, 3, anyCount) // every write except the 1->1 no-op
}

func TestFakeStepOrdersReadWriteBeforeReadOnlyBeforeNextTimeStep(t *testing.T) {
	f := NewFake(time.Nanosecond)
	var order []string

	_, err := f.RegisterReadWrite(func() { order = append(order, "rw") })
	require.NoError(t, err)
	_, err = f.RegisterReadOnly(func() { order = append(order, "ro") })
	require.NoError(t, err)
	_, err = f.RegisterNextTimeStep(func() { order = append(order, "nts") })
	require.NoError(t, err)
	_, err = f.RegisterTimed(5*time.Nanosecond, func() { order = append(order, "timer") })
	require.NoError(t, err)

	require.True(t, f.Step())
	require.Equal(t, []string{"timer", "rw", "ro", "nts"}, order)
}

func TestFakeRunReportsErrorWhenNotQuiescing(t *testing.T) {
	f := NewFake(time.Nanosecond)
	var rearm func()
	rearm = func() {
		_, _ = f.RegisterReadWrite(rearm)
	}
	rearm()

	err := f.Run(5)
	require.Error(t, err)
}
