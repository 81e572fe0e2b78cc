package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 },
		time.Second, 5*time.Millisecond)

	// stays at one after the quiet period
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_TriggerAfterQuietPeriodFiresAgain(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { calls.Add(1) })
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 1 },
		time.Second, time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 2 },
		time.Second, time.Millisecond)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	// a stopped debouncer cannot be re-armed
	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRunEvery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunEvery(ctx, 10*time.Millisecond, func() { calls.Add(1) })
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 },
		time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEvery did not stop after context cancellation")
	}
}
