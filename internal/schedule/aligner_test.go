// ABOUTME: Tests for the phase-aligned scheduler
// ABOUTME: Verifies boundary alignment, drift-free cycles, overrun handling, and cancellation
package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// runCycles runs the aligner until the action has fired n times.
func runCycles(t *testing.T, a *Aligner, n int, body func()) []time.Time {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fires []time.Time
	err := a.Run(ctx, func() error {
		fires = append(fires, a.Clock.Now())
		if body != nil {
			body()
		}
		if len(fires) >= n {
			cancel()
		}
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, fires, n)
	return fires
}

func TestRunAlignsToSecondBoundaries(t *testing.T) {
	// Start 314ms into a second; every fire after the first must land on
	// an exact boundary.
	start := time.Date(2026, 1, 2, 3, 4, 5, 314_000_000, time.UTC)
	fake := clock.NewFake(start)
	a := &Aligner{Clock: fake, Period: time.Second}

	fires := runCycles(t, a, 10, nil)

	for i, ts := range fires[1:] {
		assert.Zero(t, ts.Nanosecond(), "fire %d not on a second boundary: %v", i+1, ts)
	}
}

func TestRunDoesNotAccumulateDrift(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 777_000_000, time.UTC)
	fake := clock.NewFake(start)
	a := &Aligner{Clock: fake, Period: time.Second}

	// Each action body consumes 40ms; the sleep must absorb it.
	fires := runCycles(t, a, 150, func() { fake.Advance(40 * time.Millisecond) })

	for i := 2; i < len(fires); i++ {
		assert.Equal(t, time.Second, fires[i].Sub(fires[i-1]),
			"drift between cycle %d and %d", i-1, i)
	}
	assert.Zero(t, a.Stats().Overruns)
}

func TestRunOverrunFiresImmediately(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	fake := clock.NewFake(start)
	a := &Aligner{Clock: fake, Period: time.Second}

	cycle := 0
	fires := runCycles(t, a, 6, func() {
		cycle++
		if cycle == 3 {
			// Overrun: the action takes 2.5 periods.
			fake.Advance(2500 * time.Millisecond)
		}
	})

	// No sleep request may ever be non-positive.
	for _, d := range fake.Sleeps() {
		assert.Positive(t, d)
	}

	// The cycle after the overrun fires immediately (same instant the
	// overrunning action finished), then alignment recovers.
	assert.Equal(t, fires[2].Add(2500*time.Millisecond), fires[3])
	assert.Zero(t, fires[4].Nanosecond(), "alignment must recover after an overrun")
	assert.Equal(t, int64(1), a.Stats().Overruns)
}

func TestRunActionErrorDoesNotStopLoop(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	a := &Aligner{Clock: fake, Period: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	err := a.Run(ctx, func() error {
		calls++
		if calls == 10 {
			cancel()
		}
		return errors.New("send failed")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, calls, "failing actions must not terminate the loop")
	assert.Equal(t, int64(10), a.Stats().Cycles)
}

func TestRunZeroPeriodDefaultsToOneSecond(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 1, 2, 3, 4, 5, 100_000_000, time.UTC))
	a := &Aligner{Clock: fake}

	fires := runCycles(t, a, 3, nil)

	assert.Equal(t, time.Second, fires[2].Sub(fires[1]))
}

func TestRunObservesCancellationBeforeFirstCycle(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	a := &Aligner{Clock: fake, Period: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx, func() error {
		t.Fatal("action must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
