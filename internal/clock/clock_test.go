// ABOUTME: Tests for the clock source adapter
// ABOUTME: Covers system clock reads, cancellable sleep, and the fake clock
package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemMonoIncreases(t *testing.T) {
	c := NewSystem()

	a := c.Mono()
	time.Sleep(time.Millisecond)
	b := c.Mono()

	assert.Greater(t, b, a, "monotonic reading should increase")
}

func TestSystemSleepNonPositive(t *testing.T) {
	c := NewSystem()

	start := time.Now()
	err := c.Sleep(context.Background(), -time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond, "negative sleep must return immediately")
}

func TestSystemSleepCancelled(t *testing.T) {
	c := NewSystem()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := c.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "cancelled sleep must return promptly")
}

func TestFakeSleepAdvancesTime(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	f := NewFake(start)

	require.NoError(t, f.Sleep(context.Background(), 2*time.Second))

	assert.Equal(t, start.Add(2*time.Second), f.Now())
	assert.Equal(t, 2*time.Second, f.Mono())
	assert.Equal(t, []time.Duration{2 * time.Second}, f.Sleeps())
}

func TestFakeAdvanceIsNotASleep(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	f.Advance(500 * time.Millisecond)

	assert.Equal(t, 500*time.Millisecond, f.Mono())
	assert.Empty(t, f.Sleeps())
}

func TestFakeSleepCancelled(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Sleep(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, time.Duration(0), f.Mono(), "cancelled sleep must not advance time")
}
