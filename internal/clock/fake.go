// ABOUTME: Deterministic fake clock for tests
// ABOUTME: Sleeps advance simulated time instantly and every request is recorded
package clock

import (
	"context"
	"sync"
	"time"
)

// Fake is a manually stepped Clock. Sleep advances the simulated time by the
// requested duration instead of blocking, which lets scheduler tests run
// hundreds of simulated cycles instantly.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	mono   time.Duration
	sleeps []time.Duration
}

// NewFake creates a fake clock starting at the given wall-clock instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current simulated wall-clock time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Mono returns simulated monotonic time elapsed since creation.
func (f *Fake) Mono() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mono
}

// Since returns the simulated duration elapsed since t.
func (f *Fake) Since(t time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.Sub(t)
}

// Sleep records the request and advances simulated time by d.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	f.mono += d
	f.mu.Unlock()

	return nil
}

// Advance moves simulated time forward by d without recording a sleep.
// Used to model work that consumes time inside an action body.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mono += d
	f.mu.Unlock()
}

// Sleeps returns a copy of every sleep duration requested so far.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.sleeps))
	copy(out, f.sleeps)
	return out
}
