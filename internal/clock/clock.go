// ABOUTME: Clock source adapter over the platform wall and monotonic clocks
// ABOUTME: Injectable seam so timing logic can run against a fake clock in tests
package clock

import (
	"context"
	"time"
)

// Clock exposes the two time domains the node cares about: the wall clock
// for timestamp formatting and the monotonic clock for interval measurement.
// Readings from Now carry Go's monotonic component, so durations computed
// between two Now values are immune to wall-clock steps.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// Mono returns monotonic time elapsed since the clock was created.
	Mono() time.Duration

	// Since returns the monotonic duration elapsed since t.
	Since(t time.Time) time.Duration

	// Sleep suspends the caller for d, returning early with the context
	// error if ctx is cancelled first. Non-positive durations return
	// immediately.
	Sleep(ctx context.Context, d time.Duration) error
}

// System reads the platform clocks.
type System struct {
	origin time.Time
}

// NewSystem creates a system clock whose monotonic origin is "now".
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Now returns the current wall-clock time.
func (s *System) Now() time.Time {
	return time.Now()
}

// Mono returns monotonic time elapsed since the clock was created.
func (s *System) Mono() time.Duration {
	return time.Since(s.origin)
}

// Since returns the duration elapsed since t.
func (s *System) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Sleep suspends for d or until ctx is cancelled.
func (s *System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
