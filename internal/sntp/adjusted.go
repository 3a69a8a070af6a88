// ABOUTME: Clock wrapper that applies the client's measured offset to wall-clock reads
// ABOUTME: The Go analog of stepping the system clock after SNTP convergence
package sntp

import (
	"context"
	"time"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// AdjustedClock layers the client's latest accepted offset onto a base
// clock. Monotonic reads and sleeps pass through untouched; only wall-clock
// reads are shifted, so interval measurement stays unaffected by corrections.
type AdjustedClock struct {
	base   clock.Clock
	client *Client
}

// NewAdjustedClock wraps base with the client's offset.
func NewAdjustedClock(base clock.Clock, client *Client) *AdjustedClock {
	return &AdjustedClock{base: base, client: client}
}

// Now returns the offset-corrected wall-clock time.
func (a *AdjustedClock) Now() time.Time {
	return a.client.Adjust(a.base.Now())
}

// Mono returns the base clock's monotonic reading.
func (a *AdjustedClock) Mono() time.Duration {
	return a.base.Mono()
}

// Since returns the base clock's duration since t.
func (a *AdjustedClock) Since(t time.Time) time.Duration {
	return a.base.Since(t)
}

// Sleep delegates to the base clock.
func (a *AdjustedClock) Sleep(ctx context.Context, d time.Duration) error {
	return a.base.Sleep(ctx, d)
}
