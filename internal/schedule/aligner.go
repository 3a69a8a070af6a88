// ABOUTME: Phase-aligned periodic scheduler
// ABOUTME: Fires an action on absolute period boundaries, self-correcting drift every cycle
package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// DefaultPeriod is the beacon cadence.
const DefaultPeriod = time.Second

// Aligner drives a repeating action whose wake instants land on exact
// multiples of Period. The sleep target is derived from the pre-action
// reading of the clock, so time spent inside the action never shifts the
// phase of later cycles.
type Aligner struct {
	Clock  clock.Clock
	Period time.Duration

	cycles   atomic.Int64
	overruns atomic.Int64
}

// Stats reports how many cycles have fired and how many overran the period.
type Stats struct {
	Cycles   int64
	Overruns int64
}

// Run executes action once per period until ctx is cancelled. Action errors
// are logged and absorbed; nothing an action returns can terminate the loop.
// Returns the context error once cancellation is observed.
func (a *Aligner) Run(ctx context.Context, action func() error) error {
	period := a.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Capture now before the action runs; the next boundary is
		// computed from this instant, not from when the action finishes.
		now := a.Clock.Now()

		if err := action(); err != nil {
			log.Warn().Err(err).Msg("periodic action failed, continuing")
		}
		a.cycles.Add(1)

		next := now.Truncate(period).Add(period)
		wait := next.Sub(a.Clock.Now())
		if wait <= 0 {
			// The action overran the period. Fire the next cycle
			// immediately rather than sleeping a negative duration.
			a.overruns.Add(1)
			continue
		}

		if err := a.Clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Stats returns a snapshot of the cycle counters.
func (a *Aligner) Stats() Stats {
	return Stats{
		Cycles:   a.cycles.Load(),
		Overruns: a.overruns.Load(),
	}
}
