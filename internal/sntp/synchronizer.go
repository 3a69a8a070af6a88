// ABOUTME: Bounded-retry synchronizer that drives the SNTP client to convergence
// ABOUTME: Polls sync status on a fixed interval and publishes events for observability
package sntp

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// Status is the terminal outcome of a synchronization run.
type Status int

const (
	// Unsynchronized means the run was cancelled before reaching an outcome.
	Unsynchronized Status = iota
	// Synchronized means a sync event arrived within the retry budget.
	Synchronized
	// TimedOut means the retry budget was exhausted first.
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Synchronized:
		return "synchronized"
	case TimedOut:
		return "timed_out"
	default:
		return "unsynchronized"
	}
}

// Event is one synchronization notification, forwarded for observability.
// It carries the server time at which the event fired.
type Event struct {
	At time.Time
}

// Config bounds the synchronization run. Zero values select the defaults:
// 15 attempts, 2s apart, against pool.ntp.org.
type Config struct {
	Servers      []string // registered in index order: primary first, then fallbacks
	MaxAttempts  int
	PollInterval time.Duration
}

// Synchronizer drives a TimeClient until it reports completion or the retry
// budget runs out. Fixed-interval polling is intentional: convergence is
// expected within a few poll rounds, so backoff would only delay startup.
type Synchronizer struct {
	client TimeClient
	clk    clock.Clock
	cfg    Config
	events chan Event
}

// NewSynchronizer creates a synchronizer over the given client and clock.
func NewSynchronizer(client TimeClient, clk clock.Clock, cfg Config) *Synchronizer {
	if len(cfg.Servers) == 0 {
		cfg.Servers = []string{"pool.ntp.org"}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 15
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	return &Synchronizer{
		client: client,
		clk:    clk,
		cfg:    cfg,
		events: make(chan Event, 8),
	}
}

// Events returns the notification channel fed by the client's sync callback.
func (s *Synchronizer) Events() <-chan Event {
	return s.events
}

// Run configures the client, starts it, and polls its status once per
// interval until it reports completion or MaxAttempts polls have elapsed.
// A timeout is not an error: the caller proceeds with whatever wall-clock
// value the platform holds, which may be far from true time.
func (s *Synchronizer) Run(ctx context.Context) Status {
	s.client.SetMode(ModePoll)
	for i, host := range s.cfg.Servers {
		s.client.SetServer(i, host)
	}
	s.client.SetSyncCallback(func(at time.Time) {
		// Non-blocking: observability must never stall the client.
		select {
		case s.events <- Event{At: at}:
		default:
		}
	})

	if err := s.client.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start time client")
		return TimedOut
	}

	attempts := 0
	for s.client.SyncStatus() == StatusReset && attempts < s.cfg.MaxAttempts {
		attempts++
		log.Info().
			Int("attempt", attempts).
			Int("max_attempts", s.cfg.MaxAttempts).
			Msg("waiting for system time to be set")

		if err := s.clk.Sleep(ctx, s.cfg.PollInterval); err != nil {
			return Unsynchronized
		}
	}

	// One wall-clock read on exit regardless of outcome. Absent
	// synchronization this value may be epoch-relative garbage.
	now := s.clk.Now()

	if s.client.SyncStatus() == StatusCompleted {
		log.Info().Time("wall_clock", now).Int("attempts", attempts).Msg("time synchronized")
		return Synchronized
	}

	log.Warn().Time("wall_clock", now).Int("attempts", attempts).Msg("time synchronization timed out")
	return TimedOut
}

// LogEvents is the logging subscriber for sync notifications. Run it on its
// own goroutine; it returns when ctx is cancelled.
func (s *Synchronizer) LogEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			log.Info().Time("server_time", ev.At).Msg("time synchronization event")
		}
	}
}
