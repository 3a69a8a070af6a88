// ABOUTME: Node status registry
// ABOUTME: Workers report state here; the feed and TUI read snapshots
package status

import (
	"sync"
	"time"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// Snapshot is one observable view of the node, safe to serialize.
type Snapshot struct {
	NodeID        string `json:"node_id"`
	BootCount     int    `json:"boot_count"`
	SyncStatus    string `json:"sync_status"`
	OffsetMicros  int64  `json:"offset_us"`
	RTTMicros     int64  `json:"rtt_us"`
	BeaconsSent   int64  `json:"beacons_sent"`
	BeaconsFailed int64  `json:"beacons_failed"`
	LastPayload   string `json:"last_payload,omitempty"`
	UptimeSeconds int64  `json:"uptime_s"`
}

// Tracker holds the current snapshot under a lock. It is the only mutable
// state shared between the periodic worker and observability consumers.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	clk     clock.Clock
	started time.Time
}

// NewTracker creates a tracker for the given node identity.
func NewTracker(clk clock.Clock, nodeID string, bootCount int) *Tracker {
	return &Tracker{
		snap: Snapshot{
			NodeID:     nodeID,
			BootCount:  bootCount,
			SyncStatus: "unsynchronized",
		},
		clk:     clk,
		started: clk.Now(),
	}
}

// SetSync records the synchronization outcome and measurements.
func (t *Tracker) SetSync(status string, offset, rtt time.Duration) {
	t.mu.Lock()
	t.snap.SyncStatus = status
	t.snap.OffsetMicros = offset.Microseconds()
	t.snap.RTTMicros = rtt.Microseconds()
	t.mu.Unlock()
}

// SetBeacons records the emitter's counters and last payload.
func (t *Tracker) SetBeacons(sent, failed int64, lastPayload string) {
	t.mu.Lock()
	t.snap.BeaconsSent = sent
	t.snap.BeaconsFailed = failed
	t.snap.LastPayload = lastPayload
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	snap := t.snap
	t.mu.RUnlock()

	snap.UptimeSeconds = int64(t.clk.Since(t.started).Seconds())
	return snap
}
