// ABOUTME: Beacon emitter: formats the current time and sends it as one datagram
// ABOUTME: Payload is built fresh each cycle from a single wall-clock read
package beacon

import (
	"fmt"
	"sync"
	"time"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// PayloadLayout is the beacon wire format: local date/time with
// microsecond precision, UTF-8 text, the entire UDP payload.
const PayloadLayout = "2006-01-02T15:04:05.000000"

// ParsePayload decodes a beacon payload back into a time value.
func ParsePayload(s string) (time.Time, error) {
	return time.Parse(PayloadLayout, s)
}

// Emitter formats the current wall-clock time and transmits it. Whole
// seconds and the fractional component come from one high-resolution read,
// so the two can never skew apart.
type Emitter struct {
	clk       clock.Clock
	transport Transport

	mu     sync.Mutex
	sent   int64
	failed int64
	last   string
}

// Stats is a snapshot of the emitter's counters.
type Stats struct {
	Sent        int64
	Failed      int64
	LastPayload string
}

// NewEmitter creates an emitter over the given clock and transport.
func NewEmitter(clk clock.Clock, transport Transport) *Emitter {
	return &Emitter{clk: clk, transport: transport}
}

// Emit sends exactly one timestamped datagram. A send failure is returned
// to the caller; the emitter itself never retries.
func (e *Emitter) Emit() error {
	payload := e.clk.Now().Format(PayloadLayout)

	if err := e.transport.Send([]byte(payload)); err != nil {
		e.mu.Lock()
		e.failed++
		e.mu.Unlock()
		return fmt.Errorf("beacon send: %w", err)
	}

	e.mu.Lock()
	e.sent++
	e.last = payload
	e.mu.Unlock()
	return nil
}

// Stats returns a snapshot of the counters.
func (e *Emitter) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Sent: e.sent, Failed: e.failed, LastPayload: e.last}
}
