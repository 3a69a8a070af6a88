// ABOUTME: Poll-mode SNTP client over beevik/ntp queries
// ABOUTME: Tracks offset/RTT per accepted sample and notifies a sync callback per event
package sntp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/rs/zerolog/log"
)

// Mode selects how the client runs. Polling is the only supported mode: the
// client re-queries its servers on a fixed interval until stopped.
type Mode int

// ModePoll queries servers on a fixed interval.
const ModePoll Mode = iota

// ClientStatus is the client's synchronization state as seen by a poller.
type ClientStatus int

const (
	// StatusReset means no sample has been accepted yet.
	StatusReset ClientStatus = iota
	// StatusCompleted means at least one sample has been accepted.
	StatusCompleted
)

// TimeClient is the narrow contract the synchronizer drives.
type TimeClient interface {
	SetMode(m Mode)
	SetServer(index int, host string)
	SetSyncCallback(fn func(serverTime time.Time))
	Start() error
	Stop()
	SyncStatus() ClientStatus
}

// QueryFunc issues a single SNTP exchange against host.
type QueryFunc func(host string) (*ntp.Response, error)

// ErrNoServers is returned by Start when no server has been registered.
var ErrNoServers = errors.New("sntp: no servers configured")

// ClientConfig tunes the poll loop. Zero values select the defaults.
type ClientConfig struct {
	QueryInterval time.Duration // time between query rounds (default 2s)
	QueryTimeout  time.Duration // per-query network timeout (default 2s)
	MaxRTT        time.Duration // samples above this RTT are discarded (default 500ms)
	Query         QueryFunc     // injectable for tests; defaults to a beevik/ntp query
}

// Client polls SNTP servers in registration order and keeps the latest
// accepted offset. The sync callback fires once per accepted sample; it must
// not block.
type Client struct {
	mu       sync.RWMutex
	cfg      ClientConfig
	mode     Mode
	servers  []string
	callback func(time.Time)
	status   ClientStatus
	offset   time.Duration
	rtt      time.Duration
	samples  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a poll-mode client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.QueryInterval <= 0 {
		cfg.QueryInterval = 2 * time.Second
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 2 * time.Second
	}
	if cfg.MaxRTT <= 0 {
		cfg.MaxRTT = 500 * time.Millisecond
	}
	if cfg.Query == nil {
		timeout := cfg.QueryTimeout
		cfg.Query = func(host string) (*ntp.Response, error) {
			return ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: timeout})
		}
	}

	return &Client{cfg: cfg, status: StatusReset}
}

// SetMode sets the operating mode.
func (c *Client) SetMode(m Mode) {
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

// SetServer registers a server at the given index. Index 0 is the primary;
// higher indexes act as fallbacks tried in order.
func (c *Client) SetServer(index int, host string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.servers) <= index {
		c.servers = append(c.servers, "")
	}
	c.servers[index] = host
}

// SetSyncCallback installs the per-event notification callback.
func (c *Client) SetSyncCallback(fn func(time.Time)) {
	c.mu.Lock()
	c.callback = fn
	c.mu.Unlock()
}

// Start launches the poll loop. The first query round runs immediately.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.servers) == 0 {
		return ErrNoServers
	}
	if c.cancel != nil {
		return nil // already running
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go c.pollLoop(c.ctx)

	return nil
}

// Stop terminates the poll loop and waits for it to exit.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		c.wg.Wait()
	}
}

// SyncStatus reports whether a sample has been accepted yet.
func (c *Client) SyncStatus() ClientStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Offset returns the latest accepted offset, RTT, and the sample count.
func (c *Client) Offset() (offset, rtt time.Duration, samples int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset, c.rtt, c.samples
}

// Adjust maps a local wall-clock reading into the synchronized timeline by
// applying the latest accepted offset. Before the first accepted sample the
// reading is returned unchanged.
func (c *Client) Adjust(t time.Time) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return t.Add(c.offset)
}

func (c *Client) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.QueryInterval)
	defer ticker.Stop()

	for {
		c.queryRound()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// queryRound tries each registered server in index order until one sample is
// accepted.
func (c *Client) queryRound() {
	c.mu.RLock()
	servers := make([]string, len(c.servers))
	copy(servers, c.servers)
	c.mu.RUnlock()

	for _, host := range servers {
		if host == "" {
			continue
		}

		resp, err := c.cfg.Query(host)
		if err != nil {
			log.Debug().Err(err).Str("server", host).Msg("sntp query failed")
			continue
		}
		if c.accept(host, resp) {
			return
		}
	}
}

// accept validates a response and, if usable, installs it as the current
// sample and fires the sync callback.
func (c *Client) accept(host string, resp *ntp.Response) bool {
	if resp.Stratum == 0 {
		log.Debug().Str("server", host).Msg("discarding sample: kiss-of-death")
		return false
	}
	if resp.Leap == ntp.LeapNotInSync {
		log.Debug().Str("server", host).Msg("discarding sample: server not in sync")
		return false
	}
	if resp.RTT > c.cfg.MaxRTT {
		log.Debug().Str("server", host).Dur("rtt", resp.RTT).Msg("discarding sample: high RTT")
		return false
	}

	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.rtt = resp.RTT
	c.samples++
	c.status = StatusCompleted
	samples := c.samples
	cb := c.callback
	c.mu.Unlock()

	if samples <= 3 {
		log.Info().
			Str("server", host).
			Dur("offset", resp.ClockOffset).
			Dur("rtt", resp.RTT).
			Int("sample", samples).
			Msg("accepted sntp sample")
	}

	if cb != nil {
		cb(resp.Time)
	}
	return true
}
