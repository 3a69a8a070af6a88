// ABOUTME: Tests for the poll-mode SNTP client
// ABOUTME: Uses an injected query function; no network traffic
package sntp

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodResponse(offset time.Duration) *ntp.Response {
	return &ntp.Response{
		Time:        time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		ClockOffset: offset,
		RTT:         3 * time.Millisecond,
		Stratum:     2,
	}
}

func newTestClient(query QueryFunc) *Client {
	return NewClient(ClientConfig{
		QueryInterval: 5 * time.Millisecond,
		Query:         query,
	})
}

func TestClientAcceptsSampleAndNotifies(t *testing.T) {
	events := make(chan time.Time, 1)

	c := newTestClient(func(host string) (*ntp.Response, error) {
		return goodResponse(25 * time.Millisecond), nil
	})
	c.SetMode(ModePoll)
	c.SetServer(0, "pool.ntp.org")
	c.SetSyncCallback(func(at time.Time) { events <- at })

	require.NoError(t, c.Start())
	defer c.Stop()

	select {
	case at := <-events:
		assert.Equal(t, goodResponse(0).Time, at)
	case <-time.After(2 * time.Second):
		t.Fatal("no sync notification received")
	}

	assert.Equal(t, StatusCompleted, c.SyncStatus())
	offset, rtt, samples := c.Offset()
	assert.Equal(t, 25*time.Millisecond, offset)
	assert.Equal(t, 3*time.Millisecond, rtt)
	assert.GreaterOrEqual(t, samples, 1)
}

func TestClientFallsBackToSecondaryServer(t *testing.T) {
	var mu sync.Mutex
	queried := []string{}
	events := make(chan time.Time, 1)

	c := newTestClient(func(host string) (*ntp.Response, error) {
		mu.Lock()
		queried = append(queried, host)
		mu.Unlock()
		if host == "primary.invalid" {
			return nil, errors.New("no route to host")
		}
		return goodResponse(time.Millisecond), nil
	})
	c.SetServer(0, "primary.invalid")
	c.SetServer(1, "fallback.example.org")
	c.SetSyncCallback(func(at time.Time) { events <- at })

	require.NoError(t, c.Start())
	defer c.Stop()

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("fallback server never produced a sample")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(queried), 2)
	assert.Equal(t, "primary.invalid", queried[0], "primary must be tried first")
	assert.Contains(t, queried, "fallback.example.org")
}

func TestClientRejectsHighRTTSample(t *testing.T) {
	c := newTestClient(func(host string) (*ntp.Response, error) {
		resp := goodResponse(time.Millisecond)
		resp.RTT = time.Second
		return resp, nil
	})
	c.SetServer(0, "pool.ntp.org")

	require.NoError(t, c.Start())
	defer c.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusReset, c.SyncStatus(), "high-RTT samples must be discarded")
}

func TestClientRejectsKissOfDeath(t *testing.T) {
	c := newTestClient(func(host string) (*ntp.Response, error) {
		resp := goodResponse(time.Millisecond)
		resp.Stratum = 0
		return resp, nil
	})
	c.SetServer(0, "pool.ntp.org")

	require.NoError(t, c.Start())
	defer c.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusReset, c.SyncStatus())
}

func TestClientStartWithoutServers(t *testing.T) {
	c := NewClient(ClientConfig{})
	assert.ErrorIs(t, c.Start(), ErrNoServers)
}

func TestClientAdjust(t *testing.T) {
	events := make(chan time.Time, 1)

	c := newTestClient(func(host string) (*ntp.Response, error) {
		return goodResponse(-70 * time.Millisecond), nil
	})
	c.SetServer(0, "pool.ntp.org")
	c.SetSyncCallback(func(at time.Time) { events <- at })

	local := time.Date(2026, 5, 6, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, local, c.Adjust(local), "no offset before the first sample")

	require.NoError(t, c.Start())
	defer c.Stop()

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no sample accepted")
	}

	assert.Equal(t, local.Add(-70*time.Millisecond), c.Adjust(local))
}
