// ABOUTME: Network join collaborator
// ABOUTME: Blocks startup until the host has a usable address, under a bounded retry budget
package netjoin

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Beacontime/beacontime-go/internal/clock"
)

// Joiner is the narrow contract the startup sequence depends on: Connect
// blocks until the network is usable or the retry budget runs out, and
// IsConnected answers the single question the synchronizer needs.
type Joiner interface {
	Connect(ctx context.Context) error
	IsConnected() bool
}

// ErrExhausted is returned when every connect attempt failed.
var ErrExhausted = errors.New("netjoin: retries exhausted")

// IPNetwork waits for the host to hold a non-loopback unicast address,
// polling once per interval. On a workstation this is the moment DHCP (or
// an already-up interface) makes the node reachable.
type IPNetwork struct {
	Clock        clock.Clock
	Retries      int
	PollInterval time.Duration

	// Optional observability hooks.
	OnConnected  func()
	OnGotAddress func(ip net.IP)

	// ListAddrs is injectable for tests; defaults to net.InterfaceAddrs.
	ListAddrs func() ([]net.Addr, error)
}

// Connect polls for a usable address up to Retries times. Exhaustion is
// fatal to startup; the caller must not proceed to time synchronization.
func (j *IPNetwork) Connect(ctx context.Context) error {
	retries := j.Retries
	if retries <= 0 {
		retries = 10
	}
	interval := j.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	for attempt := 1; attempt <= retries; attempt++ {
		if ip := j.currentAddress(); ip != nil {
			log.Info().Str("address", ip.String()).Msg("network connected")
			if j.OnGotAddress != nil {
				j.OnGotAddress(ip)
			}
			if j.OnConnected != nil {
				j.OnConnected()
			}
			return nil
		}

		log.Info().Int("attempt", attempt).Int("retries", retries).Msg("waiting for network connection")
		if err := j.Clock.Sleep(ctx, interval); err != nil {
			return err
		}
	}

	return ErrExhausted
}

// IsConnected reports whether a usable address is currently held.
func (j *IPNetwork) IsConnected() bool {
	return j.currentAddress() != nil
}

// currentAddress returns the first non-loopback unicast IPv4 address, or nil.
func (j *IPNetwork) currentAddress() net.IP {
	list := j.ListAddrs
	if list == nil {
		list = net.InterfaceAddrs
	}

	addrs, err := list()
	if err != nil {
		log.Debug().Err(err).Msg("failed to list interface addresses")
		return nil
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4
		}
	}
	return nil
}
