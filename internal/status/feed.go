// ABOUTME: WebSocket observability feed
// ABOUTME: Pushes status snapshots to connected clients; absorbs all failures
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Feed serves node status over websocket. On connect a client immediately
// receives the current snapshot, then one update per interval. The feed is
// observability only: nothing it does can affect the beacon loop.
type Feed struct {
	tracker  *Tracker
	interval time.Duration
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	shutdown bool
}

// NewFeed creates a feed publishing from tracker once per interval.
func NewFeed(tracker *Tracker, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = time.Second
	}

	return &Feed{
		tracker:  tracker,
		interval: interval,
		upgrader: websocket.Upgrader{
			// Local-network observability endpoint; all origins accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and streams snapshots until the client
// goes away or the feed shuts down.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.RLock()
	down := f.shutdown
	f.mu.RUnlock()
	if down {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Debug().Str("remote", r.RemoteAddr).Msg("status client connected")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if err := f.writeSnapshot(conn); err != nil {
			log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("dropping status client")
			return
		}

		<-ticker.C

		f.mu.RLock()
		down := f.shutdown
		f.mu.RUnlock()
		if down {
			return
		}
	}
}

func (f *Feed) writeSnapshot(conn *websocket.Conn) error {
	data, err := json.Marshal(f.tracker.Snapshot())
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Serve runs an HTTP server for the feed at addr until ctx is cancelled.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/status", f)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		f.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("status feed listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting clients and unblocks writers.
func (f *Feed) Shutdown() {
	f.mu.Lock()
	f.shutdown = true
	f.mu.Unlock()
}
