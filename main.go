// ABOUTME: Entry point for the Beacontime node
// ABOUTME: Joins the network, synchronizes the clock, then emits phase-aligned beacons
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Beacontime/beacontime-go/internal/beacon"
	"github.com/Beacontime/beacontime-go/internal/bootcount"
	"github.com/Beacontime/beacontime-go/internal/clock"
	"github.com/Beacontime/beacontime-go/internal/config"
	"github.com/Beacontime/beacontime-go/internal/discovery"
	"github.com/Beacontime/beacontime-go/internal/logging"
	"github.com/Beacontime/beacontime-go/internal/netjoin"
	"github.com/Beacontime/beacontime-go/internal/schedule"
	"github.com/Beacontime/beacontime-go/internal/sntp"
	"github.com/Beacontime/beacontime-go/internal/status"
	"github.com/Beacontime/beacontime-go/internal/ui"
	"github.com/Beacontime/beacontime-go/internal/version"
)

var (
	group      = flag.String("group", "", "Override multicast group address")
	port       = flag.Int("port", 0, "Override multicast port")
	statusAddr = flag.String("status-addr", "", "Serve the websocket status feed at this address")
	logFile    = flag.String("log-file", "", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *group != "" {
		cfg.Group = *group
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *statusAddr != "" {
		cfg.StatusAddr = *statusAddr
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	useTUI := !*noTUI
	closeLog, err := logging.Setup(cfg.LogFile, useTUI, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	nodeID := uuid.New().String()
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	nodeName := fmt.Sprintf("%s-beacontime", hostname)

	log.Info().
		Str("version", version.Version).
		Str("node_id", nodeID).
		Str("node", nodeName).
		Msg("bootup")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sysClock := clock.NewSystem()

	// Boot counter: written exactly once, before any concurrent worker exists.
	bootCount := bootcount.NewStore(cfg.StateDir).Increment()
	log.Info().Int("boot_count", bootCount).Msg("boot counter incremented")

	tracker := status.NewTracker(sysClock, nodeID, bootCount)

	// Join the network. No useful work is possible without it.
	joiner := &netjoin.IPNetwork{
		Clock:        sysClock,
		Retries:      cfg.JoinRetries,
		PollInterval: cfg.JoinPollInterval,
		OnGotAddress: func(ip net.IP) {
			log.Info().Str("ip", ip.String()).Msg("got address")
		},
	}
	if err := joiner.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("network join failed")
	}

	// Synchronize to conclusion before the periodic worker starts.
	client := sntp.NewClient(sntp.ClientConfig{})
	defer client.Stop()

	syncer := sntp.NewSynchronizer(client, sysClock, sntp.Config{
		Servers:      cfg.Servers(),
		MaxAttempts:  cfg.SNTPMaxAttempts,
		PollInterval: cfg.SNTPPollInterval,
	})
	go syncer.LogEvents(ctx)

	log.Info().Strs("servers", cfg.Servers()).Msg("synchronizing")
	result := syncer.Run(ctx)

	offset, rtt, _ := client.Offset()
	tracker.SetSync(result.String(), offset, rtt)
	if result == sntp.TimedOut {
		log.Warn().Msg("proceeding with unsynchronized clock; beacon timestamps may be wrong")
	}

	// Beacon emitter on the offset-corrected clock.
	transport, err := beacon.DialUDP(beacon.Endpoint{Group: cfg.Group, Port: cfg.Port})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open beacon transport")
	}
	defer transport.Close()

	emitter := beacon.NewEmitter(sntp.NewAdjustedClock(sysClock, client), transport)

	if cfg.EnableMDNS {
		adv := discovery.NewAdvertiser(discovery.Config{
			NodeName: nodeName,
			Port:     cfg.Port,
			TXT: []string{
				"node_id=" + nodeID,
				"group=" + cfg.Group,
				"version=" + version.Version,
			},
		})
		if err := adv.Advertise(); err != nil {
			log.Warn().Err(err).Msg("mdns advertisement failed")
		} else {
			defer adv.Shutdown()
		}
	}

	if cfg.StatusAddr != "" {
		feed := status.NewFeed(tracker, time.Second)
		go func() {
			if err := feed.Serve(ctx, cfg.StatusAddr); err != nil {
				log.Warn().Err(err).Msg("status feed stopped")
			}
		}()
	}

	var prog *tea.Program
	if useTUI {
		prog, err = ui.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start TUI")
		}
		go func() {
			_, _ = prog.Run()
			stop() // quitting the TUI shuts the node down
		}()
		go pushTUIStatus(ctx, prog, tracker, nodeName, transport.Destination())
	}

	// Periodic beacon worker. Spawned strictly after synchronization has
	// concluded; from here on it only shares the tracker with observers.
	aligner := &schedule.Aligner{Clock: sysClock, Period: cfg.Period}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = aligner.Run(ctx, func() error {
			err := emitter.Emit()
			st := emitter.Stats()
			tracker.SetBeacons(st.Sent, st.Failed, st.LastPayload)
			return err
		})
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	wg.Wait()
	if prog != nil {
		prog.Quit()
	}
}

// pushTUIStatus feeds tracker snapshots to the TUI until ctx is cancelled.
func pushTUIStatus(ctx context.Context, prog *tea.Program, tracker *status.Tracker, nodeName, destination string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := tracker.Snapshot()
			prog.Send(ui.StatusMsg{
				NodeName:    nodeName,
				Destination: destination,
				SyncStatus:  snap.SyncStatus,
				OffsetUs:    snap.OffsetMicros,
				RTTUs:       snap.RTTMicros,
				Sent:        snap.BeaconsSent,
				Failed:      snap.BeaconsFailed,
				LastPayload: snap.LastPayload,
				BootCount:   snap.BootCount,
			})
		}
	}
}
