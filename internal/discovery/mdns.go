// ABOUTME: mDNS advertisement of the beacon service
// ABOUTME: Lets receivers find the multicast group and port without static config
package discovery

import (
	"fmt"
	"net"

	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

// ServiceType is the advertised mDNS service type.
const ServiceType = "_beacontime._udp"

// Config holds advertisement configuration.
type Config struct {
	NodeName string   // instance name, usually hostname-derived
	Port     int      // beacon destination port
	TXT      []string // extra records: node id, group, version
}

// Advertiser announces the beacon service on the local network. Browse is
// deliberately absent: receiving beacons is out of this node's scope.
type Advertiser struct {
	config Config
	server *mdns.Server
}

// NewAdvertiser creates an advertiser.
func NewAdvertiser(config Config) *Advertiser {
	return &Advertiser{config: config}
}

// Advertise registers the service with mDNS.
func (a *Advertiser) Advertise() error {
	ips, err := localIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		a.config.NodeName,
		ServiceType,
		"",
		"",
		a.config.Port,
		ips,
		a.config.TXT,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}
	a.server = server

	log.Info().
		Str("name", a.config.NodeName).
		Str("type", ServiceType).
		Int("port", a.config.Port).
		Msg("advertising mdns service")
	return nil
}

// Shutdown stops the advertisement.
func (a *Advertiser) Shutdown() {
	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			log.Debug().Err(err).Msg("mdns shutdown")
		}
		a.server = nil
	}
}

// localIPs returns the up, non-loopback IPv4 addresses of this host.
func localIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
