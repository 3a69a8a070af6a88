// ABOUTME: Environment-driven node configuration
// ABOUTME: .env preload via godotenv, parsed with struct tags
package config

import (
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the node needs at startup.
type Config struct {
	// Beacon destination
	Group  string        `env:"BEACON_GROUP" envDefault:"239.1.1.1"`
	Port   int           `env:"BEACON_PORT" envDefault:"5000"`
	Period time.Duration `env:"BEACON_PERIOD" envDefault:"1s"`

	// Time synchronization
	SNTPServer       string        `env:"SNTP_SERVER" envDefault:"pool.ntp.org"`
	SNTPFallback     string        `env:"SNTP_FALLBACK" envDefault:"time.google.com"`
	SNTPMaxAttempts  int           `env:"SNTP_MAX_ATTEMPTS" envDefault:"15"`
	SNTPPollInterval time.Duration `env:"SNTP_POLL_INTERVAL" envDefault:"2s"`

	// Network join
	JoinRetries      int           `env:"JOIN_RETRIES" envDefault:"10"`
	JoinPollInterval time.Duration `env:"JOIN_POLL_INTERVAL" envDefault:"1s"`

	// Node plumbing
	StateDir   string `env:"STATE_DIR" envDefault:"."`
	StatusAddr string `env:"STATUS_ADDR"`
	LogFile    string `env:"LOG_FILE"`
	EnableMDNS bool   `env:"ENABLE_MDNS" envDefault:"true"`
}

// Load reads .env (best effort) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	ip := net.ParseIP(c.Group)
	if ip == nil {
		return fmt.Errorf("BEACON_GROUP %q is not an IP address", c.Group)
	}
	if !ip.IsMulticast() {
		return fmt.Errorf("BEACON_GROUP %q is not a multicast address", c.Group)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("BEACON_PORT %d out of range", c.Port)
	}
	if c.SNTPMaxAttempts < 1 {
		return fmt.Errorf("SNTP_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// Servers returns the SNTP servers in index order: primary, then fallback.
func (c *Config) Servers() []string {
	servers := []string{c.SNTPServer}
	if c.SNTPFallback != "" {
		servers = append(servers, c.SNTPFallback)
	}
	return servers
}
