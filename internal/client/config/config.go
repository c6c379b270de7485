package config

import (
	"time"

	"github.com/dmitrijs2005/minutes/internal/client/auth"
)

// Config holds runtime settings for the Minutes CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API (auth and data endpoints).
//   - HealthAddr: host:port of the backend gRPC health endpoint.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - TokenRefreshInterval: how often the signed-in session tops up its token.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: SQLite file used for the offline cache.
type Config struct {
	ServerURL            string
	HealthAddr           string
	OnlineCheckInterval  time.Duration
	TokenRefreshInterval time.Duration
	RequestTimeout       time.Duration
	DatabasePath         string
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.TokenRefreshInterval = auth.DefaultRefreshInterval
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "minutes.db"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
