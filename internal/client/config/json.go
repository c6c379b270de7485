package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/minutes/internal/flagx"
	"github.com/dmitrijs2005/minutes/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell an
// absent key apart from a zero value.
type JsonConfig struct {
	ServerURL            *string         `json:"server_url"`
	HealthAddr           *string         `json:"health_addr"`
	OnlineCheckInterval  *timex.Duration `json:"online_check_interval"`
	TokenRefreshInterval *timex.Duration `json:"token_refresh_interval"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	DatabasePath         *string         `json:"database_path"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays cfg with values from the file named by -c/-config.
// Without the flag it does nothing; read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.HealthAddr != nil {
		cfg.HealthAddr = *jc.HealthAddr
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.TokenRefreshInterval != nil {
		cfg.TokenRefreshInterval = jc.TokenRefreshInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
