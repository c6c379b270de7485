// Package config loads runtime configuration for the Minutes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   base URL of the HTTP API
//	-g string   host:port of the gRPC health endpoint
//	-i int      online status check interval (seconds)
//	-r int      access token refresh interval (seconds)
//	-t int      HTTP request timeout (seconds)
//	-d string   path of the local SQLite cache
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Keys that are absent keep their previous value:
//
//	{
//	  "server_url": "https://api.minutes.example",
//	  "health_addr": "api.minutes.example:50051",
//	  "online_check_interval": "3s",
//	  "token_refresh_interval": "5m",
//	  "request_timeout": "10s",
//	  "database_path": "minutes.db",
//	  "log_level": "info"
//	}
package config
