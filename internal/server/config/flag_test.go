package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-n", "127.0.0.1:9091", "-d", "db", "-s", "secret",
			"-t", "1", "-r", "3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1",
			"-e", "http://endpoint", "-k", "re_key", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				HTTPAddr:        "127.0.0.1:9090",
				GRPCAddr:        "127.0.0.1:9091",
				DatabaseDSN:     "db",
				SecretKey:       "secret",
				AccessTokenTTL:  1 * time.Minute,
				RefreshTokenTTL: 3 * time.Minute,
				S3RootUser:      "user",
				S3RootPassword:  "password",
				S3Bucket:        "bucket",
				S3Region:        "us-west-1",
				S3BaseEndpoint:  "http://endpoint",
				ResendAPIKey:    "re_key",
				LogLevel:        "debug",
			}},
		{name: "unknown flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1"}},
		{name: "bad duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
