package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/minutes/internal/flagx"
	"github.com/dmitrijs2005/minutes/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Interval fields
// use timex.Duration so both "15m" and integer nanoseconds are accepted.
// Pointer fields tell an absent key apart from a zero value.
type JsonConfig struct {
	HTTPAddr            *string         `json:"http_addr"`
	GRPCAddr            *string         `json:"grpc_addr"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SecretKey           *string         `json:"secret_key"`
	AccessTokenTTL      *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL     *timex.Duration `json:"refresh_token_ttl"`
	VerificationCodeTTL *timex.Duration `json:"verification_code_ttl"`
	CookieSecure        *bool           `json:"cookie_secure"`
	AllowedOrigins      []string        `json:"allowed_origins"`
	S3RootUser          *string         `json:"s3_root_user"`
	S3RootPassword      *string         `json:"s3_root_password"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	TranscriptURLTTL    *timex.Duration `json:"transcript_url_ttl"`
	ResendAPIKey        *string         `json:"resend_api_key"`
	MailFrom            *string         `json:"mail_from"`
	AuthRateLimit       *float64        `json:"auth_rate_limit"`
	AuthRateBurst       *int            `json:"auth_rate_burst"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson loads configuration values from the file named by -c/-config.
// Without the flag nothing is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
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

	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	if jc.AccessTokenTTL != nil {
		cfg.AccessTokenTTL = jc.AccessTokenTTL.Duration
	}
	if jc.RefreshTokenTTL != nil {
		cfg.RefreshTokenTTL = jc.RefreshTokenTTL.Duration
	}
	if jc.VerificationCodeTTL != nil {
		cfg.VerificationCodeTTL = jc.VerificationCodeTTL.Duration
	}
	if jc.CookieSecure != nil {
		cfg.CookieSecure = *jc.CookieSecure
	}
	if jc.AllowedOrigins != nil {
		cfg.AllowedOrigins = jc.AllowedOrigins
	}
	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	if jc.TranscriptURLTTL != nil {
		cfg.TranscriptURLTTL = jc.TranscriptURLTTL.Duration
	}
	setString(&cfg.ResendAPIKey, jc.ResendAPIKey)
	setString(&cfg.MailFrom, jc.MailFrom)
	if jc.AuthRateLimit != nil {
		cfg.AuthRateLimit = *jc.AuthRateLimit
	}
	if jc.AuthRateBurst != nil {
		cfg.AuthRateBurst = *jc.AuthRateBurst
	}
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
