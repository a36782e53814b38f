// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Preview backends.
const (
	PreviewBackendMemory = "memory"
	PreviewBackendS3     = "s3"
)

// Config holds runtime settings for the upscaler server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the HTTP API and the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty disables persistence.
//   - SecretKey: HMAC secret for signing session JWTs (HS256).
//   - SessionValidityDuration: token lifetime, also the idle time after which a session is swept.
//   - ProcessingDelay: how long the stand-in upscaler takes.
//   - MaxUploadSize: per-file intake ceiling in bytes.
//   - PreviewBackend: "memory" or "s3".
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - PreviewURLExpiry: lifetime of presigned preview URLs.
//   - LogBackend: "slog" or "zerolog".
type Config struct {
	EndpointAddrHTTP        string
	EndpointAddrGRPC        string
	DatabaseDSN             string
	SecretKey               string
	SessionValidityDuration time.Duration
	ProcessingDelay         time.Duration
	MaxUploadSize           int64
	PreviewBackend          string
	S3RootUser              string
	S3RootPassword          string
	S3Bucket                string
	S3Region                string
	S3BaseEndpoint          string
	PreviewURLExpiry        time.Duration
	LogBackend              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 24 * time.Hour
	c.ProcessingDelay = 2 * time.Second
	c.MaxUploadSize = 50 << 20
	c.PreviewBackend = PreviewBackendMemory
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "previews"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.PreviewURLExpiry = 15 * time.Minute
	c.LogBackend = "slog"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
