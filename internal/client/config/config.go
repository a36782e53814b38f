package config

import (
	"os"
	"path/filepath"
	"time"
)

// Output formats.
const (
	OutputAuto  = "auto"
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - Server: base URL or host:port of the HTTP API.
//   - TokenFile: where the session token is kept between invocations.
//   - Timeout: per-request timeout.
//   - Output: "auto" (table on a terminal, JSON otherwise), "table" or "json".
type Config struct {
	Server    string
	TokenFile string
	Timeout   time.Duration
	Output    string
}

// LoadDefaults populates c with defaults. The token lives under the user's
// home directory, or the working directory when there is none.
func (c *Config) LoadDefaults() {
	c.Server = "http://127.0.0.1:8080"
	c.TokenFile = defaultTokenFile()
	c.Timeout = 30 * time.Second
	c.Output = OutputAuto
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".upscaler", "token")
	}
	return filepath.Join(home, ".upscaler", "token")
}

// Load applies defaults and then the JSON file at path, if path is not empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
