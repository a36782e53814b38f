package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/upscaler/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration. Absent keys leave
// the current values alone.
type JsonConfig struct {
	Server    *string         `json:"server"`
	TokenFile *string         `json:"token_file"`
	Timeout   *timex.Duration `json:"timeout"`
	Output    *string         `json:"output"`
}

func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.Server != nil {
		cfg.Server = *jc.Server
	}
	if jc.TokenFile != nil {
		cfg.TokenFile = *jc.TokenFile
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
	if jc.Output != nil {
		cfg.Output = *jc.Output
	}
	return nil
}
