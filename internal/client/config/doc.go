// Package config loads runtime configuration for the upscaler CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config.
//  3. Command-line flags, applied by the cli package, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "server": "http://127.0.0.1:8080",
//	  "token_file": "/home/me/.upscaler/token",
//	  "timeout": "30s",
//	  "output": "json"
//	}
package config
