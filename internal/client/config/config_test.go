package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.Server)
	assert.Equal(t, filepath.Join("/home/tester", ".upscaler", "token"), c.TokenFile)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, OutputAuto, c.Output)
}

func TestLoad_WithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}
