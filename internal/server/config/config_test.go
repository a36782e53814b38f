package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.SessionValidityDuration)
	assert.Equal(t, 2*time.Second, c.ProcessingDelay)
	assert.Equal(t, int64(50<<20), c.MaxUploadSize)
	assert.Equal(t, PreviewBackendMemory, c.PreviewBackend)
	assert.Equal(t, "admin", c.S3RootUser)
	assert.Equal(t, "secretpassword", c.S3RootPassword)
	assert.Equal(t, "previews", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000/", c.S3BaseEndpoint)
	assert.Equal(t, 15*time.Minute, c.PreviewURLExpiry)
	assert.Equal(t, "slog", c.LogBackend)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv(flagx.ConfigEnvName, "")

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_http": ":9000",
		"processing_delay":   "5s",
	})
	os.Args = []string{"testbin", "-c", path, "-a", ":9100"}

	c := LoadConfig()

	assert.Equal(t, ":9100", c.EndpointAddrHTTP)
	assert.Equal(t, 5*time.Second, c.ProcessingDelay)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
}
