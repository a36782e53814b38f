package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/server/config"
	"github.com/dmitrijs2005/upscaler/internal/server/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = freeAddr(t)
	c.EndpointAddrGRPC = freeAddr(t)
	c.ProcessingDelay = 0
	return c
}

func TestNewPreviewRegistry(t *testing.T) {
	c := testConfig(t)

	reg, src, err := newPreviewRegistry(context.Background(), c)
	require.NoError(t, err)
	m, ok := reg.(*preview.Memory)
	require.True(t, ok)
	assert.Same(t, m, src)

	c.PreviewBackend = "ftp"
	_, _, err = newPreviewRegistry(context.Background(), c)
	assert.ErrorContains(t, err, "unknown preview backend")
}

func TestNewPreviewRegistry_S3(t *testing.T) {
	c := testConfig(t)
	c.PreviewBackend = config.PreviewBackendS3

	reg, src, err := newPreviewRegistry(context.Background(), c)
	require.NoError(t, err)
	_, ok := reg.(*preview.S3)
	assert.True(t, ok)
	assert.Nil(t, src)
}

func TestNewApp_WithoutDatabase(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.Nil(t, app.db)
	assert.NotNil(t, app.sessions)
	assert.NotNil(t, app.processor)
}

func TestNewApp_BadBackend(t *testing.T) {
	c := testConfig(t)
	c.PreviewBackend = "ftp"
	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Zero(t, app.sessions.Len())
}
