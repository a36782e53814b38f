// Package preview provides preview-handle registries for the asset store.
// Memory keeps bytes in process and serves them under a URL path; S3 uploads
// them to object storage and hands out presigned GET URLs.
package preview

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/dmitrijs2005/upscaler/internal/cryptox"
	"github.com/google/uuid"
)

// Preview is what a Memory handle resolves to.
type Preview struct {
	Data        []byte
	ContentType string
	Digest      string
}

// Memory is an in-process registry. Handles look like "<basePath>/<token>".
type Memory struct {
	mu       sync.RWMutex
	basePath string
	entries  map[string]Preview
}

func NewMemory(basePath string) *Memory {
	return &Memory{
		basePath: strings.TrimSuffix(basePath, "/"),
		entries:  make(map[string]Preview),
	}
}

func (m *Memory) Create(ctx context.Context, id, contentType string, data []byte) (string, error) {
	token := uuid.NewString()

	m.mu.Lock()
	m.entries[token] = Preview{Data: data, ContentType: contentType, Digest: cryptox.Digest(data)}
	m.mu.Unlock()

	return path.Join(m.basePath, token), nil
}

// Revoke forgets the handle. Unknown or already revoked handles are ignored.
func (m *Memory) Revoke(ctx context.Context, handle string) error {
	token := m.token(handle)

	m.mu.Lock()
	delete(m.entries, token)
	m.mu.Unlock()

	return nil
}

// Open resolves a token (the last path element of a handle).
func (m *Memory) Open(token string) (Preview, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.entries[token]
	return p, ok
}

// Live returns the number of unrevoked handles.
func (m *Memory) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// BasePath is the URL prefix handles are issued under.
func (m *Memory) BasePath() string {
	return m.basePath
}

func (m *Memory) token(handle string) string {
	return strings.TrimPrefix(strings.TrimPrefix(handle, m.basePath), "/")
}
