package assets

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/dmitrijs2005/upscaler/internal/cryptox"
	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/google/uuid"
)

// PreviewRegistry creates and releases preview handles. A handle is a
// short-lived reference a display layer can use to render bytes without
// reading them from the store. Revoke must accept an already revoked handle.
type PreviewRegistry interface {
	Create(ctx context.Context, id, contentType string, data []byte) (string, error)
	Revoke(ctx context.Context, handle string) error
}

// Store is the single source of truth for one client's assets, selection
// and processed results. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	registry   PreviewRegistry
	logger     logging.Logger
	assets     []*Asset
	selectedID string
	processed  []ProcessedAsset
	processing bool
	inFlight   map[string]struct{}
	closed     bool

	now   func() time.Time
	newID func() string
}

func NewStore(registry PreviewRegistry, logger logging.Logger) *Store {
	return &Store{
		registry: registry,
		logger:   logger.With("module", "asset_store"),
		inFlight: make(map[string]struct{}),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewID allocates an identifier from the same source the store uses for assets.
func (s *Store) NewID() string {
	return s.newID()
}

// AddAssets appends one asset per file, in order, each with a fresh preview
// handle, zero dimensions and status uploaded. Filtering is the caller's job.
//
// When the registry fails, every handle created by this call is revoked and
// nothing is appended. A closed store refuses with ErrorSessionClosed, also
// revoking whatever it created while the close raced the call.
func (s *Store) AddAssets(ctx context.Context, files []File) ([]Asset, error) {
	if s.isClosed() {
		return nil, common.ErrorSessionClosed
	}

	created := make([]*Asset, 0, len(files))

	for _, f := range files {
		id := s.newID()
		handle, err := s.registry.Create(ctx, id, f.ContentType, f.Data)
		if err != nil {
			for _, a := range created {
				s.revoke(ctx, a)
			}
			return nil, fmt.Errorf("create preview for %q: %w", f.Name, err)
		}

		created = append(created, &Asset{
			ID:            id,
			FileName:      f.Name,
			SourceBytes:   f.Data,
			PreviewHandle: handle,
			Digest:        cryptox.Digest(f.Data),
			Metadata: Metadata{
				ByteSize: int64(len(f.Data)),
				MimeType: f.ContentType,
			},
			Status:    StatusUploaded,
			CreatedAt: s.now(),
		})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		for _, a := range created {
			s.revoke(ctx, a)
		}
		return nil, common.ErrorSessionClosed
	}
	s.assets = append(s.assets, created...)
	s.mu.Unlock()

	out := make([]Asset, len(created))
	for i, a := range created {
		out[i] = *a
	}

	s.logger.Info(ctx, "assets added", "count", len(out))
	return out, nil
}

// RemoveAsset revokes the asset's preview handle and drops it from the
// collection, clearing the selection if it pointed at it. It reports whether
// the id was present; an absent id is not an error.
func (s *Store) RemoveAsset(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.assets[idx]
	s.assets = slices.Delete(s.assets, idx, idx+1)
	if s.selectedID == id {
		s.selectedID = ""
	}
	delete(s.inFlight, id)
	s.mu.Unlock()

	s.revoke(ctx, removed)
	s.logger.Info(ctx, "asset removed", "id", id)
	return true
}

// SelectAsset makes a the current selection. Membership is not checked:
// callers pass assets obtained from this store. Selecting an asset that is
// not in the store leaves Selected reporting nothing.
func (s *Store) SelectAsset(a Asset) {
	s.mu.Lock()
	s.selectedID = a.ID
	s.mu.Unlock()
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// Selected returns the selected asset, if any.
func (s *Store) Selected() (Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selectedID == "" {
		return Asset{}, false
	}
	idx := s.indexOf(s.selectedID)
	if idx < 0 {
		return Asset{}, false
	}
	return *s.assets[idx], true
}

// SetProcessing sets the store-wide processing flag.
func (s *Store) SetProcessing(processing bool) {
	s.mu.Lock()
	s.processing = processing
	s.mu.Unlock()
}

// IsProcessing reports the processing flag, or true while any asset is in flight.
func (s *Store) IsProcessing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing || len(s.inFlight) > 0
}

// AddProcessedAsset appends p to the processed results. Results for the same
// source are not de-duplicated.
func (s *Store) AddProcessedAsset(p ProcessedAsset) {
	s.mu.Lock()
	s.processed = append(s.processed, p)
	s.mu.Unlock()
}

// ClearAll revokes every live preview handle, empties all collections,
// clears the selection and resets the processing flag.
func (s *Store) ClearAll(ctx context.Context) {
	s.clear(ctx, false)
}

// Close clears the store like ClearAll and makes it terminal: later
// AddAssets and BeginProcessing calls fail with ErrorSessionClosed. Closing
// twice is harmless.
func (s *Store) Close(ctx context.Context) {
	s.clear(ctx, true)
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) clear(ctx context.Context, terminal bool) {
	s.mu.Lock()
	if terminal {
		s.closed = true
	}
	live := s.assets
	s.assets = nil
	s.processed = nil
	s.selectedID = ""
	s.processing = false
	s.inFlight = make(map[string]struct{})
	s.mu.Unlock()

	for _, a := range live {
		s.revoke(ctx, a)
	}
	s.logger.Info(ctx, "store cleared", "revoked", len(live))
}

// Assets returns the assets in insertion order.
func (s *Store) Assets() []Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Asset, len(s.assets))
	for i, a := range s.assets {
		out[i] = *a
	}
	return out
}

// Get returns the asset with the given id.
func (s *Store) Get(id string) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Asset{}, fmt.Errorf("asset %s: %w", id, common.ErrorNotFound)
	}
	return *s.assets[idx], nil
}

// ProcessedAssets returns processed results in the order they were added.
func (s *Store) ProcessedAssets() []ProcessedAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.processed)
}

// GetProcessed returns the processed result with the given id.
func (s *Store) GetProcessed(id string) (ProcessedAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.processed {
		if p.ID == id {
			return p, nil
		}
	}
	return ProcessedAsset{}, fmt.Errorf("processed asset %s: %w", id, common.ErrorNotFound)
}

// UpdateMetadata records the decoded dimensions of an asset.
func (s *Store) UpdateMetadata(id string, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("asset %s: %w", id, common.ErrorNotFound)
	}
	s.assets[idx].Metadata.Width = width
	s.assets[idx].Metadata.Height = height
	return nil
}

// BeginProcessing moves an asset into the processing state. Only one run per
// asset may be outstanding; a second call fails with ErrorAlreadyProcessing.
func (s *Store) BeginProcessing(id string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Asset{}, common.ErrorSessionClosed
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return Asset{}, fmt.Errorf("asset %s: %w", id, common.ErrorNotFound)
	}
	a := s.assets[idx]
	if a.Status == StatusProcessing {
		return Asset{}, fmt.Errorf("asset %s: %w", id, common.ErrorAlreadyProcessing)
	}
	a.Status = StatusProcessing
	s.inFlight[id] = struct{}{}
	return *a, nil
}

// CompleteProcessing marks the asset completed and appends its result. If the
// asset was removed while in flight the result is dropped.
func (s *Store) CompleteProcessing(id string, p ProcessedAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.inFlightAsset(id)
	if err != nil {
		return err
	}
	a.Status = StatusCompleted
	delete(s.inFlight, id)
	s.processed = append(s.processed, p)
	return nil
}

// FailProcessing moves an in-flight asset to the error state.
func (s *Store) FailProcessing(ctx context.Context, id string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.inFlightAsset(id)
	if err != nil {
		return err
	}
	a.Status = StatusError
	delete(s.inFlight, id)
	s.logger.Warn(ctx, "processing failed", "id", id, "error", cause)
	return nil
}

func (s *Store) inFlightAsset(id string) (*Asset, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("asset %s: %w", id, common.ErrorNotFound)
	}
	if _, ok := s.inFlight[id]; !ok {
		return nil, fmt.Errorf("asset %s is not processing: %w", id, common.ErrorNotFound)
	}
	return s.assets[idx], nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.assets, func(a *Asset) bool { return a.ID == id })
}

func (s *Store) revoke(ctx context.Context, a *Asset) {
	if err := s.registry.Revoke(ctx, a.PreviewHandle); err != nil {
		s.logger.Warn(ctx, "preview revoke failed", "id", a.ID, "error", err)
	}
}
