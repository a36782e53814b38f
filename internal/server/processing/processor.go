package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/logging"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
)

// Recorder is told about every completed result, e.g. to persist its metadata.
type Recorder interface {
	Record(ctx context.Context, sessionID string, p assets.ProcessedAsset) error
}

type jobKey struct {
	session string
	asset   string
}

type job struct {
	seq    uint64
	cancel context.CancelFunc
}

type Processor struct {
	upscaler Upscaler
	recorder Recorder
	logger   logging.Logger
	now      func() time.Time

	base     context.Context
	stopBase context.CancelFunc

	mu   sync.Mutex
	seq  uint64
	jobs map[jobKey]job
	wg   sync.WaitGroup
}

// NewProcessor builds a processor. recorder may be nil.
func NewProcessor(upscaler Upscaler, recorder Recorder, logger logging.Logger) *Processor {
	base, stop := context.WithCancel(context.Background())
	return &Processor{
		upscaler: upscaler,
		recorder: recorder,
		logger:   logger.With("module", "processor"),
		now:      time.Now,
		base:     base,
		stopBase: stop,
		jobs:     make(map[jobKey]job),
	}
}

// Start validates settings, moves the asset into processing and runs the
// upscaler in the background. It fails with common.ErrorAlreadyProcessing
// when a job for the asset is still outstanding.
func (p *Processor) Start(sessionID string, store *assets.Store, assetID string, settings assets.ProcessingSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	src, err := store.BeginProcessing(assetID)
	if err != nil {
		return err
	}

	key := jobKey{session: sessionID, asset: assetID}
	ctx, cancel := context.WithCancel(p.base)

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.jobs[key] = job{seq: seq, cancel: cancel}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.forget(key, seq, cancel)
		p.run(ctx, sessionID, store, src, settings)
	}()

	p.logger.Info(ctx, "processing started",
		"session", sessionID, "asset", assetID,
		"scale", settings.ScaleFactor, "algorithm", settings.Algorithm)
	return nil
}

func (p *Processor) run(ctx context.Context, sessionID string, store *assets.Store, src assets.Asset, settings assets.ProcessingSettings) {
	result, err := p.upscaler.Upscale(ctx, src, settings)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			err = fmt.Errorf("cancelled: %w", err)
		}
		if ferr := store.FailProcessing(context.WithoutCancel(ctx), src.ID, err); ferr != nil {
			p.logger.Warn(ctx, "dropping failure of removed asset", "asset", src.ID, "error", ferr)
			return
		}
		p.logger.Error(ctx, "processing failed", "session", sessionID, "asset", src.ID, "error", err)
		return
	}

	processed := assets.NewProcessedAsset(store.NewID(), src, result, settings, p.now())
	if err := store.CompleteProcessing(src.ID, processed); err != nil {
		p.logger.Warn(ctx, "dropping result of removed asset", "asset", src.ID, "error", err)
		return
	}
	p.logger.Info(ctx, "processing completed", "session", sessionID, "asset", src.ID, "result", processed.ID)

	if p.recorder != nil {
		if err := p.recorder.Record(context.WithoutCancel(ctx), sessionID, processed); err != nil {
			p.logger.Error(ctx, "recording result failed", "result", processed.ID, "error", err)
		}
	}
}

// Cancel aborts the outstanding job for the asset and reports whether one existed.
func (p *Processor) Cancel(sessionID, assetID string) bool {
	p.mu.Lock()
	j, ok := p.jobs[jobKey{session: sessionID, asset: assetID}]
	p.mu.Unlock()

	if ok {
		j.cancel()
	}
	return ok
}

// CancelSession aborts every job of a session.
func (p *Processor) CancelSession(sessionID string) int {
	p.mu.Lock()
	var cancels []context.CancelFunc
	for k, j := range p.jobs {
		if k.session == sessionID {
			cancels = append(cancels, j.cancel)
		}
	}
	p.mu.Unlock()

	for _, c := range cancels {
		c()
	}
	return len(cancels)
}

// Wait blocks until every started job has finished.
func (p *Processor) Wait() {
	p.wg.Wait()
}

// Shutdown cancels all jobs and waits for them.
func (p *Processor) Shutdown() {
	p.stopBase()
	p.wg.Wait()
}

// forget drops the job entry unless a newer job for the same asset replaced it.
func (p *Processor) forget(key jobKey, seq uint64, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	if j, ok := p.jobs[key]; ok && j.seq == seq {
		delete(p.jobs, key)
	}
	p.mu.Unlock()
}
