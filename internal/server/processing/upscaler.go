// Package processing runs upscale jobs against asset stores. Each asset has
// at most one job in flight; a job can be cancelled, and every job ends by
// moving its asset to completed or error.
package processing

import (
	"context"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/server/assets"
)

// Upscaler turns a source image into a result image.
type Upscaler interface {
	Upscale(ctx context.Context, src assets.Asset, settings assets.ProcessingSettings) ([]byte, error)
}

// PassthroughUpscaler waits Delay and returns the source bytes unchanged.
// It stands in until a real resampler exists.
type PassthroughUpscaler struct {
	Delay time.Duration
}

func (p PassthroughUpscaler) Upscale(ctx context.Context, src assets.Asset, settings assets.ProcessingSettings) ([]byte, error) {
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	return src.SourceBytes, nil
}
