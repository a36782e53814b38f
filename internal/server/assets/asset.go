// Package assets holds the in-memory asset store: the ordered collection of
// uploaded images, the current selection, processed results, and the
// per-asset processing state machine. Every preview handle the store creates
// is released exactly once, on removal, ClearAll or Close.
package assets

import (
	"time"

	"github.com/dmitrijs2005/upscaler/internal/cryptox"
)

// Status is the processing state of an asset.
//
//	uploaded ──► processing ──► completed
//	    ▲            │
//	    │            └────────► error
//	    └── (completed | error may be processed again)
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Metadata describes an image. Width and Height stay zero until the image
// has been decoded once.
type Metadata struct {
	Width    int
	Height   int
	ByteSize int64
	MimeType string
}

// Asset is one uploaded image.
type Asset struct {
	ID            string
	FileName      string
	SourceBytes   []byte
	PreviewHandle string
	Digest        string
	Metadata      Metadata
	Status        Status
	CreatedAt     time.Time
}

// File is a raw upload handed to the store after intake filtering.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ProcessedAsset is the outcome of processing an asset. It never carries a
// preview handle or the source bytes of the asset it came from.
type ProcessedAsset struct {
	Asset
	SourceID     string
	ResultBytes  []byte
	Settings     *ProcessingSettings
	ResultWidth  int
	ResultHeight int
	ProcessedAt  time.Time
}

// HasResult reports whether the result bytes are held in memory. Results
// restored from persistence carry metadata only.
func (p ProcessedAsset) HasResult() bool {
	return p.ResultBytes != nil
}

// NewProcessedAsset builds the processed record for src.
func NewProcessedAsset(id string, src Asset, result []byte, settings ProcessingSettings, at time.Time) ProcessedAsset {
	w, h := settings.TargetSize(src.Metadata.Width, src.Metadata.Height)

	base := src
	base.ID = id
	base.SourceBytes = nil
	base.PreviewHandle = ""
	base.Status = StatusCompleted
	base.Digest = cryptox.Digest(result)
	base.Metadata.ByteSize = int64(len(result))
	base.CreatedAt = at

	return ProcessedAsset{
		Asset:        base,
		SourceID:     src.ID,
		ResultBytes:  result,
		Settings:     &settings,
		ResultWidth:  w,
		ResultHeight: h,
		ProcessedAt:  at,
	}
}
