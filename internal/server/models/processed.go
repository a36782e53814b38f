package models

import "time"

// ProcessedAsset is the durable part of a processing result: metadata and
// settings only.
type ProcessedAsset struct {
	ID           string
	SessionID    string
	SourceID     string
	FileName     string
	MimeType     string
	Width        int
	Height       int
	ByteSize     int64
	ScaleFactor  float64
	Algorithm    string
	Quality      int
	ResultWidth  int
	ResultHeight int
	ProcessedAt  time.Time
}
