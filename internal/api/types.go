// Package api holds the JSON bodies exchanged between the HTTP API and its
// clients.
package api

import "time"

type SessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type Asset struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	PreviewURL string    `json:"preview_url"`
	Digest     string    `json:"digest"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	ByteSize   int64     `json:"byte_size"`
	MimeType   string    `json:"mime_type"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Settings struct {
	ScaleFactor float64 `json:"scale_factor"`
	Algorithm   string  `json:"algorithm"`
	Quality     int     `json:"quality"`
}

type ProcessedAsset struct {
	ID           string    `json:"id"`
	SourceID     string    `json:"source_id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	ByteSize     int64     `json:"byte_size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	ResultWidth  int       `json:"result_width"`
	ResultHeight int       `json:"result_height"`
	Settings     *Settings `json:"settings,omitempty"`
	Downloadable bool      `json:"downloadable"`
	ProcessedAt  time.Time `json:"processed_at"`
}

type AssetList struct {
	Assets     []Asset `json:"assets"`
	SelectedID string  `json:"selected_id,omitempty"`
	Processing bool    `json:"processing"`
}

type Rejection struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Reason string `json:"reason"`
}

type UploadResponse struct {
	Accepted []Asset     `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

type RemoveResponse struct {
	Removed bool `json:"removed"`
}

type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type SelectRequest struct {
	ID string `json:"id"`
}

type SelectionResponse struct {
	Asset *Asset `json:"asset"`
}

type ProcessingRequest struct {
	Processing bool `json:"processing"`
}

type ProcessingResponse struct {
	Processing bool `json:"processing"`
}

// ProcessRequest starts a run. Omitted fields take the server defaults.
type ProcessRequest struct {
	ScaleFactor *float64 `json:"scale_factor,omitempty"`
	Algorithm   *string  `json:"algorithm,omitempty"`
	Quality     *int     `json:"quality,omitempty"`
}

type ProcessedList struct {
	Processed []ProcessedAsset `json:"processed"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
