package services

import (
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/dmitrijs2005/upscaler/internal/server/models"
)

func toModel(sessionID string, p assets.ProcessedAsset) *models.ProcessedAsset {
	settings := assets.DefaultSettings()
	if p.Settings != nil {
		settings = *p.Settings
	}
	return &models.ProcessedAsset{
		ID:           p.ID,
		SessionID:    sessionID,
		SourceID:     p.SourceID,
		FileName:     p.FileName,
		MimeType:     p.Metadata.MimeType,
		Width:        p.Metadata.Width,
		Height:       p.Metadata.Height,
		ByteSize:     p.Metadata.ByteSize,
		ScaleFactor:  settings.ScaleFactor,
		Algorithm:    string(settings.Algorithm),
		Quality:      settings.Quality,
		ResultWidth:  p.ResultWidth,
		ResultHeight: p.ResultHeight,
		ProcessedAt:  p.ProcessedAt,
	}
}

// fromModel rebuilds a processed asset from its record. Result bytes are not
// persisted, so the returned value has none.
func fromModel(m *models.ProcessedAsset) assets.ProcessedAsset {
	return assets.ProcessedAsset{
		Asset: assets.Asset{
			ID:       m.ID,
			FileName: m.FileName,
			Metadata: assets.Metadata{
				Width:    m.Width,
				Height:   m.Height,
				ByteSize: m.ByteSize,
				MimeType: m.MimeType,
			},
			Status:    assets.StatusCompleted,
			CreatedAt: m.ProcessedAt,
		},
		SourceID: m.SourceID,
		Settings: &assets.ProcessingSettings{
			ScaleFactor: m.ScaleFactor,
			Algorithm:   assets.Algorithm(m.Algorithm),
			Quality:     m.Quality,
		},
		ResultWidth:  m.ResultWidth,
		ResultHeight: m.ResultHeight,
		ProcessedAt:  m.ProcessedAt,
	}
}
