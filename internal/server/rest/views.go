package rest

import (
	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/server/assets"
	"github.com/dmitrijs2005/upscaler/internal/server/intake"
)

func assetView(a assets.Asset) api.Asset {
	return api.Asset{
		ID:         a.ID,
		FileName:   a.FileName,
		PreviewURL: a.PreviewHandle,
		Digest:     a.Digest,
		Width:      a.Metadata.Width,
		Height:     a.Metadata.Height,
		ByteSize:   a.Metadata.ByteSize,
		MimeType:   a.Metadata.MimeType,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}
}

func assetViews(list []assets.Asset) []api.Asset {
	out := make([]api.Asset, len(list))
	for i, a := range list {
		out[i] = assetView(a)
	}
	return out
}

func processedView(p assets.ProcessedAsset) api.ProcessedAsset {
	v := api.ProcessedAsset{
		ID:           p.ID,
		SourceID:     p.SourceID,
		FileName:     p.FileName,
		MimeType:     p.Metadata.MimeType,
		ByteSize:     p.Metadata.ByteSize,
		Width:        p.Metadata.Width,
		Height:       p.Metadata.Height,
		ResultWidth:  p.ResultWidth,
		ResultHeight: p.ResultHeight,
		Downloadable: p.HasResult(),
		ProcessedAt:  p.ProcessedAt,
	}
	if p.Settings != nil {
		v.Settings = &api.Settings{
			ScaleFactor: p.Settings.ScaleFactor,
			Algorithm:   string(p.Settings.Algorithm),
			Quality:     p.Settings.Quality,
		}
	}
	return v
}

func rejectionViews(list []intake.Rejection) []api.Rejection {
	out := make([]api.Rejection, len(list))
	for i, r := range list {
		out[i] = api.Rejection{Name: r.Name, Size: r.Size, Reason: r.Reason.Error()}
	}
	return out
}
