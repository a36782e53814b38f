package processed

import (
	"context"

	"github.com/dmitrijs2005/upscaler/internal/server/models"
)

type Repository interface {
	Save(ctx context.Context, p *models.ProcessedAsset) error
	ListBySession(ctx context.Context, sessionID string) ([]*models.ProcessedAsset, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
}
