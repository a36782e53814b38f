package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/upscaler/internal/server/models"
)

type Repository interface {
	Ensure(ctx context.Context, s *models.Session) error
	Touch(ctx context.Context, id string, at time.Time) error
	Get(ctx context.Context, id string) (*models.Session, error)
}
