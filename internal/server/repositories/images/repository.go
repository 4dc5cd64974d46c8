package images

import (
	"context"

	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	List(ctx context.Context) ([]*models.Image, error)
	GetByStorageKey(ctx context.Context, key string) (*models.Image, error)
}
