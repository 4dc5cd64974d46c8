package categories

import (
	"context"

	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	// ListByIDs returns only the categories that exist; unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id string) (*models.Category, error)
}
