package blogposts

import (
	"context"

	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

// Repository stores posts and their category links. Post rows come back
// without Categories; use CategoriesFor to attach them.
type Repository interface {
	Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error)
	List(ctx context.Context) ([]*models.BlogPost, error)
	Get(ctx context.Context, id string) (*models.BlogPost, error)
	GetByURLHandle(ctx context.Context, handle string) (*models.BlogPost, error)
	Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error)
	Delete(ctx context.Context, id string) (*models.BlogPost, error)
	SetCategories(ctx context.Context, postID string, categoryIDs []string) error
	CategoriesFor(ctx context.Context, postIDs []string) (map[string][]*models.Category, error)
}
