package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/repomanager"
)

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CategoryService {
	return &CategoryService{db: db, repomanager: m, log: log.With("module", "categories")}
}

// normalizeCategory trims the fields; required fields are enforced when the
// request is bound.
func normalizeCategory(c *models.Category) {
	c.Name = strings.TrimSpace(c.Name)
	c.URLHandle = strings.TrimSpace(c.URLHandle)
}

func (s *CategoryService) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	normalizeCategory(c)
	out, err := s.repomanager.Categories(s.db).Create(ctx, c)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "category create failed", err)
	}
	return out, nil
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	out, err := s.repomanager.Categories(s.db).List(ctx)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "category list failed", err)
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	out, err := s.repomanager.Categories(s.db).Get(ctx, id)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "category get failed", err)
	}
	return out, nil
}

func (s *CategoryService) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	if !isUUID(c.ID) {
		return nil, common.ErrorNotFound
	}
	normalizeCategory(c)
	out, err := s.repomanager.Categories(s.db).Update(ctx, c)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "category update failed", err)
	}
	return out, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) (*models.Category, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	out, err := s.repomanager.Categories(s.db).Delete(ctx, id)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "category delete failed", err)
	}
	return out, nil
}
