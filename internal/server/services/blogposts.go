package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// storeFailure logs a storage error and hides it behind common.ErrorInternal.
// Not-found passes through untouched.
func storeFailure(ctx context.Context, log logging.Logger, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	log.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}

type BlogPostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewBlogPostService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *BlogPostService {
	return &BlogPostService{db: db, repomanager: m, log: log.With("module", "blogposts")}
}

func normalizeBlogPost(p *models.BlogPost) {
	p.Title = strings.TrimSpace(p.Title)
	p.URLHandle = strings.TrimSpace(p.URLHandle)
}

// resolveCategories drops ids that are malformed or name no category.
func (s *BlogPostService) resolveCategories(ctx context.Context, db dbx.DBTX, ids []string) ([]*models.Category, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*models.Category{}, nil
	}
	return s.repomanager.Categories(db).ListByIDs(ctx, valid)
}

func categoryIDs(cs []*models.Category) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

// save writes the post and replaces its category set in one transaction.
func (s *BlogPostService) save(ctx context.Context, p *models.BlogPost, ids []string, update bool) (*models.BlogPost, error) {
	normalizeBlogPost(p)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cats, err := s.resolveCategories(ctx, tx, ids)
		if err != nil {
			return err
		}

		repo := s.repomanager.BlogPosts(tx)
		if update {
			p, err = repo.Update(ctx, p)
		} else {
			p, err = repo.Create(ctx, p)
		}
		if err != nil {
			return err
		}

		if err := repo.SetCategories(ctx, p.ID, categoryIDs(cats)); err != nil {
			return err
		}
		p.Categories = cats
		return nil
	})
	if err != nil {
		return nil, storeFailure(ctx, s.log, "blog post save failed", err)
	}
	return p, nil
}

// Create stores p linked to the existing categories among categoryIDs.
func (s *BlogPostService) Create(ctx context.Context, p *models.BlogPost, categoryIDs []string) (*models.BlogPost, error) {
	return s.save(ctx, p, categoryIDs, false)
}

// Update replaces every field of the post p.ID and its category set.
func (s *BlogPostService) Update(ctx context.Context, p *models.BlogPost, categoryIDs []string) (*models.BlogPost, error) {
	if !isUUID(p.ID) {
		return nil, common.ErrorNotFound
	}
	return s.save(ctx, p, categoryIDs, true)
}

func (s *BlogPostService) attachCategories(ctx context.Context, posts ...*models.BlogPost) error {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	byPost, err := s.repomanager.BlogPosts(s.db).CategoriesFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Categories = byPost[p.ID]
		if p.Categories == nil {
			p.Categories = []*models.Category{}
		}
	}
	return nil
}

func (s *BlogPostService) List(ctx context.Context) ([]*models.BlogPost, error) {
	posts, err := s.repomanager.BlogPosts(s.db).List(ctx)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "blog post list failed", err)
	}
	if err := s.attachCategories(ctx, posts...); err != nil {
		return nil, storeFailure(ctx, s.log, "blog post categories failed", err)
	}
	return posts, nil
}

// Get looks the post up by id when idOrHandle is a UUID and by URL handle
// otherwise.
func (s *BlogPostService) Get(ctx context.Context, idOrHandle string) (*models.BlogPost, error) {
	repo := s.repomanager.BlogPosts(s.db)

	var (
		p   *models.BlogPost
		err error
	)
	if isUUID(idOrHandle) {
		p, err = repo.Get(ctx, idOrHandle)
	} else {
		p, err = repo.GetByURLHandle(ctx, idOrHandle)
	}
	if err != nil {
		return nil, storeFailure(ctx, s.log, "blog post get failed", err)
	}

	if err := s.attachCategories(ctx, p); err != nil {
		return nil, storeFailure(ctx, s.log, "blog post categories failed", err)
	}
	return p, nil
}

func (s *BlogPostService) Delete(ctx context.Context, id string) (*models.BlogPost, error) {
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	p, err := s.repomanager.BlogPosts(s.db).Delete(ctx, id)
	if err != nil {
		return nil, storeFailure(ctx, s.log, "blog post delete failed", err)
	}
	return p, nil
}
