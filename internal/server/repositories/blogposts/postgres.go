package blogposts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

const postColumns = `id, title, short_description, content, url_handle, featured_image_url, published_date, author, is_visible`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	err := s.Scan(&p.ID, &p.Title, &p.ShortDescription, &p.Content, &p.URLHandle,
		&p.FeaturedImageURL, &p.PublishedDate, &p.Author, &p.IsVisible)
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	query :=
		`INSERT INTO blog_posts (title, short_description, content, url_handle, featured_image_url, published_date, author, is_visible)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, p.Title, p.ShortDescription, p.Content, p.URLHandle,
		p.FeaturedImageURL, p.PublishedDate, p.Author, p.IsVisible).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.BlogPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM blog_posts ORDER BY published_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.BlogPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.BlogPost, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByURLHandle(ctx context.Context, handle string) (*models.BlogPost, error) {
	return r.getOne(ctx,
		`SELECT `+postColumns+` FROM blog_posts
		 WHERE url_handle = $1
		 ORDER BY published_date DESC
		 LIMIT 1`, handle)
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	query :=
		`UPDATE blog_posts
		 SET title = $2, short_description = $3, content = $4, url_handle = $5,
		     featured_image_url = $6, published_date = $7, author = $8, is_visible = $9
		 WHERE id = $1
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Title, p.ShortDescription, p.Content, p.URLHandle,
		p.FeaturedImageURL, p.PublishedDate, p.Author, p.IsVisible).Scan(&p.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.BlogPost, error) {
	return r.getOne(ctx, `DELETE FROM blog_posts WHERE id = $1 RETURNING `+postColumns, id)
}

// SetCategories replaces the post's category links. Run it inside a
// transaction together with the post write.
func (r *PostgresRepository) SetCategories(ctx context.Context, postID string, categoryIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blog_post_categories WHERE blog_post_id = $1`, postID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, id := range categoryIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO blog_post_categories (blog_post_id, category_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, postID, id)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) CategoriesFor(ctx context.Context, postIDs []string) (map[string][]*models.Category, error) {
	result := make(map[string][]*models.Category, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query :=
		`SELECT bpc.blog_post_id, c.id, c.name, c.url_handle
		 FROM blog_post_categories bpc
		 JOIN categories c ON c.id = bpc.category_id
		 WHERE bpc.blog_post_id = ANY($1::uuid[])
		 ORDER BY c.name`

	rows, err := r.db.QueryContext(ctx, query, postIDs)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		c := &models.Category{}
		if err := rows.Scan(&postID, &c.ID, &c.Name, &c.URLHandle); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result[postID] = append(result[postID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
