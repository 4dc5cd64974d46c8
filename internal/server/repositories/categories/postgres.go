package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (name, url_handle)
		 VALUES ($1, $2)
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, c.Name, c.URLHandle).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Category, error) {
	return r.query(ctx, `SELECT id, name, url_handle FROM categories ORDER BY name`)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Category, error) {
	if len(ids) == 0 {
		return []*models.Category{}, nil
	}
	return r.query(ctx,
		`SELECT id, name, url_handle FROM categories
		 WHERE id = ANY($1::uuid[])
		 ORDER BY name`, ids)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Category, 0)
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.URLHandle); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, url_handle FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.URLHandle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	query :=
		`UPDATE categories SET name = $2, url_handle = $3
		 WHERE id = $1
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.URLHandle).Scan(&c.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM categories WHERE id = $1 RETURNING id, name, url_handle`, id).
		Scan(&c.ID, &c.Name, &c.URLHandle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
