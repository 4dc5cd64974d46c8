package images

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

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (file_name, file_extension, title, url, storage_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, date_created`

	err := r.db.QueryRowContext(ctx, query, img.FileName, img.FileExtension, img.Title, img.URL, img.StorageKey).
		Scan(&img.ID, &img.DateCreated)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Image, error) {
	query :=
		`SELECT id, file_name, file_extension, title, url, storage_key, date_created
		 FROM images
		 ORDER BY date_created DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Image, 0)
	for rows.Next() {
		img := &models.Image{}
		if err := rows.Scan(&img.ID, &img.FileName, &img.FileExtension, &img.Title, &img.URL, &img.StorageKey, &img.DateCreated); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// GetByStorageKey returns the newest record stored under key.
func (r *PostgresRepository) GetByStorageKey(ctx context.Context, key string) (*models.Image, error) {
	query :=
		`SELECT id, file_name, file_extension, title, url, storage_key, date_created
		 FROM images
		 WHERE storage_key = $1
		 ORDER BY date_created DESC
		 LIMIT 1`

	img := &models.Image{}
	err := r.db.QueryRowContext(ctx, query, key).
		Scan(&img.ID, &img.FileName, &img.FileExtension, &img.Title, &img.URL, &img.StorageKey, &img.DateCreated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}
