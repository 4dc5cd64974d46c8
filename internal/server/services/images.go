package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/config"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/codepulse/internal/server/storage"
)

const imageKeyPrefix = "images/"

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ImageUpload describes one multipart upload. Extension comes from the
// uploaded file's own name; FileName is the name the image is stored under.
type ImageUpload struct {
	FileName  string
	Title     string
	Extension string
	Size      int64
	Body      io.Reader
	// BaseURL is "<scheme>://<host>" of the request that carried the upload.
	BaseURL string
}

type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
	maxSize     int64
	log         logging.Logger
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore, cfg *config.Config, log logging.Logger) *ImageService {
	return &ImageService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		maxSize:     cfg.MaxImageSize,
		log:         log.With("module", "images"),
	}
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && path.Base(name) == name && !strings.Contains(name, `\`)
}

func (s *ImageService) check(in *ImageUpload) error {
	var problems []string

	if _, ok := allowedImageExtensions[strings.ToLower(in.Extension)]; !ok {
		problems = append(problems, "file: Unsupported file format")
	}
	if in.Size > s.maxSize {
		problems = append(problems, fmt.Sprintf("file: File size cannot be more than %dMB", s.maxSize>>20))
	}
	if !validName(strings.TrimSpace(in.FileName)) {
		problems = append(problems, "fileName: The FileName field is required and may not contain path separators.")
	}
	return common.NewValidationError(problems...)
}

// Upload stores the bytes first and then the record, so a listed image
// always has a blob behind it.
func (s *ImageService) Upload(ctx context.Context, in *ImageUpload) (*models.Image, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	ext := strings.ToLower(in.Extension)
	name := strings.TrimSpace(in.FileName) + ext
	key := imageKeyPrefix + name

	if err := s.blobs.Put(ctx, key, allowedImageExtensions[ext], in.Body, in.Size); err != nil {
		s.log.Error(ctx, "image upload failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	img := &models.Image{
		FileName:      strings.TrimSpace(in.FileName),
		FileExtension: ext,
		Title:         in.Title,
		URL:           strings.TrimRight(in.BaseURL, "/") + "/Images/" + name,
		StorageKey:    key,
	}

	img, err := s.repomanager.Images(s.db).Create(ctx, img)
	if err != nil {
		s.log.Error(ctx, "image record failed", "key", key, "error", err)
		s.dropOrphan(ctx, key)
		return nil, common.ErrorInternal
	}
	return img, nil
}

// dropOrphan deletes the blob at key unless an earlier record still points
// at it; re-uploading a name overwrites the same key.
func (s *ImageService) dropOrphan(ctx context.Context, key string) {
	_, err := s.repomanager.Images(s.db).GetByStorageKey(ctx, key)
	switch {
	case err == nil:
		return
	case !errors.Is(err, common.ErrorNotFound):
		s.log.Warn(ctx, "orphan check failed, blob kept", "key", key, "error", err)
		return
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "orphan blob left in storage", "key", key, "error", err)
	}
}

func (s *ImageService) List(ctx context.Context) ([]*models.Image, error) {
	return s.repomanager.Images(s.db).List(ctx)
}

// Open streams the stored image called name, e.g. "cat.png".
func (s *ImageService) Open(ctx context.Context, name string) (*storage.Blob, error) {
	if !validName(name) {
		return nil, common.ErrorNotFound
	}
	return s.blobs.Get(ctx, imageKeyPrefix+name)
}
