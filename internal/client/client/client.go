package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/codepulse/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*models.Session, error)

	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, name, urlHandle string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id, name, urlHandle string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListBlogPosts(ctx context.Context) ([]*models.BlogPost, error)
	GetBlogPost(ctx context.Context, idOrHandle string) (*models.BlogPost, error)
	CreateBlogPost(ctx context.Context, post *models.NewBlogPost) (*models.BlogPost, error)
	UpdateBlogPost(ctx context.Context, id string, post *models.NewBlogPost) (*models.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) error

	ListImages(ctx context.Context) ([]*models.Image, error)
	UploadImage(ctx context.Context, upload *ImageUpload) (*models.Image, error)
}

// ImageUpload describes one multipart image upload. FileName is the stored
// name without extension; SourceName supplies the extension.
type ImageUpload struct {
	FileName   string
	Title      string
	SourceName string
	Body       io.Reader
}

// TokenSource yields the cached access token, or "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) string
}
