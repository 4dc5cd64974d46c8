package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/codepulse/internal/client/client"
	"github.com/dmitrijs2005/codepulse/internal/client/models"
)

type BlogService interface {
	Categories(ctx context.Context) ([]*models.Category, error)
	Category(ctx context.Context, id string) (*models.Category, error)
	AddCategory(ctx context.Context, name, urlHandle string) (*models.Category, error)
	EditCategory(ctx context.Context, id, name, urlHandle string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	Posts(ctx context.Context) ([]*models.BlogPost, error)
	Post(ctx context.Context, idOrHandle string) (*models.BlogPost, error)
	AddPost(ctx context.Context, post *models.NewBlogPost) (*models.BlogPost, error)
	EditPost(ctx context.Context, id string, post *models.NewBlogPost) (*models.BlogPost, error)
	DeletePost(ctx context.Context, id string) error

	Images(ctx context.Context) ([]*models.Image, error)
	UploadImage(ctx context.Context, upload *client.ImageUpload) (*models.Image, error)
}

type blogService struct {
	client  client.Client
	session Session
}

func NewBlogService(c client.Client, s Session) BlogService {
	return &blogService{client: c, session: s}
}

// guarded runs the writer guard, then fn. A 401 from the server means the
// cached token is no longer accepted, so the session is dropped.
func (b *blogService) guarded(ctx context.Context, fn func() error) error {
	if err := b.session.Guard(ctx); err != nil {
		return err
	}
	err := fn()
	if errors.Is(err, client.ErrUnauthorized) {
		_ = b.session.Logout(ctx)
	}
	return err
}

func (b *blogService) Categories(ctx context.Context) ([]*models.Category, error) {
	return b.client.ListCategories(ctx)
}

func (b *blogService) AddCategory(ctx context.Context, name, urlHandle string) (*models.Category, error) {
	var out *models.Category
	err := b.guarded(ctx, func() (err error) {
		out, err = b.client.CreateCategory(ctx, name, urlHandle)
		return err
	})
	return out, err
}

func (b *blogService) Category(ctx context.Context, id string) (*models.Category, error) {
	return b.client.GetCategory(ctx, id)
}

func (b *blogService) EditCategory(ctx context.Context, id, name, urlHandle string) (*models.Category, error) {
	var out *models.Category
	err := b.guarded(ctx, func() (err error) {
		out, err = b.client.UpdateCategory(ctx, id, name, urlHandle)
		return err
	})
	return out, err
}

func (b *blogService) DeleteCategory(ctx context.Context, id string) error {
	return b.guarded(ctx, func() error { return b.client.DeleteCategory(ctx, id) })
}

func (b *blogService) Posts(ctx context.Context) ([]*models.BlogPost, error) {
	return b.client.ListBlogPosts(ctx)
}

func (b *blogService) Post(ctx context.Context, idOrHandle string) (*models.BlogPost, error) {
	return b.client.GetBlogPost(ctx, idOrHandle)
}

func (b *blogService) AddPost(ctx context.Context, post *models.NewBlogPost) (*models.BlogPost, error) {
	var out *models.BlogPost
	err := b.guarded(ctx, func() (err error) {
		out, err = b.client.CreateBlogPost(ctx, post)
		return err
	})
	return out, err
}

func (b *blogService) EditPost(ctx context.Context, id string, post *models.NewBlogPost) (*models.BlogPost, error) {
	var out *models.BlogPost
	err := b.guarded(ctx, func() (err error) {
		out, err = b.client.UpdateBlogPost(ctx, id, post)
		return err
	})
	return out, err
}

func (b *blogService) DeletePost(ctx context.Context, id string) error {
	return b.guarded(ctx, func() error { return b.client.DeleteBlogPost(ctx, id) })
}

func (b *blogService) Images(ctx context.Context) ([]*models.Image, error) {
	return b.client.ListImages(ctx)
}

func (b *blogService) UploadImage(ctx context.Context, upload *client.ImageUpload) (*models.Image, error) {
	var out *models.Image
	err := b.guarded(ctx, func() (err error) {
		out, err = b.client.UploadImage(ctx, upload)
		return err
	})
	return out, err
}
