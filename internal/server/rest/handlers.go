package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/metrics"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
	"github.com/dmitrijs2005/codepulse/internal/server/services"
	"github.com/dmitrijs2005/codepulse/internal/server/storage"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

type CategoryService interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id string) (*models.Category, error)
}

type BlogPostService interface {
	Create(ctx context.Context, p *models.BlogPost, categoryIDs []string) (*models.BlogPost, error)
	List(ctx context.Context) ([]*models.BlogPost, error)
	Get(ctx context.Context, idOrHandle string) (*models.BlogPost, error)
	Update(ctx context.Context, p *models.BlogPost, categoryIDs []string) (*models.BlogPost, error)
	Delete(ctx context.Context, id string) (*models.BlogPost, error)
}

type ImageService interface {
	Upload(ctx context.Context, in *services.ImageUpload) (*models.Image, error)
	List(ctx context.Context) ([]*models.Image, error)
	Open(ctx context.Context, name string) (*storage.Blob, error)
}

type handlers struct {
	users      UserService
	categories CategoryService
	posts      BlogPostService
	images     ImageService
	metrics    *metrics.Metrics
	log        logging.Logger
	// maxUpload caps an image upload body; zero means no cap.
	maxUpload int64
}

// multipartOverhead leaves room for the boundary, part headers and the
// fileName/title fields around the file itself.
const multipartOverhead = 1 << 20

func (h *handlers) register(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *handlers) login(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuth("login_failed")
		writeError(c, err)
		return
	}
	h.metrics.RecordAuth("login_ok")

	roles := res.Roles
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, loginResponse{Email: res.Email, Token: res.Token, Roles: roles})
}

func (h *handlers) createCategory(c *gin.Context) {
	var req categoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cat, err := h.categories.Create(c.Request.Context(), &models.Category{Name: req.Name, URLHandle: req.URLHandle})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTO(cat))
}

func (h *handlers) listCategories(c *gin.Context) {
	cats, err := h.categories.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]categoryDTO, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryDTO(cat))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getCategory(c *gin.Context) {
	cat, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTO(cat))
}

func (h *handlers) updateCategory(c *gin.Context) {
	var req categoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cat, err := h.categories.Update(c.Request.Context(), &models.Category{ID: c.Param("id"), Name: req.Name, URLHandle: req.URLHandle})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTO(cat))
}

func (h *handlers) deleteCategory(c *gin.Context) {
	cat, err := h.categories.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTO(cat))
}

func (h *handlers) createBlogPost(c *gin.Context) {
	var req blogPostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.posts.Create(c.Request.Context(), req.toModel(""), req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBlogPostDTO(p))
}

func (h *handlers) listBlogPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]blogPostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toBlogPostDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getBlogPost(c *gin.Context) {
	p, err := h.posts.Get(c.Request.Context(), c.Param("idOrHandle"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBlogPostDTO(p))
}

func (h *handlers) updateBlogPost(c *gin.Context) {
	var req blogPostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	p, err := h.posts.Update(c.Request.Context(), req.toModel(c.Param("id")), req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBlogPostDTO(p))
}

func (h *handlers) deleteBlogPost(c *gin.Context) {
	p, err := h.posts.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBlogPostDTO(p))
}

func (h *handlers) listImages(c *gin.Context) {
	imgs, err := h.images.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]imageDTO, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, toImageDTO(img))
	}
	c.JSON(http.StatusOK, out)
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request.Host
}

func (h *handlers) uploadImage(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			validationProblem(c, fmt.Sprintf("file: File size cannot be more than %dMB", h.maxUpload>>20))
			return
		}
		validationProblem(c, "file: The file field is required.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	img, err := h.images.Upload(c.Request.Context(), &services.ImageUpload{
		FileName:  c.PostForm("fileName"),
		Title:     c.PostForm("title"),
		Extension: filepath.Ext(fh.Filename),
		Size:      fh.Size,
		Body:      f,
		BaseURL:   requestBaseURL(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toImageDTO(img))
}

func (h *handlers) serveImage(c *gin.Context) {
	blob, err := h.images.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer blob.Body.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if blob.ContentLength > 0 {
		c.Header("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, blob.Body); err != nil {
		h.log.Warn(c.Request.Context(), "image stream interrupted", "name", c.Param("name"), "error", err)
	}
}
