package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/client/models"
	"github.com/dmitrijs2005/codepulse/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient builds a client for the API rooted at baseURL. tokens may
// be nil, in which case no call is ever authorized.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// call is one API request. auth marks requests that must carry the token.
type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

func jsonCall(method, path string, in any, auth bool) (call, error) {
	c := call{method: method, path: path, auth: auth}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return c, err
		}
		c.body = bytes.NewReader(b)
		c.contentType = "application/json"
	}
	return c, nil
}

func (c *HTTPClient) do(ctx context.Context, rc call, out any) error {
	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, rc.body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if rc.contentType != "" {
		req.Header.Set("Content-Type", rc.contentType)
	}
	if rc.auth && c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeProblem(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", rc.method, rc.path, err)
	}
	return nil
}

func decodeProblem(resp *http.Response) error {
	pe := &ProblemError{Status: resp.StatusCode, kind: kindForStatus(resp.StatusCode)}

	var p problem
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if len(body) > 0 && json.Unmarshal(body, &p) == nil {
		pe.Title = p.Title
		pe.Detail = p.Detail
		pe.Problems = p.flatten()
	}
	return pe
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	rc, err := jsonCall(http.MethodPost, "/api/authentication/register", credentials{email, password}, false)
	if err != nil {
		return err
	}
	return c.do(ctx, rc, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Session, error) {
	rc, err := jsonCall(http.MethodPost, "/api/authentication/login", credentials{email, password}, false)
	if err != nil {
		return nil, err
	}
	var s models.Session
	if err := c.do(ctx, rc, &s); err != nil {
		return nil, err
	}
	if s.Roles == nil {
		s.Roles = []string{}
	}
	return &s, nil
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var out []*models.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/categories/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateCategory(ctx context.Context, name, urlHandle string) (*models.Category, error) {
	return c.sendCategory(ctx, http.MethodPost, "/api/categories", name, urlHandle)
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, id, name, urlHandle string) (*models.Category, error) {
	return c.sendCategory(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(id), name, urlHandle)
}

func (c *HTTPClient) sendCategory(ctx context.Context, method, path, name, urlHandle string) (*models.Category, error) {
	rc, err := jsonCall(method, path, models.Category{Name: name, URLHandle: urlHandle}, true)
	if err != nil {
		return nil, err
	}
	var out models.Category
	if err := c.do(ctx, rc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/categories/" + url.PathEscape(id), auth: true}, nil)
}

func (c *HTTPClient) ListBlogPosts(ctx context.Context) ([]*models.BlogPost, error) {
	var out []*models.BlogPost
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/blogposts"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetBlogPost(ctx context.Context, idOrHandle string) (*models.BlogPost, error) {
	var out models.BlogPost
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/blogposts/" + url.PathEscape(idOrHandle)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateBlogPost(ctx context.Context, post *models.NewBlogPost) (*models.BlogPost, error) {
	return c.sendBlogPost(ctx, http.MethodPost, "/api/blogposts", post)
}

// UpdateBlogPost replaces every field of post id, its category set included.
func (c *HTTPClient) UpdateBlogPost(ctx context.Context, id string, post *models.NewBlogPost) (*models.BlogPost, error) {
	return c.sendBlogPost(ctx, http.MethodPut, "/api/blogposts/"+url.PathEscape(id), post)
}

func (c *HTTPClient) sendBlogPost(ctx context.Context, method, path string, post *models.NewBlogPost) (*models.BlogPost, error) {
	rc, err := jsonCall(method, path, post, true)
	if err != nil {
		return nil, err
	}
	var out models.BlogPost
	if err := c.do(ctx, rc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteBlogPost(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/blogposts/" + url.PathEscape(id), auth: true}, nil)
}

func (c *HTTPClient) ListImages(ctx context.Context) ([]*models.Image, error) {
	var out []*models.Image
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/images"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UploadImage(ctx context.Context, upload *ImageUpload) (*models.Image, error) {
	if upload == nil || upload.Body == nil {
		return nil, errors.New("image upload has no body")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", upload.SourceName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, upload.Body); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.WriteField("fileName", upload.FileName); err != nil {
		return nil, err
	}
	if err := mw.WriteField("title", upload.Title); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	rc := call{
		method:      http.MethodPost,
		path:        "/api/images",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		auth:        true,
	}
	var out models.Image
	if err := c.do(ctx, rc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
