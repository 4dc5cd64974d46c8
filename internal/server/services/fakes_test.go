package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/blogposts"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/categories"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/images"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/users"
	"github.com/dmitrijs2005/codepulse/internal/server/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

// fakeUsers is an in-memory credential store. It does not model rollback;
// tests assert the transaction outcome through sqlmock instead.
type fakeUsers struct {
	mu     sync.Mutex
	byMail map[string]*models.User
	roles  map[string][]string

	findErr   error
	createErr error
	assignErr error
	rolesErr  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byMail: map[string]*models.User{}, roles: map[string][]string{}}
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byMail[models.NormalizeEmail(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := models.NormalizeEmail(u.Email)
	if _, ok := f.byMail[key]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	f.byMail[key] = &cp
	return u, nil
}

func (f *fakeUsers) GetRoles(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	out := append([]string{}, f.roles[userID]...)
	return out, nil
}

func (f *fakeUsers) AssignRole(_ context.Context, userID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	if role != common.RoleReader && role != common.RoleWriter {
		return common.ErrorNotFound
	}
	for _, r := range f.roles[userID] {
		if r == role {
			return nil
		}
	}
	f.roles[userID] = append(f.roles[userID], role)
	return nil
}

func (f *fakeUsers) RemoveRole(_ context.Context, userID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.roles[userID][:0]
	for _, r := range f.roles[userID] {
		if r != role {
			kept = append(kept, r)
		}
	}
	f.roles[userID] = kept
	return nil
}

type fakeCategories struct {
	items map[string]*models.Category
	err   error
}

func newFakeCategories(cs ...*models.Category) *fakeCategories {
	f := &fakeCategories{items: map[string]*models.Category{}}
	for _, c := range cs {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.ID = uuid.NewString()
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCategories) List(context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, f.err
}

func (f *fakeCategories) ListByIDs(_ context.Context, ids []string) ([]*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Category, 0)
	for _, id := range ids {
		if c, ok := f.items[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) Get(_ context.Context, id string) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	if _, ok := f.items[c.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.items, id)
	return c, nil
}

type fakePosts struct {
	items  map[string]*models.BlogPost
	links  map[string][]string
	cats   *fakeCategories
	setErr error
}

func newFakePosts(cats *fakeCategories) *fakePosts {
	return &fakePosts{items: map[string]*models.BlogPost{}, links: map[string][]string{}, cats: cats}
}

func (f *fakePosts) Create(_ context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	p.ID = uuid.NewString()
	cp := *p
	f.items[p.ID] = &cp
	return p, nil
}

func (f *fakePosts) List(context.Context) ([]*models.BlogPost, error) {
	out := make([]*models.BlogPost, 0, len(f.items))
	for _, p := range f.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePosts) Get(_ context.Context, id string) (*models.BlogPost, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) GetByURLHandle(_ context.Context, handle string) (*models.BlogPost, error) {
	for _, p := range f.items {
		if p.URLHandle == handle {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakePosts) Update(_ context.Context, p *models.BlogPost) (*models.BlogPost, error) {
	if _, ok := f.items[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	f.items[p.ID] = &cp
	return p, nil
}

func (f *fakePosts) Delete(_ context.Context, id string) (*models.BlogPost, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.items, id)
	delete(f.links, id)
	return p, nil
}

func (f *fakePosts) SetCategories(_ context.Context, postID string, ids []string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.links[postID] = append([]string{}, ids...)
	return nil
}

func (f *fakePosts) CategoriesFor(_ context.Context, postIDs []string) (map[string][]*models.Category, error) {
	out := map[string][]*models.Category{}
	for _, pid := range postIDs {
		for _, cid := range f.links[pid] {
			if c, ok := f.cats.items[cid]; ok {
				out[pid] = append(out[pid], c)
			}
		}
	}
	return out, nil
}

type fakeImages struct {
	items     []*models.Image
	createErr error
}

func (f *fakeImages) Create(_ context.Context, img *models.Image) (*models.Image, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	img.ID = uuid.NewString()
	img.DateCreated = time.Now()
	f.items = append(f.items, img)
	return img, nil
}

func (f *fakeImages) List(context.Context) ([]*models.Image, error) {
	return f.items, nil
}

func (f *fakeImages) GetByStorageKey(_ context.Context, key string) (*models.Image, error) {
	for _, img := range f.items {
		if img.StorageKey == key {
			return img, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeBlobs struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBlobs) Put(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(data), size)
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) (*storage.Blob, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   f.types[key],
		ContentLength: int64(len(data)),
	}, nil
}

type fakeRepoManager struct {
	users      *fakeUsers
	categories *fakeCategories
	posts      *fakePosts
	images     *fakeImages
}

func newFakeRepoManager() *fakeRepoManager {
	cats := newFakeCategories()
	return &fakeRepoManager{
		users:      newFakeUsers(),
		categories: cats,
		posts:      newFakePosts(cats),
		images:     &fakeImages{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository    { return m.categories }
func (m *fakeRepoManager) BlogPosts(dbx.DBTX) blogposts.Repository      { return m.posts }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository            { return m.images }
