package session

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/client/client"
	"github.com/dmitrijs2005/codepulse/internal/client/models"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T) (*Cache, *sql.DB) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := NewCache(db, logging.NewJSONLogger(io.Discard, "error"))
	c.now = func() time.Time { return fixedNow }
	return c, db
}

func mint(t *testing.T, email string, roles []string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(exp.Add(-15 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: email,
		Roles: roles,
	})
	s, err := tok.SignedString([]byte("client-never-knows-this"))
	require.NoError(t, err)
	return s
}

func TestLogin_PersistsAndNotifiesInOrder(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls []string
	c.Subscribe(func(u *models.User) { calls = append(calls, "first:"+u.Email) })
	c.Subscribe(func(u *models.User) { calls = append(calls, "second:"+u.Email) })

	token := mint(t, "alice@x.com", []string{"Reader"}, fixedNow.Add(time.Minute))
	require.NoError(t, c.Login(ctx, &models.Session{Email: "alice@x.com", Token: token, Roles: []string{"Reader", "Writer"}}))

	assert.Equal(t, []string{"first:alice@x.com", "second:alice@x.com"}, calls)
	assert.Equal(t, token, c.Token(ctx))
	assert.Equal(t, &models.User{Email: "alice@x.com", Roles: []string{"Reader", "Writer"}}, c.User(ctx))
}

func TestLogin_ReplacesPreviousIdentity(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, &models.Session{Email: "a@x.com", Token: "t1", Roles: []string{"Reader"}}))
	require.NoError(t, c.Login(ctx, &models.Session{Email: "b@x.com", Token: "t2", Roles: []string{}}))

	u := c.User(ctx)
	require.NotNil(t, u)
	assert.Equal(t, "b@x.com", u.Email)
	assert.Empty(t, u.Roles)
	assert.Equal(t, "t2", c.Token(ctx))
}

func TestLogin_RejectsIncompleteSession(t *testing.T) {
	c, _ := newTestCache(t)

	require.Error(t, c.Login(context.Background(), nil))
	require.Error(t, c.Login(context.Background(), &models.Session{Email: "a@x.com"}))
	assert.Nil(t, c.User(context.Background()))
}

func TestLogout_ClearsEverythingAndPublishesNil(t *testing.T) {
	c, db := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, &models.Session{Email: "a@x.com", Token: "t", Roles: []string{"Reader"}}))

	var got []*models.User
	c.Subscribe(func(u *models.User) { got = append(got, u) })

	require.NoError(t, c.Logout(ctx))

	assert.Equal(t, []*models.User{nil}, got)
	assert.Nil(t, c.User(ctx))
	assert.Empty(t, c.Token(ctx))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	assert.Zero(t, n)
}

func TestUser_RebuiltFromValidToken(t *testing.T) {
	c, db := newTestCache(t)
	ctx := context.Background()

	token := mint(t, "alice@x.com", []string{"Reader"}, fixedNow.Add(time.Minute))
	_, err := db.Exec(`INSERT INTO metadata (key, value) VALUES ('token', ?)`, token)
	require.NoError(t, err)

	assert.Equal(t, &models.User{Email: "alice@x.com", Roles: []string{"Reader"}}, c.User(ctx))
}

func TestUser_NotRebuiltFromExpiredToken(t *testing.T) {
	c, db := newTestCache(t)

	token := mint(t, "alice@x.com", []string{"Reader"}, fixedNow)
	_, err := db.Exec(`INSERT INTO metadata (key, value) VALUES ('token', ?)`, token)
	require.NoError(t, err)

	assert.Nil(t, c.User(context.Background()))
}

func TestStorageFailure_MeansSignedOut(t *testing.T) {
	c, db := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, &models.Session{Email: "a@x.com", Token: "t", Roles: []string{"Writer"}}))

	require.NoError(t, db.Close())

	assert.Nil(t, c.User(ctx))
	assert.Empty(t, c.Token(ctx))

	notified := false
	c.Subscribe(func(u *models.User) { notified = u == nil })
	require.Error(t, c.Logout(ctx))
	assert.True(t, notified)
}
