package session

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/client/models"
	"github.com/dmitrijs2005/codepulse/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keyEmail = "user-email"
	keyRoles = "user-roles"
	keyToken = "token"
)

// Observer receives the new identity, or nil after a logout.
type Observer func(u *models.User)

type Cache struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time

	mu        sync.Mutex
	observers []Observer
}

func NewCache(db *sql.DB, log logging.Logger) *Cache {
	return &Cache{db: db, log: log.With("module", "session"), now: time.Now}
}

// Subscribe appends o to the observer list.
func (c *Cache) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

func (c *Cache) publish(u *models.User) {
	c.mu.Lock()
	obs := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range obs {
		o(u)
	}
}

// Login replaces whatever identity was cached with s.
func (c *Cache) Login(ctx context.Context, s *models.Session) error {
	if s == nil || s.Email == "" || s.Token == "" {
		return errors.New("incomplete session")
	}

	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyEmail, s.Email); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyRoles, strings.Join(s.Roles, ",")); err != nil {
			return err
		}
		return repo.Set(ctx, keyToken, s.Token)
	})
	if err != nil {
		return err
	}

	c.log.Info(ctx, "signed in", "email", s.Email, "roles", s.Roles)
	c.publish(&models.User{Email: s.Email, Roles: append([]string(nil), s.Roles...)})
	return nil
}

// Logout clears the identity and the token in one transaction and then
// notifies observers. Observers are notified even when clearing fails,
// since callers treat an unreadable store as signed out anyway.
func (c *Cache) Logout(ctx context.Context) error {
	err := dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, keyEmail, keyRoles, keyToken)
	})
	if err != nil {
		c.log.Error(ctx, "clear session", "error", err)
	} else {
		c.log.Info(ctx, "signed out")
	}

	c.publish(nil)
	return err
}

// Token returns the cached access token, or "".
func (c *Cache) Token(ctx context.Context) string {
	token, err := metadata.NewSQLiteRepository(c.db).Get(ctx, keyToken)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			c.log.Warn(ctx, "read token", "error", err)
		}
		return ""
	}
	return token
}

// User returns the cached identity or nil. When only the token survived it
// rebuilds the identity from the token's claims while the token is valid.
func (c *Cache) User(ctx context.Context) *models.User {
	repo := metadata.NewSQLiteRepository(c.db)

	email, errE := repo.Get(ctx, keyEmail)
	roles, errR := repo.Get(ctx, keyRoles)
	if errE == nil && errR == nil && email != "" {
		return &models.User{Email: email, Roles: splitRoles(roles)}
	}
	for _, err := range []error{errE, errR} {
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			c.log.Warn(ctx, "read user", "error", err)
			return nil
		}
	}

	token := c.Token(ctx)
	if token == "" {
		return nil
	}
	claims, err := peek(token)
	if err != nil || claims.Email == "" || claims.expired(c.now()) {
		return nil
	}
	return &models.User{Email: claims.Email, Roles: claims.Roles}
}

func splitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// tokenClaims is the part of the access token the client reads. The client
// does not hold the signing key, so the signature is not verified here.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"role"`
}

func (t *tokenClaims) expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return true
	}
	return !now.Before(t.ExpiresAt.Time)
}

func peek(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
