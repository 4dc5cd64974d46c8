// Package services contains the application services behind the CLI.
// AuthService turns API calls into session changes; BlogService wraps the
// content endpoints and runs the writer guard before every change.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/client/client"
	"github.com/dmitrijs2005/codepulse/internal/client/models"
	"github.com/dmitrijs2005/codepulse/internal/common"
)

// Session is the part of the session cache the services rely on.
type Session interface {
	Login(ctx context.Context, s *models.Session) error
	Logout(ctx context.Context) error
	User(ctx context.Context) *models.User
	Guard(ctx context.Context) error
}

type AuthService interface {
	Register(ctx context.Context, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) *models.User
}

type authService struct {
	client  client.Client
	session Session
}

func NewAuthService(c client.Client, s Session) AuthService {
	return &authService{client: c, session: s}
}

// Register creates the account. It does not sign the user in.
func (a *authService) Register(ctx context.Context, email string, password []byte) error {
	return a.client.Register(ctx, strings.TrimSpace(email), string(password))
}

// Login authenticates and caches the resulting session. A failed login
// leaves any previously cached session untouched.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	s, err := a.client.Login(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return nil, err
	}
	if err := a.session.Login(ctx, s); err != nil {
		return nil, fmt.Errorf("cache session: %w", err)
	}
	return &models.User{Email: s.Email, Roles: s.Roles}, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

func (a *authService) WhoAmI(ctx context.Context) *models.User {
	return a.session.User(ctx)
}

// IsWriter reports whether u may use the writer commands.
func IsWriter(u *models.User) bool {
	return u.HasRole(common.RoleWriter)
}
