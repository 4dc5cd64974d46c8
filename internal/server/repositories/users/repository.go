// Package users is the credential store: identities, their password hashes
// and role membership.
package users

import (
	"context"

	"github.com/dmitrijs2005/codepulse/internal/server/models"
)

type Repository interface {
	// FindByEmail matches case-insensitively and returns common.ErrorNotFound
	// when nobody is registered under email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Create returns common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetRoles(ctx context.Context, userID string) ([]string, error)
	// AssignRole is idempotent; an unknown role yields common.ErrorNotFound.
	AssignRole(ctx context.Context, userID string, role string) error
	RemoveRole(ctx context.Context, userID string, role string) error
}
