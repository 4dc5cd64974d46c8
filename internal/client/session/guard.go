package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/codepulse/internal/common"
)

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrNotWriter      = errors.New("the Writer role is required")
)

// Guard admits callers into the writer area. A missing or expired session
// is logged out; a live session without the Writer role is left intact.
func (c *Cache) Guard(ctx context.Context) error {
	token := c.Token(ctx)
	user := c.User(ctx)
	if token == "" || user == nil {
		_ = c.Logout(ctx)
		return ErrNotSignedIn
	}

	claims, err := peek(token)
	if err != nil || claims.expired(c.now()) {
		_ = c.Logout(ctx)
		return ErrSessionExpired
	}

	if !user.HasRole(common.RoleWriter) {
		return ErrNotWriter
	}
	return nil
}
