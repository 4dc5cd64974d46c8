package session

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name       string
		session    *models.Session
		wantErr    error
		signedOut  bool
		tokenRoles []string
		expires    time.Duration
	}{
		{
			name:      "nobody signed in",
			wantErr:   ErrNotSignedIn,
			signedOut: true,
		},
		{
			name:       "writer with live token",
			session:    &models.Session{Email: "w@x.com", Roles: []string{"Reader", "Writer"}},
			tokenRoles: []string{"Reader", "Writer"},
			expires:    time.Minute,
		},
		{
			name:       "writer with expired token",
			session:    &models.Session{Email: "w@x.com", Roles: []string{"Writer"}},
			tokenRoles: []string{"Writer"},
			expires:    -time.Second,
			wantErr:    ErrSessionExpired,
			signedOut:  true,
		},
		{
			name:       "token expiring right now",
			session:    &models.Session{Email: "w@x.com", Roles: []string{"Writer"}},
			tokenRoles: []string{"Writer"},
			expires:    0,
			wantErr:    ErrSessionExpired,
			signedOut:  true,
		},
		{
			name:       "reader with live token",
			session:    &models.Session{Email: "r@x.com", Roles: []string{"Reader"}},
			tokenRoles: []string{"Reader"},
			expires:    time.Minute,
			wantErr:    ErrNotWriter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache(t)
			ctx := context.Background()

			if tt.session != nil {
				s := *tt.session
				s.Token = mint(t, s.Email, tt.tokenRoles, fixedNow.Add(tt.expires))
				require.NoError(t, c.Login(ctx, &s))
			}

			err := c.Guard(ctx)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}

			if tt.signedOut {
				assert.Nil(t, c.User(ctx))
				assert.Empty(t, c.Token(ctx))
			} else {
				assert.NotNil(t, c.User(ctx))
			}
		})
	}
}

func TestGuard_MalformedTokenLogsOut(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, &models.Session{Email: "w@x.com", Token: "not-a-jwt", Roles: []string{"Writer"}}))

	require.ErrorIs(t, c.Guard(ctx), ErrSessionExpired)
	assert.Nil(t, c.User(ctx))
}
