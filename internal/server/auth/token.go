// Package auth mints and verifies the HS256 access tokens used by the API.
//
// A token carries the identity's email and one role value per role it
// holds, together with iss, aud, iat and exp. Tokens are never stored: the
// signature and the expiry are the only things checked.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"role"`
}

// Option customises an Issuer or a Validator.
type Option func(*settings)

// WithClock replaces time.Now, which makes expiry deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

type settings struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func newSettings(cfg *config.Config, opts []Option) (settings, error) {
	if cfg == nil || strings.TrimSpace(cfg.SecretKey) == "" {
		return settings{}, fmt.Errorf("%w: jwt secret key is empty", common.ErrConfiguration)
	}

	s := settings{
		secret:   []byte(cfg.SecretKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTokenValidityDuration,
		now:      time.Now,
	}
	for _, o := range opts {
		o(&s)
	}
	return s, nil
}

// Issuer mints access tokens.
type Issuer struct {
	s settings
}

// NewIssuer fails with common.ErrConfiguration when no signing key is set.
func NewIssuer(cfg *config.Config, opts ...Option) (*Issuer, error) {
	s, err := newSettings(cfg, opts)
	if err != nil {
		return nil, err
	}
	if s.ttl <= 0 {
		return nil, fmt.Errorf("%w: access token lifetime must be positive", common.ErrConfiguration)
	}
	return &Issuer{s: s}, nil
}

// Issue signs a token for email carrying roles. The result depends only on
// the inputs and the issuing second.
func (i *Issuer) Issue(email string, roles []string) (string, time.Time, error) {
	now := i.s.now()
	expires := now.Add(i.s.ttl)

	if roles == nil {
		roles = []string{}
	}

	registered := jwt.RegisteredClaims{
		Issuer:    i.s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	if i.s.audience != "" {
		registered.Audience = jwt.ClaimStrings{i.s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: registered,
		Email:            email,
		Roles:            roles,
	})

	signed, err := token.SignedString(i.s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expires.Truncate(time.Second), nil
}

// Principal is the authenticated caller as described by a valid token.
type Principal struct {
	Email     string
	Roles     []string
	ExpiresAt time.Time
}

// HasAnyRole reports whether p holds at least one of required. An empty
// requirement is always satisfied.
func (p *Principal) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, have := range p.Roles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Validator verifies tokens minted by an Issuer sharing the same config.
type Validator struct {
	s      settings
	parser *jwt.Parser
}

func NewValidator(cfg *config.Config, opts ...Option) (*Validator, error) {
	s, err := newSettings(cfg, opts)
	if err != nil {
		return nil, err
	}

	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		popts = append(popts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		popts = append(popts, jwt.WithAudience(s.audience))
	}

	return &Validator{s: s, parser: jwt.NewParser(popts...)}, nil
}

// Validate checks signature, structure, issuer, audience and expiry, in
// that order of precedence. It returns common.ErrInvalidToken or
// common.ErrTokenExpired on failure.
func (v *Validator) Validate(token string) (*Principal, error) {
	claims := &Claims{}

	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.s.secret, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	p := &Principal{Email: claims.Email, Roles: claims.Roles}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Authorize runs the whole route guard for one request: missing token,
// invalid token, expired token, then role membership. required may be empty
// for operations open to every authenticated caller.
func (v *Validator) Authorize(token string, required ...string) (*Principal, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	p, err := v.Validate(token)
	if err != nil {
		return nil, err
	}

	if !p.HasAnyRole(required...) {
		return nil, common.ErrForbidden
	}
	return p, nil
}
