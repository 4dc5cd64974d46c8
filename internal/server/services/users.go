package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/codepulse/internal/common"
	"github.com/dmitrijs2005/codepulse/internal/cryptox"
	"github.com/dmitrijs2005/codepulse/internal/dbx"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/config"
	"github.com/dmitrijs2005/codepulse/internal/server/models"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/repomanager"
)

// TokenIssuer is satisfied by *auth.Issuer.
type TokenIssuer interface {
	Issue(email string, roles []string) (string, time.Time, error)
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Email     string
	Token     string
	Roles     []string
	ExpiresAt time.Time
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      TokenIssuer
	policy      config.PasswordPolicy
	log         logging.Logger

	// dummyHash is verified against when the email is unknown so both
	// login failures cost the same.
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, issuer TokenIssuer, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		policy:      cfg.PasswordPolicy,
		log:         log.With("module", "users"),
		dummyHash:   cryptox.HashPassword(common.GenerateRandByteArray(16)),
	}
}

func emailTaken(email string) string {
	return fmt.Sprintf("Email '%s' is already taken.", email)
}

// Register creates the identity with the Reader role. The email shape is
// checked by the caller; a taken email and password policy violations come
// back together as a *common.ValidationError.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	var problems []string
	_, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	switch {
	case err == nil:
		problems = append(problems, emailTaken(email))
	case !errors.Is(err, common.ErrorNotFound):
		s.log.Error(ctx, "email lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	problems = append(problems, CheckPassword(s.policy, password)...)

	if err := common.NewValidationError(problems...); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: cryptox.HashPassword([]byte(password)),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		created, err := repo.Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		return repo.AssignRole(ctx, user.ID, common.RoleReader)
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError(emailTaken(email))
		}
		s.log.Error(ctx, "register failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login returns common.ErrorInvalidCredentials for an unknown email and for
// a wrong password alike.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, []byte(password))
			return nil, common.ErrorInvalidCredentials
		}
		s.log.Error(ctx, "email lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, []byte(password))
	if err != nil {
		s.log.Error(ctx, "stored hash unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	roles, err := repo.GetRoles(ctx, user.ID)
	if err != nil {
		s.log.Error(ctx, "roles lookup failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	token, expires, err := s.issuer.Issue(user.Email, roles)
	if err != nil {
		s.log.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &LoginResult{Email: user.Email, Token: token, Roles: roles, ExpiresAt: expires}, nil
}

// AssignRole grants role to the identity registered under email. Tokens
// issued earlier keep their old roles until they expire.
func (s *UserService) AssignRole(ctx context.Context, email, role string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user %s: %w", email, err)
	}
	if err := repo.AssignRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("role %s: %w", role, err)
	}

	s.log.Info(ctx, "role assigned", "user_id", user.ID, "role", role)
	return nil
}

func (s *UserService) RemoveRole(ctx context.Context, email, role string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user %s: %w", email, err)
	}
	if err := repo.RemoveRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("role %s: %w", role, err)
	}

	s.log.Info(ctx, "role removed", "user_id", user.ID, "role", role)
	return nil
}

// EnsureAdmin makes sure an identity holding every role exists under email.
// It does nothing while password is empty and never resets an existing
// password.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByEmail(ctx, email)
		if errors.Is(err, common.ErrorNotFound) {
			user, err = repo.Create(ctx, &models.User{
				Email:        email,
				PasswordHash: cryptox.HashPassword([]byte(password)),
			})
			if err == nil {
				s.log.Info(ctx, "admin created", "user_id", user.ID)
			}
		}
		if err != nil {
			return fmt.Errorf("admin %s: %w", email, err)
		}

		for _, role := range []string{common.RoleReader, common.RoleWriter} {
			if err := repo.AssignRole(ctx, user.ID, role); err != nil {
				return fmt.Errorf("admin role %s: %w", role, err)
			}
		}
		return nil
	})
}
