// Package services contains server-side business logic. AuthService
// handles accounts and bearer tokens; FilesService handles the per-user
// file catalog and its blobs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/auth"
	"github.com/dmitrijs2005/filevault/internal/server/config"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filevault/internal/server/revocation"
)

// AuthResult is returned by Register and SignIn.
type AuthResult struct {
	AccessToken string
	User        *models.User
}

// AuthService provides authentication-related operations:
//   - Register: create users
//   - SignIn: verify credentials and mint tokens
//   - SignOut: revoke the presented token
//   - Authenticate: resolve a bearer token to its user
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	revocations revocation.Store
	log         logging.Logger

	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService. A nil store disables revocation.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, store revocation.Store, cfg *config.Config, log logging.Logger) *AuthService {
	if store == nil {
		store = revocation.NopStore{}
	}
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		revocations:                 store,
		log:                         log.With("module", "auth"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates an account and signs it in. The email is trimmed and
// lower-cased; a taken email yields common.ErrorConflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("email %w", common.ErrorConflict)
		}
		return nil, s.internal(ctx, "create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return s.issue(ctx, user)
}

// SignIn checks credentials. Unknown email and wrong password both return
// common.ErrInvalidCredentials and both pay for one bcrypt comparison.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "get user", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, s.internal(ctx, "check password", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// SignOut revokes the token described by claims until it expires.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return common.ErrorUnauthorized
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.TimeLeft()); err != nil {
		return s.internal(ctx, "revoke token", err)
	}
	s.log.Info(ctx, "user signed out", "user_id", claims.Subject)
	return nil
}

// Authenticate verifies token (signature, expiry, revocation) and loads its
// user. Every rejection is common.ErrorUnauthorized; failures of the
// revocation store or the database are common.ErrorInternal.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	if !isUUID(claims.Subject) {
		return nil, nil, fmt.Errorf("%w: bad subject", common.ErrorUnauthorized)
	}

	if claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, s.internal(ctx, "check revocation", err)
		}
		if revoked {
			return nil, nil, fmt.Errorf("%w: token revoked", common.ErrorUnauthorized)
		}
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown user", common.ErrorUnauthorized)
		}
		return nil, nil, s.internal(ctx, "get user", err)
	}

	return user, claims, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, _, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, s.internal(ctx, "sign token", err)
	}
	return &AuthResult{AccessToken: token, User: user}, nil
}

func (s *AuthService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%w: %s", common.ErrorInternal, op)
}

func validateCredentials(email, password string) error {
	verr := &common.ValidationError{Message: "invalid credentials format", Fields: map[string]string{}}

	if err := validate.Var(email, "required,email,max=320"); err != nil {
		verr.Fields["email"] = "must be a valid email address"
	}
	switch {
	case len([]rune(password)) < MinPasswordLength:
		verr.Fields["password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	case len(password) > MaxPasswordBytes:
		verr.Fields["password"] = fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
