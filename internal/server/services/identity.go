// Package services contains server-side business logic. This file implements
// IdentityService, which creates identities, verifies passwords and issues
// or rotates JWT access tokens plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/cryptox"
	"github.com/dmitrijs2005/gophcourse/internal/dbx"
	"github.com/dmitrijs2005/gophcourse/internal/server/auth"
	"github.com/dmitrijs2005/gophcourse/internal/server/config"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

// NewIdentityService constructs an IdentityService using repositories and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// GetByEmail returns common.ErrorNotFound when no identity uses email.
func (s *IdentityService) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	i, err := s.repomanager.Identities(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error searching identity: %w", err)
	}
	return i, nil
}

// Create stores a new identity whose password is password. A concurrent or
// earlier identity with the same email yields common.ErrorAlreadyExists.
func (s *IdentityService) Create(ctx context.Context, email, displayName, password string) (*models.Identity, error) {
	salt := cryptox.NewSalt()
	identity := &models.Identity{
		Email:        normalizeEmail(email),
		DisplayName:  displayName,
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
	}

	created, err := s.repomanager.Identities(s.db).Create(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("error creating identity: %w", err)
	}
	return created, nil
}

// Login verifies the password and, on success, returns a new TokenPair.
// Unknown emails and wrong passwords are indistinguishable.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	identity, err := s.repomanager.Identities(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(identity.PasswordHash, []byte(password), identity.Salt) {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, identity.ID, s.db)
}

// RefreshToken redeems a refresh token for a new TokenPair. The old token is
// consumed even when it turns out to be expired, so it can never be replayed.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Take(ctx, refreshToken)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		if err != nil {
			return fmt.Errorf("error taking refresh token: %w", err)
		}
		if token.Expired(s.now()) {
			expired = true
			return nil
		}
		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// UserIDFromAccessToken validates an access token issued by this service.
func (s *IdentityService) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *IdentityService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
