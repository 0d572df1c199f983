// Package services holds the CLI's local state logic.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
	"github.com/dmitrijs2005/gophcourse/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophcourse/internal/common"
)

const (
	keyEmail        = "email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyOverview     = "overview"
)

var ErrNoCachedOverview = errors.New("no cached course overview, run `course` while online first")

// SessionService keeps the login session and the last course overview in the
// local metadata store, so countdowns work without a connection.
type SessionService struct {
	meta metadata.Repository
	now  func() time.Time
}

func NewSessionService(meta metadata.Repository) *SessionService {
	return &SessionService{meta: meta, now: time.Now}
}

// Tokens returns the stored pair, or nil when nobody is logged in.
func (s *SessionService) Tokens(ctx context.Context) (*models.TokenPair, error) {
	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	if access == nil {
		return nil, nil
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

func (s *SessionService) SaveTokens(ctx context.Context, pair *models.TokenPair) error {
	at := s.now()
	if err := s.meta.Set(ctx, keyAccessToken, []byte(pair.AccessToken), at); err != nil {
		return err
	}
	return s.meta.Set(ctx, keyRefreshToken, []byte(pair.RefreshToken), at)
}

func (s *SessionService) SetEmail(ctx context.Context, email string) error {
	return s.meta.Set(ctx, keyEmail, []byte(email), s.now())
}

// Email returns the logged-in email or "" when there is none.
func (s *SessionService) Email(ctx context.Context) (string, error) {
	v, err := s.get(ctx, keyEmail)
	return string(v), err
}

func (s *SessionService) CacheOverview(ctx context.Context, ov *models.Overview) error {
	data, err := json.Marshal(ov)
	if err != nil {
		return fmt.Errorf("encode overview: %w", err)
	}
	return s.meta.Set(ctx, keyOverview, data, s.now())
}

// CachedOverview returns the last stored overview and when it was fetched.
func (s *SessionService) CachedOverview(ctx context.Context) (*models.Overview, time.Time, error) {
	it, err := s.meta.Get(ctx, keyOverview)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, time.Time{}, ErrNoCachedOverview
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var ov models.Overview
	if err := json.Unmarshal(it.Value, &ov); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode cached overview: %w", err)
	}
	return &ov, it.UpdatedAt, nil
}

// Clear forgets the session and everything cached for it.
func (s *SessionService) Clear(ctx context.Context) error {
	return s.meta.Delete(ctx, keyEmail, keyAccessToken, keyRefreshToken, keyOverview)
}

func (s *SessionService) get(ctx context.Context, key string) ([]byte, error) {
	it, err := s.meta.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it.Value, nil
}
