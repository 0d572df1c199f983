package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/logging"
	"github.com/dmitrijs2005/gophcourse/internal/server/metrics"
	"github.com/dmitrijs2005/gophcourse/internal/server/vault"
)

type CredentialTaker interface {
	TakeIfValid(ctx context.Context, identity string, now time.Time) (string, error)
}

// RevealService hands out a vaulted credential exactly once.
type RevealService struct {
	vault   CredentialTaker
	logger  logging.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

func NewRevealService(v CredentialTaker, timeout time.Duration, logger logging.Logger, m *metrics.Metrics) *RevealService {
	return &RevealService{
		vault:   v,
		logger:  logger.With("module", "reveal"),
		metrics: m,
		timeout: timeout,
		now:     time.Now,
	}
}

// Reveal returns the credential vaulted for email. There is no retry and no
// re-issue: a second call always yields ErrNotFound.
func (s *RevealService) Reveal(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		s.metrics.Reveal("invalid_argument")
		return "", ErrInvalidArgument
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	credential, err := s.vault.TakeIfValid(ctx, email, s.now())
	switch {
	case err == nil:
		s.metrics.Reveal("success")
		s.logger.Info(ctx, "credential revealed", "email", email)
		return credential, nil
	case errors.Is(err, vault.ErrNotFound):
		s.metrics.Reveal("not_found")
		return "", ErrNotFound
	case errors.Is(err, vault.ErrExpired):
		s.metrics.Reveal("expired")
		s.logger.Info(ctx, "credential expired before reveal", "email", email)
		return "", ErrDeadlineExceeded
	default:
		s.metrics.Reveal("internal")
		s.logger.Error(ctx, "reveal failed", "email", email, "error", err)
		return "", fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
