// Package secrets stores vaulted one-time credentials, one row per email.
package secrets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/server/models"
)

type Repository interface {
	// Upsert replaces any existing secret for s.Email.
	Upsert(ctx context.Context, s *models.VaultedSecret) error
	// Take atomically removes and returns the secret for email. Two
	// concurrent takers never both observe the same row.
	Take(ctx context.Context, email string) (*models.VaultedSecret, error)
	// DeleteExpired removes secrets whose expiry is before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
