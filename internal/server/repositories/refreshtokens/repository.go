// Package refreshtokens stores the opaque refresh tokens issued next to
// access tokens. A refresh token is single use: redeeming it removes it.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for userID valid until expiresAt.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// Take removes the token and returns what it was issued for, in one
	// statement, so two concurrent redemptions of the same token cannot both
	// succeed. Returns common.ErrorNotFound when the token is unknown or has
	// already been taken. Expiry is left to the caller.
	Take(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteExpired purges tokens that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
