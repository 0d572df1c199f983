// Package identities stores authentication identities keyed by a unique email.
package identities

import (
	"context"

	"github.com/dmitrijs2005/gophcourse/internal/server/models"
)

type Repository interface {
	// Create inserts identity. A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}
