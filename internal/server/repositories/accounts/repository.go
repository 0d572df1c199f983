// Package accounts persists course accounts: entitlement, enrollment
// timestamp and lesson progress.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/server/models"
)

type Repository interface {
	// GrantAccess merges g into the account. A new account gets
	// createdAt=g.Now and an empty progress map; an existing one keeps both,
	// and its access level is never lowered. Reports whether a row was inserted.
	GrantAccess(ctx context.Context, g models.Grant) (bool, error)
	Get(ctx context.Context, uid string) (*models.Account, error)
	MarkLessonComplete(ctx context.Context, uid, lessonID string, now time.Time) error
	UpdateDisplayName(ctx context.Context, uid, name string, now time.Time) error
}
