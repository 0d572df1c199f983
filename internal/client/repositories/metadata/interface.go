// Package metadata is the CLI's local key/value store: session tokens and the
// last fetched course overview.
package metadata

import (
	"context"
	"time"
)

// Item is a stored value with the time it was written.
type Item struct {
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns common.ErrorNotFound when key is absent.
	Get(ctx context.Context, key string) (*Item, error)
	Set(ctx context.Context, key string, value []byte, at time.Time) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
