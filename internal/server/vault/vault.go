// Package vault parks one-time credentials until their single reveal.
//
// A vaulted credential is readable at most once: the read path removes the
// record in the same step that fetches it, whether or not the record turns
// out to be expired. Credentials are sealed with AES-GCM before they reach
// the repository.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/cryptox"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/secrets"
)

var (
	// ErrNotFound means no credential is vaulted for the identity: it was
	// never written, already revealed, or swept long after expiry.
	ErrNotFound = errors.New("credential not found")
	// ErrExpired means the credential existed but its TTL had elapsed. The
	// record has been deleted.
	ErrExpired = errors.New("credential expired")
)

// DefaultRetention is how long an expired credential is kept so that a late
// reveal still reports expiry instead of not-found.
const DefaultRetention = 24 * time.Hour

type Vault struct {
	repo      secrets.Repository
	key       []byte
	now       func() time.Time
	retention time.Duration
}

type Option func(*Vault)

// WithClock overrides the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(v *Vault) { v.now = now }
}

// WithRetention overrides DefaultRetention. Negative values count as zero.
func WithRetention(d time.Duration) Option {
	return func(v *Vault) { v.retention = max(d, 0) }
}

// New returns a Vault storing into repo and sealing with key (32 bytes).
func New(repo secrets.Repository, key []byte, opts ...Option) (*Vault, error) {
	if len(key) != 32 {
		return nil, cryptox.ErrInvalidKey
	}
	v := &Vault{repo: repo, key: key, now: time.Now, retention: DefaultRetention}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

// Put stores credential for identity, replacing any earlier one.
func (v *Vault) Put(ctx context.Context, identity, credential string, ttl time.Duration) error {
	ct, nonce, err := cryptox.Seal([]byte(credential), v.key)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}

	now := v.now()
	s := &models.VaultedSecret{
		Email:     identity,
		Password:  ct,
		Nonce:     nonce,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := v.repo.Upsert(ctx, s); err != nil {
		return fmt.Errorf("vault put: %w", err)
	}
	return nil
}

// TakeIfValid consumes the credential for identity. The record is deleted
// on every outcome that observed it.
func (v *Vault) TakeIfValid(ctx context.Context, identity string, now time.Time) (string, error) {
	s, err := v.repo.Take(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("vault take: %w", err)
	}

	if s.Retrieved || s.Expired(now) {
		return "", ErrExpired
	}

	pt, err := cryptox.Open(s.Password, s.Nonce, v.key)
	if err != nil {
		return "", fmt.Errorf("open credential: %w", err)
	}
	defer common.WipeByteArray(pt)

	return string(pt), nil
}

// Sweep deletes credentials that expired more than the retention period
// before now and returns how many were removed. Anything younger is left for
// TakeIfValid to report as ErrExpired.
func (v *Vault) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := v.repo.DeleteExpired(ctx, now.Add(-v.retention))
	if err != nil {
		return 0, fmt.Errorf("vault sweep: %w", err)
	}
	return n, nil
}
