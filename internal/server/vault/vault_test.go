package vault

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/cryptox"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
	"github.com/dmitrijs2005/gophcourse/internal/server/repositories/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func newVault(t *testing.T, opts ...Option) (*Vault, *secrets.MemoryRepository) {
	t.Helper()
	repo := secrets.NewMemoryRepository()
	opts = append([]Option{WithClock(func() time.Time { return t0 })}, opts...)
	v, err := New(repo, cryptox.DeriveSealingKey("test-secret"), opts...)
	require.NoError(t, err)
	return v, repo
}

func TestNew_RejectsBadKey(t *testing.T) {
	_, err := New(secrets.NewMemoryRepository(), []byte("short"))
	require.ErrorIs(t, err, cryptox.ErrInvalidKey)
}

func TestPutThenTake(t *testing.T) {
	v, _ := newVault(t)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "a@x.io", "K7Q2ZP9A", 10*time.Minute))

	got, err := v.TakeIfValid(ctx, "a@x.io", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "K7Q2ZP9A", got)

	_, err = v.TakeIfValid(ctx, "a@x.io", t0.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTake_Absent(t *testing.T) {
	v, _ := newVault(t)

	_, err := v.TakeIfValid(context.Background(), "nobody@x.io", t0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTake_ExpiredIsDeleted(t *testing.T) {
	v, repo := newVault(t)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "a@x.io", "PW", 10*time.Minute))

	_, err := v.TakeIfValid(ctx, "a@x.io", t0.Add(10*time.Minute+time.Millisecond))
	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, repo.Len())

	_, err = v.TakeIfValid(ctx, "a@x.io", t0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTake_AtExpiryInstantIsValid(t *testing.T) {
	v, _ := newVault(t)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "a@x.io", "PW", 10*time.Minute))

	got, err := v.TakeIfValid(ctx, "a@x.io", t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "PW", got)
}

func TestPut_Overwrites(t *testing.T) {
	v, repo := newVault(t)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "a@x.io", "FIRST", time.Minute))
	require.NoError(t, v.Put(ctx, "a@x.io", "SECOND", time.Minute))
	assert.Equal(t, 1, repo.Len())

	got, err := v.TakeIfValid(ctx, "a@x.io", t0)
	require.NoError(t, err)
	assert.Equal(t, "SECOND", got)
}

func TestPut_StoresSealedCredential(t *testing.T) {
	v, repo := newVault(t)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "a@x.io", "PLAINTEXT", time.Minute))

	raw, err := repo.Take(ctx, "a@x.io")
	require.NoError(t, err)
	assert.NotContains(t, string(raw.Password), "PLAINTEXT")
	assert.False(t, raw.Retrieved)
	assert.Equal(t, t0, raw.CreatedAt)
	assert.Equal(t, t0.Add(time.Minute), raw.ExpiresAt)
}

func TestSweep_KeepsRecentlyExpired(t *testing.T) {
	v, repo := newVault(t)
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "late@x.io", "A", 10*time.Minute))

	// a sweep right after expiry must not hide the expiry from the reveal
	n, err := v.Sweep(ctx, t0.Add(10*time.Minute+30*time.Second))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, repo.Len())

	_, err = v.TakeIfValid(ctx, "late@x.io", t0.Add(11*time.Minute))
	require.ErrorIs(t, err, ErrExpired)
}

func TestSweep_RemovesPastRetention(t *testing.T) {
	v, repo := newVault(t, WithRetention(time.Hour))
	ctx := context.Background()

	require.NoError(t, v.Put(ctx, "short@x.io", "A", time.Minute))
	require.NoError(t, v.Put(ctx, "long@x.io", "B", 3*time.Hour))

	n, err := v.Sweep(ctx, t0.Add(time.Minute+time.Hour+time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, repo.Len())

	_, err = v.TakeIfValid(ctx, "short@x.io", t0.Add(2*time.Hour))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTake_ConcurrentSingleSuccess(t *testing.T) {
	v, _ := newVault(t)
	ctx := context.Background()
	require.NoError(t, v.Put(ctx, "a@x.io", "ONCE", time.Minute))

	var ok, notFound atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.TakeIfValid(ctx, "a@x.io", t0)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrNotFound):
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(49), notFound.Load())
}

type failingRepo struct{ err error }

func (f failingRepo) Upsert(context.Context, *models.VaultedSecret) error { return f.err }
func (f failingRepo) Take(context.Context, string) (*models.VaultedSecret, error) {
	return nil, f.err
}
func (f failingRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, f.err }

func TestRepositoryFailuresAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	v, err := New(failingRepo{err: boom}, cryptox.DeriveSealingKey("k"))
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorIs(t, v.Put(ctx, "a@x.io", "x", time.Minute), boom)

	_, err = v.TakeIfValid(ctx, "a@x.io", t0)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = v.Sweep(ctx, t0)
	require.ErrorIs(t, err, boom)
}

func TestTake_WrongKeyFails(t *testing.T) {
	repo := secrets.NewMemoryRepository()
	v1, err := New(repo, cryptox.DeriveSealingKey("one"))
	require.NoError(t, err)
	v2, err := New(repo, cryptox.DeriveSealingKey("two"))
	require.NoError(t, err)

	require.NoError(t, v1.Put(context.Background(), "a@x.io", "pw", time.Hour))

	_, err = v2.TakeIfValid(context.Background(), "a@x.io", time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrExpired)
}
