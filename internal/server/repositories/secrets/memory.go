package secrets

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcourse/internal/common"
	"github.com/dmitrijs2005/gophcourse/internal/server/models"
)

// MemoryRepository is a process-local Repository for tests and single-node
// tooling.
type MemoryRepository struct {
	mu      sync.Mutex
	secrets map[string]models.VaultedSecret
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{secrets: make(map[string]models.VaultedSecret)}
}

func (r *MemoryRepository) Upsert(_ context.Context, s *models.VaultedSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.Password = append([]byte(nil), s.Password...)
	cp.Nonce = append([]byte(nil), s.Nonce...)
	cp.Retrieved = false
	r.secrets[s.Email] = cp
	return nil
}

func (r *MemoryRepository) Take(_ context.Context, email string) (*models.VaultedSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.secrets[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.secrets, email)
	return &s, nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for email, s := range r.secrets {
		if s.ExpiresAt.Before(now) {
			delete(r.secrets, email)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored secrets.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.secrets)
}
