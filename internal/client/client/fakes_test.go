package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophcourse/internal/client/models"
)

type memTokens struct {
	mu    sync.Mutex
	pair  *models.TokenPair
	saves int
}

func (m *memTokens) Tokens(context.Context) (*models.TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pair == nil {
		return nil, nil
	}
	p := *m.pair
	return &p, nil
}

func (m *memTokens) SaveTokens(_ context.Context, pair *models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *pair
	m.pair = &p
	m.saves++
	return nil
}
