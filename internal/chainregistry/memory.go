package chainregistry

import (
	"context"
	"sync"
)

// memoryStorage is an in-process Storage used when no external store is
// configured.
type memoryStorage struct {
	mu     sync.RWMutex
	chains map[string]Chain
}

var _ Storage = (*memoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory chain store.
func NewMemoryStorage() *memoryStorage {
	return &memoryStorage{
		chains: make(map[string]Chain),
	}
}

func (m *memoryStorage) SaveChain(ctx context.Context, chain Chain) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chains[chain.Network] = chain
	return nil
}

func (m *memoryStorage) DeleteChain(ctx context.Context, network string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.chains, network)
	return nil
}

func (m *memoryStorage) GetChain(ctx context.Context, network string) (Chain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain, ok := m.chains[network]
	if !ok {
		return Chain{}, ErrChainNotFound
	}
	return chain, nil
}

func (m *memoryStorage) ListChains(ctx context.Context) ([]Chain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chains := make([]Chain, 0, len(m.chains))
	for _, chain := range m.chains {
		chains = append(chains, chain)
	}
	return chains, nil
}
