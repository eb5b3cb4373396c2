// Package chainregistry manages the table of chains known to walletbridge:
// validated registration, removal, and lookup of chain metadata in the shape
// wallets use for wallet_addEthereumChain.
package chainregistry

import "context"

// Service registers and looks up known chains. Implementations validate
// input and delegate persistence to the configured Storage.
type Service interface {
	// Register validates and stores a chain, overwriting any previous
	// registration for the same network name.
	Register(ctx context.Context, chain Chain) error

	// Unregister removes the chain registered under network.
	Unregister(ctx context.Context, network string) error

	// Get returns the chain registered under network, or ErrChainNotFound.
	Get(ctx context.Context, network string) (Chain, error)

	// List returns every registered chain.
	List(ctx context.Context) ([]Chain, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	storage Storage
}

var _ Service = (*service)(nil)

// New creates a chainregistry service using the provided Storage.
func New(storage Storage) *service {
	return &service{
		storage: storage,
	}
}

// Register validates the chain and persists it.
func (s *service) Register(ctx context.Context, chain Chain) error {
	chain, err := buildChain(chain)
	if err != nil {
		return err
	}

	return s.storage.SaveChain(ctx, chain)
}

// Unregister removes the chain registered under network.
func (s *service) Unregister(ctx context.Context, network string) error {
	return s.storage.DeleteChain(ctx, network)
}

// Get returns the chain registered under network.
func (s *service) Get(ctx context.Context, network string) (Chain, error) {
	return s.storage.GetChain(ctx, network)
}

// List returns every registered chain.
func (s *service) List(ctx context.Context) ([]Chain, error) {
	return s.storage.ListChains(ctx)
}
