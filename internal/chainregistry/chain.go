package chainregistry

import (
	"context"
	"errors"

	"github.com/gabapcia/walletbridge/internal/pkg/validator"
)

// ErrChainNotFound is returned when looking up a network that was never
// registered.
var ErrChainNotFound = errors.New("chain not registered")

// Chain holds the metadata of a registered chain. The field shape mirrors
// the wallet_addEthereumChain parameters, so a node-only deployment can keep
// the same chain table a wallet would.
type Chain struct {
	Network           string   `json:"network" validate:"required"`
	ChainID           int64    `json:"chainId" validate:"required,gt=0"`
	Name              string   `json:"name" validate:"required"`
	Currency          Currency `json:"nativeCurrency" validate:"required"`
	RPCURLs           []string `json:"rpcUrls" validate:"required,min=1,dive,required,url"`
	BlockExplorerURLs []string `json:"blockExplorerUrls,omitempty" validate:"omitempty,dive,required,url"`
}

// Currency describes the base asset of a chain.
type Currency struct {
	Name     string `json:"name" validate:"required"`
	Symbol   string `json:"symbol" validate:"required"`
	Decimals int    `json:"decimals" validate:"required,gt=0"`
}

// Storage persists registered chain metadata keyed by network name.
type Storage interface {
	// SaveChain stores the chain, overwriting any previous registration for
	// the same network.
	SaveChain(ctx context.Context, chain Chain) error

	// DeleteChain removes the registration for the network. Deleting an
	// unregistered network is not an error.
	DeleteChain(ctx context.Context, network string) error

	// GetChain returns the registration for the network, or ErrChainNotFound.
	GetChain(ctx context.Context, network string) (Chain, error)

	// ListChains returns every registered chain.
	ListChains(ctx context.Context) ([]Chain, error)
}

// buildChain validates the input before it reaches storage.
func buildChain(chain Chain) (Chain, error) {
	return chain, validator.Validate(chain)
}
