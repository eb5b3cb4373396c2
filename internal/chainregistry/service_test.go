package chainregistry

import (
	"context"
	"errors"
	"testing"

	"github.com/gabapcia/walletbridge/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChain() Chain {
	return Chain{
		Network: "polygon",
		ChainID: 137,
		Name:    "Polygon Mainnet",
		Currency: Currency{
			Name:     "POL",
			Symbol:   "POL",
			Decimals: 18,
		},
		RPCURLs:           []string{"https://polygon-rpc.com"},
		BlockExplorerURLs: []string{"https://polygonscan.com"},
	}
}

func TestService_Register(t *testing.T) {
	t.Run("stores a valid chain", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		require.NoError(t, svc.Register(t.Context(), validChain()))

		chain, err := svc.Get(t.Context(), "polygon")
		require.NoError(t, err)
		assert.Equal(t, validChain(), chain)
	})

	t.Run("overwrites an existing registration", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		require.NoError(t, svc.Register(t.Context(), validChain()))

		renamed := validChain()
		renamed.Name = "Polygon PoS"
		require.NoError(t, svc.Register(t.Context(), renamed))

		chain, err := svc.Get(t.Context(), "polygon")
		require.NoError(t, err)
		assert.Equal(t, "Polygon PoS", chain.Name)

		chains, err := svc.List(t.Context())
		require.NoError(t, err)
		assert.Len(t, chains, 1)
	})

	t.Run("rejects a chain without rpc urls", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		chain := validChain()
		chain.RPCURLs = nil

		err := svc.Register(t.Context(), chain)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a malformed rpc url", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		chain := validChain()
		chain.RPCURLs = []string{"not a url"}

		err := svc.Register(t.Context(), chain)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a non-positive chain id", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		chain := validChain()
		chain.ChainID = 0

		err := svc.Register(t.Context(), chain)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a currency without decimals", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		chain := validChain()
		chain.Currency.Decimals = 0

		err := svc.Register(t.Context(), chain)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("explorer urls are optional", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		chain := validChain()
		chain.BlockExplorerURLs = nil

		assert.NoError(t, svc.Register(t.Context(), chain))
	})

	t.Run("propagates storage failures", func(t *testing.T) {
		storageErr := errors.New("storage unavailable")
		svc := New(failingStorage{err: storageErr})

		err := svc.Register(t.Context(), validChain())
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestService_Unregister(t *testing.T) {
	t.Run("removes the registration", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		require.NoError(t, svc.Register(t.Context(), validChain()))
		require.NoError(t, svc.Unregister(t.Context(), "polygon"))

		_, err := svc.Get(t.Context(), "polygon")
		assert.ErrorIs(t, err, ErrChainNotFound)
	})

	t.Run("unknown network is not an error", func(t *testing.T) {
		svc := New(NewMemoryStorage())
		assert.NoError(t, svc.Unregister(t.Context(), "nowhere"))
	})
}

func TestService_Get(t *testing.T) {
	t.Run("unknown network yields ErrChainNotFound", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		_, err := svc.Get(t.Context(), "nowhere")
		assert.ErrorIs(t, err, ErrChainNotFound)
	})
}

func TestService_List(t *testing.T) {
	t.Run("empty registry lists nothing", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		chains, err := svc.List(t.Context())
		require.NoError(t, err)
		assert.Empty(t, chains)
	})

	t.Run("lists every registered chain", func(t *testing.T) {
		svc := New(NewMemoryStorage())

		first := validChain()
		second := validChain()
		second.Network = "bsc"
		second.ChainID = 56
		second.Name = "BNB Smart Chain"

		require.NoError(t, svc.Register(t.Context(), first))
		require.NoError(t, svc.Register(t.Context(), second))

		chains, err := svc.List(t.Context())
		require.NoError(t, err)
		assert.ElementsMatch(t, []Chain{first, second}, chains)
	})
}

// failingStorage fails every operation with a fixed error.
type failingStorage struct {
	err error
}

var _ Storage = failingStorage{}

func (f failingStorage) SaveChain(ctx context.Context, chain Chain) error { return f.err }
func (f failingStorage) DeleteChain(ctx context.Context, network string) error {
	return f.err
}
func (f failingStorage) GetChain(ctx context.Context, network string) (Chain, error) {
	return Chain{}, f.err
}
func (f failingStorage) ListChains(ctx context.Context) ([]Chain, error) { return nil, f.err }
