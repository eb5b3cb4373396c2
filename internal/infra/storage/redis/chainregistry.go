package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gabapcia/walletbridge/internal/chainregistry"

	redis "github.com/redis/go-redis/v9"
)

// chainRegistryKey is the Redis hash holding every registered chain, one
// field per network name, value JSON-encoded.
const chainRegistryKey = "chain:registry"

// SaveChain implements chainregistry.Storage. Registrations for the same
// network overwrite each other.
func (c *client) SaveChain(ctx context.Context, chain chainregistry.Chain) error {
	body, err := json.Marshal(chain)
	if err != nil {
		return err
	}

	return c.conn.HSet(ctx, chainRegistryKey, chain.Network, body).Err()
}

// DeleteChain implements chainregistry.Storage.
func (c *client) DeleteChain(ctx context.Context, network string) error {
	return c.conn.HDel(ctx, chainRegistryKey, network).Err()
}

// GetChain implements chainregistry.Storage, translating a missing hash
// field into chainregistry.ErrChainNotFound.
func (c *client) GetChain(ctx context.Context, network string) (chainregistry.Chain, error) {
	body, err := c.conn.HGet(ctx, chainRegistryKey, network).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return chainregistry.Chain{}, chainregistry.ErrChainNotFound
		}
		return chainregistry.Chain{}, err
	}

	var chain chainregistry.Chain
	return chain, json.Unmarshal([]byte(body), &chain)
}

// ListChains implements chainregistry.Storage.
func (c *client) ListChains(ctx context.Context) ([]chainregistry.Chain, error) {
	entries, err := c.conn.HGetAll(ctx, chainRegistryKey).Result()
	if err != nil {
		return nil, err
	}

	chains := make([]chainregistry.Chain, 0, len(entries))
	for _, body := range entries {
		var chain chainregistry.Chain
		if err := json.Unmarshal([]byte(body), &chain); err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}

	return chains, nil
}

// Compile-time assertion that *client satisfies the chainregistry.Storage interface.
var _ chainregistry.Storage = (*client)(nil)
