package provider

import (
	"context"

	"github.com/gabapcia/walletbridge/internal/pkg/types"
)

// requireInjected guards operations that only make sense against an injected
// wallet handle.
func (p *Provider) requireInjected() (Injected, error) {
	if p.injected == nil {
		return nil, ErrUnsupportedEnvironment
	}
	return p.injected, nil
}

// IsConnected reports whether the injected wallet currently has an active
// chain connection. Node-backed providers return false with
// ErrUnsupportedEnvironment.
func (p *Provider) IsConnected() (bool, error) {
	handle, err := p.requireInjected()
	if err != nil {
		return false, err
	}
	return handle.IsConnected(), nil
}

// SelectedAddress returns the wallet's currently selected account via the
// deprecated provider property. Prefer Accounts.
func (p *Provider) SelectedAddress() (string, error) {
	handle, err := p.requireInjected()
	if err != nil {
		return "", err
	}
	return handle.SelectedAddress(), nil
}

// RequestAccounts prompts the wallet user to expose their accounts. A user
// rejection surfaces as *RPCError.
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	handle, err := p.requireInjected()
	if err != nil {
		return nil, err
	}

	raw, err := handle.Request(ctx, "eth_requestAccounts")
	if err != nil {
		return nil, err
	}

	return decodeResult[[]string](raw, "accounts")
}

// WalletChainID returns the wallet's chain id parsed from its hex string
// representation.
func (p *Provider) WalletChainID(ctx context.Context) (int64, error) {
	handle, err := p.requireInjected()
	if err != nil {
		return 0, err
	}

	raw, err := handle.Request(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}

	s, err := decodeResult[string](raw, "chain id")
	if err != nil {
		return 0, err
	}
	return types.ParseChainID(s)
}

// AddChain asks the wallet to register a new chain (wallet_addEthereumChain).
// The wallet may prompt the user; a rejection surfaces as *RPCError.
func (p *Provider) AddChain(ctx context.Context, params ChainParams) error {
	handle, err := p.requireInjected()
	if err != nil {
		return err
	}

	_, err = handle.Request(ctx, "wallet_addEthereumChain", params)
	return err
}

// WatchAsset asks the wallet to track a token (wallet_watchAsset) and
// reports whether the user accepted.
func (p *Provider) WatchAsset(ctx context.Context, params AssetParams) (bool, error) {
	handle, err := p.requireInjected()
	if err != nil {
		return false, err
	}

	raw, err := handle.Request(ctx, "wallet_watchAsset", params)
	if err != nil {
		return false, err
	}

	return decodeResult[bool](raw, "watch asset result")
}
