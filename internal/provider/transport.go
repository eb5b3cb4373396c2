package provider

import (
	"context"
	"encoding/json"
)

// Transport is the narrow surface the provider core needs from an underlying
// channel, whether a direct JSON-RPC node connection or an injected wallet
// handle. Implementations send the named method with positionally ordered
// params and return the raw result. Transport failures and structured
// provider rejections (*RPCError) are returned unchanged; the core never
// retries at this layer.
type Transport interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// RawListener receives the raw payload of an injected-provider event before
// any normalization.
type RawListener func(payload json.RawMessage)

// Injected models a browser-injected wallet provider handle (EIP-1193
// shape). It is a capability interface: any object exposing these methods
// can back a wallet Provider, and the core never depends on a concrete
// variant.
//
// On and Once return a removal function because Go functions have no
// identity; dropping the returned func and never calling it leaves the
// listener registered for the handle's lifetime.
type Injected interface {
	// Request submits an RPC call through the wallet. Rejections surface as
	// *RPCError.
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)

	// On registers a persistent listener for the named event.
	On(event string, fn RawListener) (remove func())

	// Once registers a listener invoked at most one time.
	Once(event string, fn RawListener) (remove func())

	// RemoveAllListeners drops every listener for the named events, or all
	// listeners when called with no arguments.
	RemoveAllListeners(event ...string)

	// ListenerCount reports the number of listeners for the named events, or
	// for all events when called with no arguments.
	ListenerCount(event ...string) int

	// IsConnected reports whether the wallet currently has an active
	// connection to its chain.
	IsConnected() bool

	// ChainID returns the wallet's cached chain id.
	//
	// Deprecated: prefer requesting eth_chainId; the property is kept only
	// because injected providers still expose it.
	ChainID() string

	// SelectedAddress returns the wallet's currently selected account.
	//
	// Deprecated: prefer requesting eth_accounts.
	SelectedAddress() string
}

// injectedTransport adapts an Injected handle to the Transport interface so
// the dispatcher issues requests the same way over both variants.
type injectedTransport struct {
	handle Injected
}

var _ Transport = (*injectedTransport)(nil)

func (t injectedTransport) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	return t.handle.Request(ctx, method, params...)
}
