// Package provider offers a unified, typed surface over Ethereum-compatible
// chains reachable through two transport variants: a direct JSON-RPC node
// connection and a browser-injected EIP-1193 wallet handle. Calling code
// issues typed requests and registers event listeners without caring which
// transport is active.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/gabapcia/walletbridge/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletbridge/internal/pkg/types"
)

// defaultPollInterval is used by the confirmation waiter and the event
// pollers when no interval is configured. It approximates a third of the
// expected Ethereum block time.
const defaultPollInterval = 4 * time.Second

// Provider is the aggregation root: a logical handle bound to exactly one
// transport for its whole lifetime. It owns no mutable state beyond the
// transport reference and the listener registry, and multiple in-flight
// calls may be issued concurrently without interference.
type Provider struct {
	transport Transport
	injected  Injected // nil for node-backed providers

	pollInterval time.Duration
	retrier      retry.Retry

	events *eventRegistry

	ctx    context.Context
	cancel context.CancelFunc
}

// config holds optional construction parameters for a Provider.
type config struct {
	pollInterval time.Duration
	retrier      retry.Retry
}

// Option customizes Provider construction.
type Option func(*config)

// WithPollInterval sets the interval used by the confirmation waiter and the
// block/log event pollers.
//
// Default: 4 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithRetry supplies a retry policy applied to transient fetch failures
// inside the confirmation waiter and event pollers. The dispatcher itself
// never retries.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retrier = r
	}
}

// New creates a Provider bound to the given transport.
func New(transport Transport, opts ...Option) *Provider {
	cfg := config{
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Provider{
		transport:    transport,
		pollInterval: cfg.pollInterval,
		retrier:      cfg.retrier,
		events:       newEventRegistry(),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// FromEnvironment detects the highest-priority injected wallet handle in env
// and builds a Provider on top of it. It returns ErrUnsupportedEnvironment
// when detection finds no candidate.
func FromEnvironment(env Environment, opts ...Option) (*Provider, error) {
	handle, ok := env.Detect()
	if !ok {
		return nil, ErrUnsupportedEnvironment
	}

	p := New(injectedTransport{handle: handle}, opts...)
	p.injected = handle
	return p, nil
}

// Close stops every background poller and unhooks any bridged wallet
// listeners. The Provider must not be used afterwards.
func (p *Provider) Close() {
	p.cancel()
	p.events.close()
}

// Request issues a named RPC method call with positionally ordered arguments
// against the active transport and returns the raw result. Transport errors
// propagate unchanged. Typed accessors should be preferred; Request exists
// for methods the core has no coercion rule for.
func (p *Provider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	return p.transport.Request(ctx, method, params...)
}

// isNull reports whether a raw result encodes an explicit absence.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeResult unmarshals a raw transport result into T, wrapping decode
// failures as coercion errors.
func decodeResult[T any](raw json.RawMessage, what string) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCoercion, what, err)
	}
	return v, nil
}

// BlockNumber returns the current head block number.
func (p *Provider) BlockNumber(ctx context.Context) (int64, error) {
	raw, err := p.transport.Request(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}

	h, err := decodeResult[types.Hex](raw, "block number")
	if err != nil {
		return 0, err
	}
	return h.Int(), nil
}

// ChainID returns the chain identifier as a plain integer. Chain IDs are
// bounded, so unlike balances they are not surfaced as big integers.
func (p *Provider) ChainID(ctx context.Context) (int64, error) {
	raw, err := p.transport.Request(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}

	s, err := decodeResult[string](raw, "chain id")
	if err != nil {
		return 0, err
	}
	return types.ParseChainID(s)
}

// GasPrice returns the current gas price in wei as an arbitrary-precision
// integer.
func (p *Provider) GasPrice(ctx context.Context) (*big.Int, error) {
	raw, err := p.transport.Request(ctx, "eth_gasPrice")
	if err != nil {
		return nil, err
	}

	h, err := decodeResult[types.Hex](raw, "gas price")
	if err != nil {
		return nil, err
	}
	return h.BigInt()
}

// Balance returns the wei balance of address. When no block tag is given the
// argument is omitted from the request entirely rather than defaulting to
// "latest": omission and an explicit tag are not guaranteed equivalent
// across transports, and the transport's own default must win.
func (p *Provider) Balance(ctx context.Context, address string, blockTag ...BlockTag) (*big.Int, error) {
	raw, err := p.transport.Request(ctx, "eth_getBalance", withOptionalTag(address, blockTag)...)
	if err != nil {
		return nil, err
	}

	h, err := decodeResult[types.Hex](raw, "balance")
	if err != nil {
		return nil, err
	}
	return h.BigInt()
}

// TransactionCount returns the nonce of address. The block tag follows the
// same omission rule as Balance.
func (p *Provider) TransactionCount(ctx context.Context, address string, blockTag ...BlockTag) (int64, error) {
	raw, err := p.transport.Request(ctx, "eth_getTransactionCount", withOptionalTag(address, blockTag)...)
	if err != nil {
		return 0, err
	}

	h, err := decodeResult[types.Hex](raw, "transaction count")
	if err != nil {
		return 0, err
	}
	return h.Int(), nil
}

// withOptionalTag builds the positional params for block-tag-optional calls,
// appending the tag only when the caller actually supplied one.
func withOptionalTag(address string, blockTag []BlockTag) []any {
	params := []any{address}
	if len(blockTag) > 0 && blockTag[0] != "" {
		params = append(params, string(blockTag[0]))
	}
	return params
}

// BlockByNumber fetches the block referenced by tag, with transactions as
// hash references. An unknown block yields (nil, nil).
func (p *Provider) BlockByNumber(ctx context.Context, tag BlockTag) (*Block, error) {
	raw, err := p.transport.Request(ctx, "eth_getBlockByNumber", string(tag), false)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	wire, err := decodeResult[blockWire](raw, "block")
	if err != nil {
		return nil, err
	}
	return wire.toBlock()
}

// BlockWithTransactionsByNumber fetches the block referenced by tag with
// fully materialized transaction records. An unknown block yields (nil, nil).
func (p *Provider) BlockWithTransactionsByNumber(ctx context.Context, tag BlockTag) (*BlockWithTransactions, error) {
	raw, err := p.transport.Request(ctx, "eth_getBlockByNumber", string(tag), true)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	wire, err := decodeResult[blockWire](raw, "block")
	if err != nil {
		return nil, err
	}
	return wire.toBlockWithTransactions()
}

// TransactionByHash returns the transaction with the given hash, or
// (nil, nil) when the transport has never seen it. Absence is an explicit
// result, not an error.
func (p *Provider) TransactionByHash(ctx context.Context, hash string) (*Transaction, error) {
	raw, err := p.transport.Request(ctx, "eth_getTransactionByHash", hash)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	wire, err := decodeResult[transactionWire](raw, "transaction")
	if err != nil {
		return nil, err
	}
	return wire.toTransaction()
}

// TransactionReceipt returns the receipt of a mined transaction, or
// (nil, nil) while the transaction is pending or unknown. A receipt is never
// partially filled: it exists only once the transaction is mined.
func (p *Provider) TransactionReceipt(ctx context.Context, hash string) (*TransactionReceipt, error) {
	raw, err := p.transport.Request(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	wire, err := decodeResult[receiptWire](raw, "transaction receipt")
	if err != nil {
		return nil, err
	}
	return wire.toReceipt()
}

// SendRawTransaction submits a signed transaction and returns its pending
// record. When the transport cannot report the record yet, a hash-only
// Transaction is returned.
func (p *Provider) SendRawTransaction(ctx context.Context, signedData string) (*Transaction, error) {
	raw, err := p.transport.Request(ctx, "eth_sendRawTransaction", signedData)
	if err != nil {
		return nil, err
	}

	hash, err := decodeResult[string](raw, "transaction hash")
	if err != nil {
		return nil, err
	}

	tx, err := p.TransactionByHash(ctx, hash)
	if err != nil || tx == nil {
		// The submission itself succeeded; surface at least the hash.
		return &Transaction{Hash: hash}, nil
	}
	return tx, nil
}

// Logs runs a one-shot log query for the given filter.
func (p *Provider) Logs(ctx context.Context, q FilterQuery) ([]Log, error) {
	raw, err := p.transport.Request(ctx, "eth_getLogs", q)
	if err != nil {
		return nil, err
	}

	wires, err := decodeResult[[]logWire](raw, "logs")
	if err != nil {
		return nil, err
	}

	logs := make([]Log, len(wires))
	for i, lw := range wires {
		logs[i] = lw.toLog()
	}
	return logs, nil
}

// Accounts lists the accounts the transport controls. For node transports
// this is eth_accounts; wallet transports answer with the accounts the user
// has already exposed.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	raw, err := p.transport.Request(ctx, "eth_accounts")
	if err != nil {
		return nil, err
	}

	return decodeResult[[]string](raw, "accounts")
}

// Network fetches an immutable snapshot of the connected chain. The core
// never caches it; callers may.
func (p *Provider) Network(ctx context.Context) (Network, error) {
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return Network{}, err
	}

	return networkFromChainID(chainID), nil
}
