package provider

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/walletbridge/internal/pkg/types"
)

// ErrCoercion is wrapped whenever a raw transport result cannot be
// interpreted as the kind the caller requested. It aliases the sentinel in
// the types package so the whole coercion chain matches one errors.Is target.
var ErrCoercion = types.ErrCoercion

// ErrUnsupportedEnvironment indicates an operation that requires an injected
// wallet provider was invoked while detection found none.
var ErrUnsupportedEnvironment = errors.New("no injected provider available in this environment")

// RPCError is the structured error surfaced by JSON-RPC nodes and injected
// wallet providers for request rejections (e.g. the user declined a
// connection prompt). Code and Message follow the EIP-1193/JSON-RPC error
// object; Data carries any provider-specific payload untouched.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error: [%d] - %s", e.Code, e.Message)
}

// TimeoutError is returned by WaitForTransaction when the configured deadline
// elapses before the transaction reaches the requested confirmation depth.
// It carries the last known state so callers can distinguish a transaction
// that was mined but not deep enough from one that was never mined at all.
type TimeoutError struct {
	Hash          string // transaction hash the wait was tracking
	Mined         bool   // whether a receipt was ever observed
	Confirmations int64  // last computed confirmation depth (0 when unmined)
}

func (e *TimeoutError) Error() string {
	if !e.Mined {
		return fmt.Sprintf("timed out waiting for transaction %s: not yet mined", e.Hash)
	}
	return fmt.Sprintf("timed out waiting for transaction %s: mined with %d confirmation(s)", e.Hash, e.Confirmations)
}
