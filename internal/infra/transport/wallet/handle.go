// Package wallet provides an in-process implementation of the
// provider.Injected capability interface. Host integrations embed a Handle,
// route Request through their wallet connection, and feed lifecycle events
// in with Emit; the provider core consumes it like any other injected
// handle.
package wallet

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gabapcia/walletbridge/internal/provider"
)

// RequestFunc forwards an RPC call to the actual wallet connection.
type RequestFunc func(ctx context.Context, method string, params ...any) (json.RawMessage, error)

// listener is a single raw-event registration.
type listener struct {
	id   uint64
	fn   provider.RawListener
	once bool
}

// Handle is a concrete provider.Injected backed by a RequestFunc and a
// local event emitter. The zero value is not usable; construct with New.
type Handle struct {
	request RequestFunc

	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]*listener
	connected bool

	chainID         string
	selectedAddress string
}

var _ provider.Injected = (*Handle)(nil)

// New creates a Handle that forwards requests through request.
func New(request RequestFunc) *Handle {
	return &Handle{
		request:   request,
		listeners: make(map[string][]*listener),
	}
}

// SetConnected updates the connection state reported by IsConnected.
func (h *Handle) SetConnected(connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = connected
}

// SetChainID updates the deprecated cached chain id property.
func (h *Handle) SetChainID(chainID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chainID = chainID
}

// SetSelectedAddress updates the deprecated selected account property.
func (h *Handle) SetSelectedAddress(address string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selectedAddress = address
}

// Request implements provider.Injected.
func (h *Handle) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	return h.request(ctx, method, params...)
}

// On implements provider.Injected.
func (h *Handle) On(event string, fn provider.RawListener) func() {
	return h.add(event, fn, false)
}

// Once implements provider.Injected.
func (h *Handle) Once(event string, fn provider.RawListener) func() {
	return h.add(event, fn, true)
}

func (h *Handle) add(event string, fn provider.RawListener, once bool) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	l := &listener{id: h.nextID, fn: fn, once: once}
	h.listeners[event] = append(h.listeners[event], l)

	id := l.id
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		kept := h.listeners[event][:0]
		for _, cand := range h.listeners[event] {
			if cand.id != id {
				kept = append(kept, cand)
			}
		}
		h.listeners[event] = kept
	}
}

// RemoveAllListeners implements provider.Injected.
func (h *Handle) RemoveAllListeners(event ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(event) == 0 {
		h.listeners = make(map[string][]*listener)
		return
	}

	for _, name := range event {
		delete(h.listeners, name)
	}
}

// ListenerCount implements provider.Injected.
func (h *Handle) ListenerCount(event ...string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(event) == 0 {
		total := 0
		for _, list := range h.listeners {
			total += len(list)
		}
		return total
	}

	total := 0
	for _, name := range event {
		total += len(h.listeners[name])
	}
	return total
}

// IsConnected implements provider.Injected.
func (h *Handle) IsConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// ChainID implements provider.Injected.
//
// Deprecated: kept to satisfy the injected-provider surface.
func (h *Handle) ChainID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.chainID
}

// SelectedAddress implements provider.Injected.
//
// Deprecated: kept to satisfy the injected-provider surface.
func (h *Handle) SelectedAddress() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selectedAddress
}

// Emit delivers a raw event payload to every registered listener in
// registration order. Once-listeners are deregistered before invocation.
func (h *Handle) Emit(event string, payload json.RawMessage) {
	h.mu.Lock()
	list := h.listeners[event]
	invoke := make([]*listener, len(list))
	copy(invoke, list)

	kept := make([]*listener, 0, len(list))
	for _, l := range list {
		if !l.once {
			kept = append(kept, l)
		}
	}
	h.listeners[event] = kept
	h.mu.Unlock()

	for _, l := range invoke {
		l.fn(payload)
	}
}
