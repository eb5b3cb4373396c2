package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gabapcia/walletbridge/internal/pkg/logger"
	"github.com/gabapcia/walletbridge/internal/pkg/types"
)

// Event names understood by the multiplexer. Log subscriptions use a
// structured FilterQuery key instead and live in a disjoint namespace.
const (
	EventBlock           = "block"
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventConnect         = "connect"
	EventDisconnect      = "disconnect"
	EventMessage         = "message"
)

// walletLifecycleEvents are the event names an injected wallet handle emits
// natively. They are bridged from the handle into the local registry; every
// other event is produced by the provider's own pollers.
var walletLifecycleEvents = types.NewSet(
	EventAccountsChanged,
	EventChainChanged,
	EventConnect,
	EventDisconnect,
	EventMessage,
)

// Subscription identifies a single listener registration. Go functions have
// no identity, so removal works through this token instead of the listener
// value itself.
type Subscription struct {
	key string
	id  uint64
}

// subscription is a registered listener. The consumed and removed flags are
// guarded by the registry mutex; marking a once-listener consumed
// happens-before its invocation, so it can never fire twice even under
// concurrent emission.
type subscription struct {
	id       uint64
	fn       func(any)
	once     bool
	consumed bool
	removed  bool
}

// eventRegistry is the only mutable shared structure a Provider owns. It
// supports concurrent registration and removal while an emission is in
// progress: emission iterates a snapshot taken at emission start, listeners
// added mid-emission do not see the in-flight event, and listeners removed
// mid-emission do not fire.
type eventRegistry struct {
	mu     sync.Mutex
	nextID uint64
	subs   types.DefaultMap[string, []*subscription]

	// stops holds the per-key teardown for the feeder (poller goroutine or
	// wallet bridge) that produces the key's events. Invoked when the last
	// listener for the key goes away.
	stops map[string]func()
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{
		subs:  types.NewDefaultMap[string, []*subscription](func() []*subscription { return nil }),
		stops: make(map[string]func()),
	}
}

// add registers a listener under key and reports whether it is the first
// registration for that key.
func (r *eventRegistry) add(key string, fn func(any), once bool) (Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := &subscription{id: r.nextID, fn: fn, once: once}

	existing := r.subs.Get(key)
	r.subs.Set(key, append(existing, sub))

	return Subscription{key: key, id: sub.id}, len(existing) == 0
}

// setStop records the teardown to run when key loses its last listener. When
// the key already has no listeners (e.g. a once-listener consumed before the
// feeder was registered), the teardown runs immediately.
func (r *eventRegistry) setStop(key string, stop func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subs.Get(key)) == 0 {
		stop()
		return
	}
	r.stops[key] = stop
}

// stopLocked runs and clears the teardown for key. Caller holds r.mu.
func (r *eventRegistry) stopLocked(key string) {
	if stop, ok := r.stops[key]; ok {
		stop()
		delete(r.stops, key)
	}
}

// remove deregisters the subscription identified by sub, by identity.
func (r *eventRegistry) remove(sub Subscription) {
	if sub.key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.subs.Get(sub.key)
	kept := make([]*subscription, 0, len(list))
	for _, s := range list {
		if s.id == sub.id {
			s.removed = true
			continue
		}
		kept = append(kept, s)
	}

	r.subs.Set(sub.key, kept)
	if len(kept) == 0 {
		r.subs.Delete(sub.key)
		r.stopLocked(sub.key)
	}
}

// removeAll deregisters every listener for the given keys, or for every key
// when called with none.
func (r *eventRegistry) removeAll(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(keys) == 0 {
		for key := range r.subs.ToMap() {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		for _, s := range r.subs.Get(key) {
			s.removed = true
		}
		r.subs.Delete(key)
		r.stopLocked(key)
	}
}

// emit dispatches payload to the listeners registered under key at emission
// start, in registration order. Once-listeners are deregistered before their
// body runs. A panicking listener is isolated: it is logged and dispatch
// continues with the next listener.
func (r *eventRegistry) emit(ctx context.Context, key string, payload any) {
	r.mu.Lock()

	list := r.subs.Get(key)
	invoke := make([]*subscription, 0, len(list))
	kept := make([]*subscription, 0, len(list))
	for _, s := range list {
		if s.removed || s.consumed {
			continue
		}

		invoke = append(invoke, s)
		if s.once {
			s.consumed = true
			continue
		}
		kept = append(kept, s)
	}

	r.subs.Set(key, kept)
	if len(kept) == 0 {
		r.subs.Delete(key)
		r.stopLocked(key)
	}
	r.mu.Unlock()

	for _, s := range invoke {
		r.mu.Lock()
		dead := s.removed
		r.mu.Unlock()
		if dead {
			continue
		}

		safeInvoke(ctx, key, s.fn, payload)
	}
}

// safeInvoke calls a listener, converting a panic into an error log so one
// faulty listener cannot suppress the rest of the dispatch.
func safeInvoke(ctx context.Context, key string, fn func(any), payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(ctx, "event listener panicked",
				"event.key", key,
				"panic", rec,
			)
		}
	}()

	fn(payload)
}

// count reports the number of live listeners for the given keys, or for all
// keys when called with none.
func (r *eventRegistry) count(keys ...string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(keys) == 0 {
		total := 0
		for _, list := range r.subs.ToMap() {
			total += len(list)
		}
		return total
	}

	total := 0
	for _, key := range keys {
		total += len(r.subs.Get(key))
	}
	return total
}

// names returns the distinct keys that currently have listeners.
func (r *eventRegistry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := types.NewSet[string]()
	for key, list := range r.subs.ToMap() {
		if len(list) > 0 {
			keys.Add(key)
		}
	}
	return keys.ToSlice()
}

// close tears down every feeder.
func (r *eventRegistry) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.stops {
		r.stopLocked(key)
	}
}

// On registers a persistent listener for the named event. The returned
// Subscription removes this registration via Off.
func (p *Provider) On(event string, fn func(payload any)) Subscription {
	return p.register(event, fn, false)
}

// Once registers a listener invoked at most one time. Deregistration
// happens-before the listener body runs, so rapid double emission cannot
// fire it twice.
func (p *Provider) Once(event string, fn func(payload any)) Subscription {
	return p.register(event, fn, true)
}

// Off removes the registration identified by sub. A zero Subscription is a
// no-op.
func (p *Provider) Off(sub Subscription) {
	p.events.remove(sub)
}

// RemoveAllListeners drops every listener for the named events, or all
// listeners when called with no arguments.
func (p *Provider) RemoveAllListeners(events ...string) {
	p.events.removeAll(events...)
}

// ListenerCount reports the number of listeners for the named events, or for
// all events when called with no arguments.
func (p *Provider) ListenerCount(events ...string) int {
	return p.events.count(events...)
}

// EventNames returns the distinct event keys that currently have listeners.
func (p *Provider) EventNames() []string {
	return p.events.names()
}

// register wires a listener and, on the first registration for its key,
// starts the feeder that produces the key's events.
func (p *Provider) register(key string, fn func(any), once bool) Subscription {
	sub, first := p.events.add(key, fn, once)
	if first {
		p.startFeeder(key, FilterQuery{})
	}
	return sub
}

// startFeeder launches what produces events for key: the head poller for
// "block", a bridge to the injected handle for wallet lifecycle events, and
// a log poller for filter keys (started by registerFilter, which knows the
// query).
func (p *Provider) startFeeder(key string, q FilterQuery) {
	switch {
	case key == EventBlock:
		ctx, cancel := context.WithCancel(p.ctx)
		go p.runBlockPoller(ctx)
		p.events.setStop(key, cancel)

	case strings.HasPrefix(key, "logs:"):
		ctx, cancel := context.WithCancel(p.ctx)
		go p.runLogPoller(ctx, key, q)
		p.events.setStop(key, cancel)

	case walletLifecycleEvents.Contains(key):
		if p.injected == nil {
			// Node transports never emit wallet lifecycle events; the
			// registration is legal but stays silent.
			return
		}
		remove := p.injected.On(key, func(raw json.RawMessage) {
			payload, err := normalizeWalletEvent(key, raw)
			if err != nil {
				logger.Error(p.ctx, "dropping malformed wallet event",
					"event.key", key,
					"error", err,
				)
				return
			}
			p.events.emit(p.ctx, key, payload)
		})
		p.events.setStop(key, remove)
	}
}

// OnBlock registers a persistent listener for new head block numbers.
func (p *Provider) OnBlock(fn func(blockNumber int64)) Subscription {
	return p.register(EventBlock, func(v any) { fn(v.(int64)) }, false)
}

// OnceBlock registers a one-shot listener for the next head block number.
func (p *Provider) OnceBlock(fn func(blockNumber int64)) Subscription {
	return p.register(EventBlock, func(v any) { fn(v.(int64)) }, true)
}

// OnAccountsChanged registers a listener for wallet account changes. The raw
// address list is normalized into canonical address strings before dispatch.
func (p *Provider) OnAccountsChanged(fn func(accounts []string)) Subscription {
	return p.register(EventAccountsChanged, func(v any) { fn(v.([]string)) }, false)
}

// OnChainChanged registers a listener for chain switches. The raw chain id
// is parsed into an integer before dispatch.
func (p *Provider) OnChainChanged(fn func(chainID int64)) Subscription {
	return p.register(EventChainChanged, func(v any) { fn(v.(int64)) }, false)
}

// OnConnect registers a listener for provider connect events.
func (p *Provider) OnConnect(fn func(info ConnectInfo)) Subscription {
	return p.register(EventConnect, func(v any) { fn(v.(ConnectInfo)) }, false)
}

// OnDisconnect registers a listener for provider disconnect events. The raw
// payload is wrapped into an *RPCError before dispatch.
func (p *Provider) OnDisconnect(fn func(reason *RPCError)) Subscription {
	return p.register(EventDisconnect, func(v any) { fn(v.(*RPCError)) }, false)
}

// OnMessage registers a listener for arbitrary provider notifications.
func (p *Provider) OnMessage(fn func(msg ProviderMessage)) Subscription {
	return p.register(EventMessage, func(v any) { fn(v.(ProviderMessage)) }, false)
}

// OnLogs registers a persistent listener for logs matching q. Listeners
// receive Log values already decoded by the dispatcher's coercion rules.
func (p *Provider) OnLogs(q FilterQuery, fn func(log Log)) Subscription {
	return p.registerFilter(q, fn, false)
}

// OnceLogs registers a one-shot listener for the first log matching q.
func (p *Provider) OnceLogs(q FilterQuery, fn func(log Log)) Subscription {
	return p.registerFilter(q, fn, true)
}

// OffLogs removes every listener registered for q.
func (p *Provider) OffLogs(q FilterQuery) {
	p.events.removeAll(q.fingerprint())
}

func (p *Provider) registerFilter(q FilterQuery, fn func(Log), once bool) Subscription {
	key := q.fingerprint()
	sub, first := p.events.add(key, func(v any) { fn(v.(Log)) }, once)
	if first {
		p.startFeeder(key, q)
	}
	return sub
}

// normalizeWalletEvent converts the raw payload of an injected-provider
// event into the value type its listeners expect.
func normalizeWalletEvent(event string, raw json.RawMessage) (any, error) {
	switch event {
	case EventAccountsChanged:
		var accounts []string
		if err := json.Unmarshal(raw, &accounts); err != nil {
			return nil, fmt.Errorf("%w: accounts list: %v", ErrCoercion, err)
		}
		return accounts, nil

	case EventChainChanged:
		var chainID string
		if err := json.Unmarshal(raw, &chainID); err != nil {
			return nil, fmt.Errorf("%w: chain id: %v", ErrCoercion, err)
		}
		return types.ParseChainID(chainID)

	case EventConnect:
		var info struct {
			ChainID string `json:"chainId"`
		}
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, fmt.Errorf("%w: connect info: %v", ErrCoercion, err)
		}

		chainID, err := types.ParseChainID(info.ChainID)
		if err != nil {
			return nil, err
		}
		return ConnectInfo{ChainID: chainID}, nil

	case EventDisconnect:
		var rpcErr RPCError
		if err := json.Unmarshal(raw, &rpcErr); err != nil {
			return nil, fmt.Errorf("%w: disconnect reason: %v", ErrCoercion, err)
		}
		return &rpcErr, nil

	case EventMessage:
		var msg ProviderMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: provider message: %v", ErrCoercion, err)
		}
		return msg, nil
	}

	return nil, fmt.Errorf("%w: unknown wallet event %q", ErrCoercion, event)
}
