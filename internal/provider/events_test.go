package provider

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_On(t *testing.T) {
	t.Run("dispatches in registration order", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var order []string
		p.On("custom", func(any) { order = append(order, "first") })
		p.On("custom", func(any) { order = append(order, "second") })
		p.On("custom", func(any) { order = append(order, "third") })

		p.events.emit(t.Context(), "custom", nil)

		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("same function registered twice fires twice", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var calls int
		fn := func(any) { calls++ }
		p.On("custom", fn)
		p.On("custom", fn)

		p.events.emit(t.Context(), "custom", nil)

		assert.Equal(t, 2, calls)
	})

	t.Run("listener added during emission does not see the in-flight event", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var lateCalls int
		p.On("custom", func(any) {
			p.On("custom", func(any) { lateCalls++ })
		})

		p.events.emit(t.Context(), "custom", nil)
		assert.Zero(t, lateCalls)

		p.events.emit(t.Context(), "custom", nil)
		assert.Equal(t, 1, lateCalls)
	})

	t.Run("panicking listener does not suppress the rest", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var survived bool
		p.On("custom", func(any) { panic("listener bug") })
		p.On("custom", func(any) { survived = true })

		p.events.emit(t.Context(), "custom", nil)

		assert.True(t, survived)
	})
}

func TestProvider_Once(t *testing.T) {
	t.Run("fires exactly once under double emission", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var calls int
		p.Once("custom", func(any) { calls++ })

		p.events.emit(t.Context(), "custom", nil)
		p.events.emit(t.Context(), "custom", nil)

		assert.Equal(t, 1, calls)
	})

	t.Run("deregisters before the listener body runs", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var countDuringDispatch int
		p.Once("custom", func(any) {
			countDuringDispatch = p.ListenerCount("custom")
		})

		p.events.emit(t.Context(), "custom", nil)

		assert.Zero(t, countDuringDispatch)
	})

	t.Run("fires exactly once under concurrent emission", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var calls atomic.Int64
		p.Once("custom", func(any) { calls.Add(1) })

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.events.emit(t.Context(), "custom", nil)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), calls.Load())
	})
}

func TestProvider_Off(t *testing.T) {
	t.Run("removes only the identified registration", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var firstCalls, secondCalls int
		sub := p.On("custom", func(any) { firstCalls++ })
		p.On("custom", func(any) { secondCalls++ })

		p.Off(sub)
		p.events.emit(t.Context(), "custom", nil)

		assert.Zero(t, firstCalls)
		assert.Equal(t, 1, secondCalls)
	})

	t.Run("zero subscription is a no-op", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		p.On("custom", func(any) {})
		p.Off(Subscription{})

		assert.Equal(t, 1, p.ListenerCount("custom"))
	})

	t.Run("listener removed during emission does not fire", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		var removedCalls int
		var victim Subscription
		p.On("custom", func(any) { p.Off(victim) })
		victim = p.On("custom", func(any) { removedCalls++ })

		p.events.emit(t.Context(), "custom", nil)

		assert.Zero(t, removedCalls)
	})
}

func TestProvider_RemoveAllListeners(t *testing.T) {
	t.Run("named events only", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		p.On("first", func(any) {})
		p.On("first", func(any) {})
		p.On("second", func(any) {})

		p.RemoveAllListeners("first")

		assert.Zero(t, p.ListenerCount("first"))
		assert.Equal(t, 1, p.ListenerCount("second"))
	})

	t.Run("every event when called with none", func(t *testing.T) {
		p := New(&fakeTransport{})
		defer p.Close()

		p.On("first", func(any) {})
		p.On("second", func(any) {})

		p.RemoveAllListeners()

		assert.Zero(t, p.ListenerCount())
	})
}

func TestProvider_EventNames(t *testing.T) {
	p := New(&fakeTransport{})
	defer p.Close()

	p.On("first", func(any) {})
	p.On("first", func(any) {})
	p.On("second", func(any) {})

	assert.ElementsMatch(t, []string{"first", "second"}, p.EventNames())
	assert.Equal(t, 3, p.ListenerCount())
}

func TestProvider_OnBlock(t *testing.T) {
	t.Run("emits every new head exactly once in order", func(t *testing.T) {
		var polls atomic.Int64
		transport := &fakeTransport{handler: func(method string, params []any) (json.RawMessage, error) {
			// first poll baselines at 16, later polls see 18
			if polls.Add(1) == 1 {
				return json.RawMessage(`"0x10"`), nil
			}
			return json.RawMessage(`"0x12"`), nil
		}}

		p := New(transport, WithPollInterval(time.Millisecond))
		defer p.Close()

		seen := make(chan int64, 8)
		p.OnBlock(func(blockNumber int64) { seen <- blockNumber })

		var got []int64
		for range 2 {
			select {
			case n := <-seen:
				got = append(got, n)
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for block events")
			}
		}
		assert.Equal(t, []int64{17, 18}, got)
	})

	t.Run("stops polling once the last listener is gone", func(t *testing.T) {
		transport := &fakeTransport{handler: respond(map[string]string{"eth_blockNumber": `"0x10"`})}
		p := New(transport, WithPollInterval(time.Millisecond))
		defer p.Close()

		sub := p.OnBlock(func(int64) {})
		p.Off(sub)

		// the poller context is canceled; give it a moment to wind down
		time.Sleep(20 * time.Millisecond)
		transport.mu.Lock()
		settled := len(transport.calls)
		transport.mu.Unlock()

		time.Sleep(20 * time.Millisecond)
		transport.mu.Lock()
		after := len(transport.calls)
		transport.mu.Unlock()

		assert.Equal(t, settled, after)
	})
}

func TestProvider_OnLogs(t *testing.T) {
	var head atomic.Int64
	head.Store(16)

	transport := &fakeTransport{handler: func(method string, params []any) (json.RawMessage, error) {
		switch method {
		case "eth_blockNumber":
			return json.RawMessage(fmt.Sprintf(`"0x%x"`, head.Load())), nil
		case "eth_getLogs":
			return json.RawMessage(`[{"address":"0xcontract","topics":["0xtopic0"],"data":"0x01","blockNumber":"0x11","transactionHash":"0xtx1","logIndex":"0x0"}]`), nil
		}
		return nil, nil
	}}

	p := New(transport, WithPollInterval(time.Millisecond))
	defer p.Close()

	seen := make(chan Log, 1)
	query := FilterQuery{Address: "0xcontract", Topics: []string{"0xtopic0"}}
	p.OnLogs(query, func(log Log) { seen <- log })

	// let the poller baseline on head 16, then advance the chain
	time.Sleep(10 * time.Millisecond)
	head.Store(17)

	select {
	case log := <-seen:
		assert.Equal(t, "0xcontract", log.Address)
		assert.Equal(t, int64(17), log.BlockNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for log event")
	}

	// the poller queried only the range mined since the baseline
	transport.mu.Lock()
	defer transport.mu.Unlock()
	for _, call := range transport.calls {
		if call.method != "eth_getLogs" {
			continue
		}
		ranged, ok := call.params[0].(FilterQuery)
		require.True(t, ok)
		assert.Equal(t, BlockNumberTag(17), ranged.FromBlock)
		assert.Equal(t, BlockNumberTag(17), ranged.ToBlock)
	}
}

func TestProvider_OffLogs(t *testing.T) {
	p := New(&fakeTransport{handler: respond(map[string]string{"eth_blockNumber": `"0x10"`})}, WithPollInterval(time.Hour))
	defer p.Close()

	query := FilterQuery{Address: "0xcontract"}
	p.OnLogs(query, func(Log) {})
	p.OnLogs(query, func(Log) {})
	require.Equal(t, 2, p.ListenerCount())

	p.OffLogs(query)
	assert.Zero(t, p.ListenerCount())
}

func TestFilterQuery_Fingerprint(t *testing.T) {
	t.Run("same address and topics share one key", func(t *testing.T) {
		a := FilterQuery{Address: "0xabc", Topics: []string{"0xt0"}, FromBlock: BlockNumberTag(1)}
		b := FilterQuery{Address: "0xabc", Topics: []string{"0xt0"}, FromBlock: BlockNumberTag(99)}
		assert.Equal(t, a.fingerprint(), b.fingerprint())
	})

	t.Run("different topics get distinct keys", func(t *testing.T) {
		a := FilterQuery{Address: "0xabc", Topics: []string{"0xt0"}}
		b := FilterQuery{Address: "0xabc", Topics: []string{"0xt1"}}
		assert.NotEqual(t, a.fingerprint(), b.fingerprint())
	})
}

func TestNormalizeWalletEvent(t *testing.T) {
	t.Run("accountsChanged decodes the address list", func(t *testing.T) {
		payload, err := normalizeWalletEvent(EventAccountsChanged, json.RawMessage(`["0xabc","0xdef"]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"0xabc", "0xdef"}, payload)
	})

	t.Run("chainChanged parses the hex chain id", func(t *testing.T) {
		payload, err := normalizeWalletEvent(EventChainChanged, json.RawMessage(`"0x89"`))
		require.NoError(t, err)
		assert.Equal(t, int64(137), payload)
	})

	t.Run("connect carries the chain id", func(t *testing.T) {
		payload, err := normalizeWalletEvent(EventConnect, json.RawMessage(`{"chainId":"0x1"}`))
		require.NoError(t, err)
		assert.Equal(t, ConnectInfo{ChainID: 1}, payload)
	})

	t.Run("disconnect decodes the provider error", func(t *testing.T) {
		payload, err := normalizeWalletEvent(EventDisconnect, json.RawMessage(`{"code":4900,"message":"disconnected"}`))
		require.NoError(t, err)

		reason, ok := payload.(*RPCError)
		require.True(t, ok)
		assert.Equal(t, 4900, reason.Code)
	})

	t.Run("message decodes the notification envelope", func(t *testing.T) {
		payload, err := normalizeWalletEvent(EventMessage, json.RawMessage(`{"type":"eth_subscription","data":{"result":"0x1"}}`))
		require.NoError(t, err)

		msg, ok := payload.(ProviderMessage)
		require.True(t, ok)
		assert.Equal(t, "eth_subscription", msg.Type)
	})

	t.Run("malformed payload wraps the coercion sentinel", func(t *testing.T) {
		_, err := normalizeWalletEvent(EventChainChanged, json.RawMessage(`12`))
		assert.ErrorIs(t, err, ErrCoercion)
	})

	t.Run("unknown event is rejected", func(t *testing.T) {
		_, err := normalizeWalletEvent("somethingElse", json.RawMessage(`null`))
		assert.ErrorIs(t, err, ErrCoercion)
	})
}
