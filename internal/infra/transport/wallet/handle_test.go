package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gabapcia/walletbridge/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New(func(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
		return json.RawMessage(`"0x1"`), nil
	})

	require.NotNil(t, h)

	// Compile-time interface check
	var _ provider.Injected = h
}

func TestHandle_Request(t *testing.T) {
	t.Run("forwards through the request func", func(t *testing.T) {
		var gotMethod string
		var gotParams []any
		h := New(func(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
			gotMethod = method
			gotParams = params
			return json.RawMessage(`["0xabc"]`), nil
		})

		raw, err := h.Request(t.Context(), "eth_requestAccounts", "extra")
		require.NoError(t, err)
		assert.JSONEq(t, `["0xabc"]`, string(raw))
		assert.Equal(t, "eth_requestAccounts", gotMethod)
		assert.Equal(t, []any{"extra"}, gotParams)
	})

	t.Run("propagates structured rejections", func(t *testing.T) {
		rejection := &provider.RPCError{Code: 4001, Message: "user rejected the request"}
		h := New(func(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
			return nil, rejection
		})

		_, err := h.Request(t.Context(), "eth_requestAccounts")

		var rpcErr *provider.RPCError
		require.ErrorAs(t, err, &rpcErr)
		assert.Equal(t, 4001, rpcErr.Code)
	})
}

func TestHandle_Events(t *testing.T) {
	newHandle := func() *Handle {
		return New(func(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
			return nil, nil
		})
	}

	t.Run("emit dispatches in registration order", func(t *testing.T) {
		h := newHandle()

		var order []string
		h.On("accountsChanged", func(json.RawMessage) { order = append(order, "first") })
		h.On("accountsChanged", func(json.RawMessage) { order = append(order, "second") })

		h.Emit("accountsChanged", json.RawMessage(`[]`))

		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("once listeners fire a single time", func(t *testing.T) {
		h := newHandle()

		var calls int
		h.Once("chainChanged", func(json.RawMessage) { calls++ })

		h.Emit("chainChanged", json.RawMessage(`"0x1"`))
		h.Emit("chainChanged", json.RawMessage(`"0x1"`))

		assert.Equal(t, 1, calls)
		assert.Zero(t, h.ListenerCount("chainChanged"))
	})

	t.Run("remove func deregisters exactly one listener", func(t *testing.T) {
		h := newHandle()

		var firstCalls, secondCalls int
		remove := h.On("connect", func(json.RawMessage) { firstCalls++ })
		h.On("connect", func(json.RawMessage) { secondCalls++ })

		remove()
		h.Emit("connect", json.RawMessage(`{}`))

		assert.Zero(t, firstCalls)
		assert.Equal(t, 1, secondCalls)
	})

	t.Run("RemoveAllListeners with names drops only those events", func(t *testing.T) {
		h := newHandle()

		h.On("connect", func(json.RawMessage) {})
		h.On("disconnect", func(json.RawMessage) {})

		h.RemoveAllListeners("connect")

		assert.Zero(t, h.ListenerCount("connect"))
		assert.Equal(t, 1, h.ListenerCount("disconnect"))
	})

	t.Run("RemoveAllListeners without names drops everything", func(t *testing.T) {
		h := newHandle()

		h.On("connect", func(json.RawMessage) {})
		h.On("disconnect", func(json.RawMessage) {})

		h.RemoveAllListeners()

		assert.Zero(t, h.ListenerCount())
	})

	t.Run("emitting an event with no listeners is a no-op", func(t *testing.T) {
		h := newHandle()
		h.Emit("message", json.RawMessage(`{}`))
	})
}

func TestHandle_Properties(t *testing.T) {
	h := New(func(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
		return nil, nil
	})

	assert.False(t, h.IsConnected())
	assert.Empty(t, h.ChainID())
	assert.Empty(t, h.SelectedAddress())

	h.SetConnected(true)
	h.SetChainID("0x1")
	h.SetSelectedAddress("0xabc")

	assert.True(t, h.IsConnected())
	assert.Equal(t, "0x1", h.ChainID())
	assert.Equal(t, "0xabc", h.SelectedAddress())
}
