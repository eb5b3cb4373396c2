package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexFromString(t *testing.T) {
	t.Run("accepts valid hex strings", func(t *testing.T) {
		for _, s := range []string{"0x0", "0x1a", "0XDEADBEEF", "0xde0b6b3a7640000"} {
			h, err := HexFromString(s)
			assert.NoError(t, err)
			assert.Equal(t, Hex(s), h)
		}
	})

	t.Run("accepts quantities wider than 64 bits", func(t *testing.T) {
		// 2^128, far outside uint64 range
		h, err := HexFromString("0x100000000000000000000000000000000")
		assert.NoError(t, err)
		assert.False(t, h.IsEmpty())
	})

	t.Run("rejects missing prefix", func(t *testing.T) {
		_, err := HexFromString("1a")
		assert.ErrorIs(t, err, ErrCoercion)
	})

	t.Run("rejects empty digits", func(t *testing.T) {
		_, err := HexFromString("0x")
		assert.ErrorIs(t, err, ErrCoercion)
	})

	t.Run("rejects invalid digits", func(t *testing.T) {
		_, err := HexFromString("0x12zz")
		assert.ErrorIs(t, err, ErrCoercion)
	})
}

func TestHex_UnmarshalJSON(t *testing.T) {
	t.Run("decodes valid hex string", func(t *testing.T) {
		var h Hex
		require.NoError(t, json.Unmarshal([]byte(`"0x10"`), &h))
		assert.Equal(t, int64(16), h.Int())
	})

	t.Run("decodes null as empty", func(t *testing.T) {
		var h Hex
		require.NoError(t, json.Unmarshal([]byte(`null`), &h))
		assert.True(t, h.IsEmpty())
	})

	t.Run("rejects non-hex string", func(t *testing.T) {
		var h Hex
		err := json.Unmarshal([]byte(`"latest"`), &h)
		assert.ErrorIs(t, err, ErrCoercion)
	})
}

func TestHex_BigInt(t *testing.T) {
	t.Run("round trips values beyond 64 bits", func(t *testing.T) {
		for _, n := range []*big.Int{
			big.NewInt(0),
			big.NewInt(1),
			big.NewInt(255),
			new(big.Int).Lsh(big.NewInt(1), 200),
		} {
			got, err := HexFromBigInt(n).BigInt()
			require.NoError(t, err)
			assert.Zero(t, n.Cmp(got), "round trip of %s", n)
		}
	})

	t.Run("fails on empty", func(t *testing.T) {
		_, err := Hex("").BigInt()
		assert.ErrorIs(t, err, ErrCoercion)
	})
}

func TestHex_Int(t *testing.T) {
	assert.Equal(t, int64(26), Hex("0x1a").Int())
	assert.Equal(t, int64(0), Hex("").Int())
	assert.Equal(t, Hex("0x1b"), Hex("0x1a").Add(1))
}

func TestHex_Uint64(t *testing.T) {
	t.Run("decodes in-range value", func(t *testing.T) {
		v, err := Hex("0xff").Uint64()
		require.NoError(t, err)
		assert.Equal(t, uint64(255), v)
	})

	t.Run("rejects value wider than 64 bits", func(t *testing.T) {
		_, err := Hex("0x100000000000000000000000000000000").Uint64()
		assert.ErrorIs(t, err, ErrCoercion)
	})
}

func TestParseBigInt(t *testing.T) {
	t.Run("parses hex prefixed strings as base 16", func(t *testing.T) {
		v, err := ParseBigInt("0x1a")
		require.NoError(t, err)
		assert.Equal(t, int64(26), v.Int64())
	})

	t.Run("parses plain strings as base 10", func(t *testing.T) {
		v, err := ParseBigInt("26")
		require.NoError(t, err)
		assert.Equal(t, int64(26), v.Int64())
	})

	t.Run("keeps full precision on huge decimals", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 100)
		v, err := ParseBigInt(huge.String())
		require.NoError(t, err)
		assert.Zero(t, huge.Cmp(v))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseBigInt("not-a-number")
		assert.ErrorIs(t, err, ErrCoercion)
	})
}

func TestParseChainID(t *testing.T) {
	t.Run("parses hex chain ids", func(t *testing.T) {
		v, err := ParseChainID("0x89")
		require.NoError(t, err)
		assert.Equal(t, int64(137), v)
	})

	t.Run("parses decimal chain ids", func(t *testing.T) {
		v, err := ParseChainID("1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("rejects chain ids beyond int64", func(t *testing.T) {
		_, err := ParseChainID("0x10000000000000000")
		assert.ErrorIs(t, err, ErrCoercion)
	})
}
