package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrCoercion is wrapped by every failure to interpret a raw chain value as
// the requested numeric kind. Callers can detect coercion failures with
// errors.Is regardless of the concrete parse error.
var ErrCoercion = errors.New("cannot coerce value")

// Hex represents a hexadecimal-encoded quantity as a string (e.g., "0x1a"),
// the wire format Ethereum nodes use for numbers. Values may exceed 64 bits
// (balances, total difficulty), so validation only checks the digit set and
// conversion to native integers is offered separately from arbitrary
// precision decoding.
type Hex string

// HexFromString validates the input string and returns a Hex value if valid.
func HexFromString(s string) (Hex, error) {
	if err := validateHex(s); err != nil {
		return "", err
	}
	return Hex(s), nil
}

// HexFromInt encodes n as a 0x-prefixed hexadecimal quantity.
func HexFromInt(n int64) Hex {
	return Hex(fmt.Sprintf("0x%x", n))
}

// HexFromBigInt encodes n as a 0x-prefixed hexadecimal quantity.
func HexFromBigInt(n *big.Int) Hex {
	return Hex(fmt.Sprintf("0x%x", n))
}

// validateHex checks whether a string is a hexadecimal number starting with
// "0x" or "0X". Unlike strconv-based validation it accepts quantities wider
// than 64 bits.
func validateHex(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("%w: hex string must start with 0x", ErrCoercion)
	}

	digits := s[2:]
	if len(digits) == 0 {
		return fmt.Errorf("%w: hex string has no digits", ErrCoercion)
	}

	for _, c := range digits {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("%w: invalid hexadecimal digit %q", ErrCoercion, c)
		}
	}

	return nil
}

// IsEmpty reports whether the Hex carries no value at all.
func (h Hex) IsEmpty() bool {
	return h == ""
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded hexadecimal string.
// JSON null decodes to the empty Hex so optional block fields (e.g.
// baseFeePerGas on pre-London blocks) remain representable.
func (h *Hex) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrCoercion, err)
	}

	if err := validateHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}

// Add returns a new Hex representing the result of adding n to the current
// value. An empty or invalid receiver is treated as zero.
func (h Hex) Add(n int64) Hex {
	return HexFromInt(h.Int() + n)
}

// Int returns the decoded int64 value from the hexadecimal string.
// If parsing fails or the value does not fit in 64 bits, it returns zero.
func (h Hex) Int() int64 {
	if len(h) < 3 {
		return 0
	}
	v, _ := strconv.ParseInt(string(h)[2:], 16, 64)
	return v
}

// Uint64 returns the decoded uint64 value from the hexadecimal string,
// or an error if the value is absent, malformed, or wider than 64 bits.
func (h Hex) Uint64() (uint64, error) {
	if err := validateHex(string(h)); err != nil {
		return 0, err
	}

	v, err := strconv.ParseUint(string(h)[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCoercion, err)
	}
	return v, nil
}

// BigInt decodes the hexadecimal string into an arbitrary-precision integer.
// No width limit applies; precision is never lost.
func (h Hex) BigInt() (*big.Int, error) {
	if err := validateHex(string(h)); err != nil {
		return nil, err
	}

	v, ok := new(big.Int).SetString(string(h)[2:], 16)
	if !ok {
		return nil, fmt.Errorf("%w: invalid hexadecimal value %q", ErrCoercion, h)
	}
	return v, nil
}

// ParseBigInt coerces a raw chain numeric string into an arbitrary-precision
// integer. Strings prefixed with "0x"/"0X" parse as base-16, everything else
// as base-10. Unparseable input yields an error wrapping ErrCoercion, never
// a silently defaulted value.
func ParseBigInt(s string) (*big.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return Hex(s).BigInt()
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: invalid decimal value %q", ErrCoercion, s)
	}
	return v, nil
}

// ParseChainID coerces a raw chain identifier into a plain int64. Chain IDs
// are bounded in practice, so unlike balances they do not need arbitrary
// precision; values outside the int64 range are rejected.
func ParseChainID(s string) (int64, error) {
	v, err := ParseBigInt(s)
	if err != nil {
		return 0, err
	}

	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: chain id %q exceeds int64 range", ErrCoercion, s)
	}
	return v.Int64(), nil
}
