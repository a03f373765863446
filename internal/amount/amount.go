// Package amount converts between human-readable token amounts and
// integer base units without going through floating point.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that cannot be submitted.
var ErrInvalidAmount = errors.New("invalid amount")

// Plain decimal notation only; decimal.NewFromString would also take "1e8".
// Groups: sign, whole part, fractional part.
var amountPattern = regexp.MustCompile(`^([+-]?)(\d*)(?:\.(\d*))?$`)

// ToBaseUnits converts a decimal string such as "1.5" into base units
// (amount × 10^decimals). The amount must be greater than zero and must not
// carry more significant fractional digits than decimals allows.
func ToBaseUnits(s string, decimals uint8) (*big.Int, error) {
	m := amountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[2]+m[3] == "" {
		return nil, invalid(s, "not a number")
	}

	num := m[2]
	if num == "" {
		num = "0"
	}
	// Trailing zeros carry no value.
	if frac := strings.TrimRight(m[3], "0"); frac != "" {
		num += "." + frac
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return nil, invalid(s, "not a number")
	}

	if m[1] == "-" || d.Sign() <= 0 {
		return nil, invalid(s, "must be greater than zero")
	}
	if -d.Exponent() > int32(decimals) {
		return nil, invalid(s, fmt.Sprintf("too many decimal places (max %d)", decimals))
	}
	return d.Shift(int32(decimals)).BigInt(), nil
}

// FromBaseUnits renders v as a decimal string in whole-token units. Trailing
// fractional zeros are dropped but at least one fractional digit is kept:
// 10×10^18 with 18 decimals renders as "10.0".
func FromBaseUnits(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0.0"
	}
	out := decimal.NewFromBigInt(v, -int32(decimals)).String()
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

func invalid(s, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidAmount, s, reason)
}
