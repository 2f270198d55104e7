package lottery

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

// ParseQuantity parses a non-negative decimal integer that fits in 128 bits.
func ParseQuantity(s string) (uint128.Uint128, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return uint128.Zero, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return ToQuantity(d)
}

// ToQuantity converts a stored numeric column to a u128 quantity.
func ToQuantity(d decimal.Decimal) (uint128.Uint128, error) {
	if d.Sign() < 0 || !d.Equal(d.Truncate(0)) {
		return uint128.Zero, fmt.Errorf("%w: %s", ErrInvalidQuantity, d)
	}
	b := d.BigInt()
	if b.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%w: %s overflows 128 bits", ErrInvalidQuantity, d)
	}
	return uint128.FromBig(b), nil
}

// FromQuantity is the inverse of ToQuantity.
func FromQuantity(q uint128.Uint128) decimal.Decimal {
	return decimal.NewFromBigInt(q.Big(), 0)
}

// share returns floor(amount * num / den). den must be positive.
func share(amount, num, den decimal.Decimal) decimal.Decimal {
	q, _ := amount.Mul(num).QuoRem(den, 0)
	return q
}

var bps = decimal.NewFromInt(10000)

func tailValue(s string) (uint128.Uint128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 || b.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%w: tail %q", ErrInvalidQuantity, s)
	}
	return uint128.FromBig(b), nil
}
