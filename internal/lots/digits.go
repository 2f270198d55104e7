package lots

import (
	"fmt"

	"lukechampine.com/uint128"
)

// MaxDigits is the longest total quantity (in decimal digits) a draw accepts.
// 10^39 does not fit in 128 bits.
const MaxDigits = 38

var pow10 [MaxDigits + 1]uint128.Uint128

func init() {
	pow10[0] = uint128.From64(1)
	for i := 1; i < len(pow10); i++ {
		pow10[i] = pow10[i-1].Mul64(10)
	}
}

// Pow10 returns 10^n for n in [0, MaxDigits].
func Pow10(n uint8) uint128.Uint128 {
	return pow10[n]
}

// digitsLength counts the decimal digits of n.
func digitsLength(n uint128.Uint128) (uint8, error) {
	var length uint8
	for !n.IsZero() {
		length++
		n = n.Div64(10)
	}
	if length == 0 {
		return 0, fmt.Errorf("%w: total quantity is 0", ErrInvalidInput)
	}
	if length > MaxDigits {
		return 0, fmt.Errorf("%w: total quantity has %d digits, max %d", ErrInvalidInput, length, MaxDigits)
	}
	return length, nil
}

// factors splits a rate digit into at most two evenly spaced tail groups.
// A group of f tails at one position covers f/10 of that position's weight,
// so 7 is realized as 5+2 and 4 as 2+2. A zero factor places nothing.
func factors(digit uint8) (uint8, uint8) {
	switch digit {
	case 3:
		return 2, 1
	case 4:
		return 2, 2
	case 6:
		return 5, 1
	case 7:
		return 5, 2
	default:
		return digit, 0
	}
}

// rateDigits returns the d fractional digits of rate / 10^d, tenths first:
// index p-1 holds the digit consumed by tails of length p.
func rateDigits(rate uint128.Uint128, d uint8) []uint8 {
	out := make([]uint8, d)
	for p := uint8(1); p <= d; p++ {
		out[p-1] = uint8(rate.Div(pow10[d-p]).Mod64(10))
	}
	return out
}
