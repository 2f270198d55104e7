package lots

import (
	"sort"

	"lukechampine.com/uint128"
)

// Tail is a decimal suffix pattern. It matches every serial whose last
// Length digits equal Value.
type Tail struct {
	Value  uint128.Uint128
	Length uint8
}

// Matches reports whether serial ends with the tail.
func (t Tail) Matches(serial uint128.Uint128) bool {
	return serial.Mod(pow10[t.Length]).Equals(t.Value)
}

// TailSet maps a tail value to its length. No tail in a set is a suffix of
// another, so values are unique across lengths and the matched serial sets
// are pairwise disjoint.
type TailSet map[uint128.Uint128]uint8

// Sorted returns the tails ordered by length, then value.
func (s TailSet) Sorted() []Tail {
	out := make([]Tail, 0, len(s))
	for v, l := range s {
		out = append(out, Tail{Value: v, Length: l})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Length != out[j].Length {
			return out[i].Length < out[j].Length
		}
		return out[i].Value.Cmp(out[j].Value) < 0
	})
	return out
}

// Matches reports whether any tail in s matches serial.
func (s TailSet) Matches(serial uint128.Uint128) bool {
	for v, l := range s {
		if serial.Mod(pow10[l]).Equals(v) {
			return true
		}
	}
	return false
}

// Collides reports whether a tail of the given length and value would share
// serials with a tail already in s.
func (s TailSet) Collides(value uint128.Uint128, length uint8) bool {
	if s.hasSuffixOf(value, length) {
		return true
	}
	for v, l := range s {
		if l > length && v.Mod(pow10[length]).Equals(value) {
			return true
		}
	}
	return false
}

// hasSuffixOf checks only tails no longer than length. It is enough while
// tails are added in non-decreasing length order.
func (s TailSet) hasSuffixOf(value uint128.Uint128, length uint8) bool {
	for l := uint8(1); l <= length; l++ {
		if got, ok := s[value.Mod(pow10[l])]; ok && got == l {
			return true
		}
	}
	return false
}

// CountMatched counts the serials in [lo, hi] matched by s.
func (s TailSet) CountMatched(lo, hi uint128.Uint128) uint128.Uint128 {
	if lo.IsZero() {
		lo = uint128.From64(1)
	}
	if hi.Cmp(lo) < 0 {
		return uint128.Zero
	}
	below := lo.Sub64(1)
	n := uint128.Zero
	for v, l := range s {
		n = n.Add(blockSize(l, v, hi).Sub(blockSize(l, v, below)))
	}
	return n
}

// IsWinner reports whether serial wins under tails. When winning is false
// the tails denote losers and membership is inverted.
func IsWinner(serial uint128.Uint128, tails TailSet, winning bool) bool {
	return tails.Matches(serial) == winning
}

// blockSize counts the serials in [1, total] whose last length digits equal
// value.
func blockSize(length uint8, value, total uint128.Uint128) uint128.Uint128 {
	q, r := total.QuoRem(pow10[length])
	if !value.IsZero() && value.Cmp(r) <= 0 {
		q = q.Add64(1)
	}
	return q
}
