// Package lots selects winning tails: a small set of decimal suffix patterns
// that matches exactly the requested number of serials out of 1..total,
// without enumerating the serials.
package lots

import (
	"fmt"
	"math/big"

	"lukechampine.com/uint128"
)

// DefaultMaxAttempts bounds the random draws spent on a single tail.
const DefaultMaxAttempts = 20000

// RandomSource supplies one pseudorandom 32-bit word per call. Implementations
// are stateful; the salt is mixed into the next value.
type RandomSource interface {
	Next(salt uint32) uint32
}

// Stats describes the work done by one draw.
type Stats struct {
	Rejected    int // random candidates redrawn (out of range or colliding)
	Rollbacks   int // tails discarded because they overshot the target
	Dropped     int // derived tails discarded after collision or range checks
	Replenished int // single-serial tails added to close the shortfall
}

// Result is the outcome of a draw.
type Result struct {
	Tails TailSet
	// Winning is true when Tails denote winners and false when they denote
	// the complement.
	Winning bool
	Digits  uint8
	// Target is the number of serials matched by Tails.
	Target uint128.Uint128
	Total  uint128.Uint128
	Stats  Stats
}

// IsWinner reports whether serial wins this draw.
func (r Result) IsWinner(serial uint128.Uint128) bool {
	return IsWinner(serial, r.Tails, r.Winning)
}

// CountWinners counts the winning serials in [lo, hi].
func (r Result) CountWinners(lo, hi uint128.Uint128) uint128.Uint128 {
	matched := r.Tails.CountMatched(lo, hi)
	if r.Winning {
		return matched
	}
	if lo.IsZero() {
		lo = uint128.From64(1)
	}
	if hi.Cmp(lo) < 0 {
		return uint128.Zero
	}
	return hi.Sub(lo).Add64(1).Sub(matched)
}

// Option configures a Drawer.
type Option func(*Drawer)

// WithMaxAttempts overrides DefaultMaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(d *Drawer) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// Drawer runs draws against one random source. It keeps no state between
// draws apart from what the source keeps; callers sharing a source must
// serialize Draw calls to keep the sequence reproducible.
type Drawer struct {
	src         RandomSource
	maxAttempts int
}

// NewDrawer returns a Drawer over src.
func NewDrawer(src RandomSource, opts ...Option) *Drawer {
	d := &Drawer{src: src, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrawLots is a one-shot Draw with default options.
func DrawLots(src RandomSource, salt uint32, target, total uint128.Uint128) (Result, error) {
	return NewDrawer(src).Draw(salt, target, total)
}

// Draw selects tails matching exactly target of the serials 1..total.
// When target is more than half of total, the tails cover the non-winners
// instead and Result.Winning is false.
func (d *Drawer) Draw(salt uint32, target, total uint128.Uint128) (Result, error) {
	if target.IsZero() || target.Cmp(total) >= 0 {
		return Result{}, ErrInvalidInput
	}
	digits, err := digitsLength(total)
	if err != nil {
		return Result{}, err
	}

	rate, working, winning := winRate(target, total, digits)

	r := &run{
		src:         d.src,
		salt:        salt,
		maxAttempts: d.maxAttempts,
		total:       total,
		target:      working,
		highest:     digits,
		rate:        rateDigits(rate, digits),
		tails:       make(TailSet),
	}

	for p := uint8(1); p <= digits; p++ {
		fa, fb := factors(r.rate[p-1])
		if err := r.placeGroup(p, fa); err != nil {
			return Result{}, err
		}
		if err := r.placeGroup(p, fb); err != nil {
			return Result{}, err
		}
	}
	if err := r.replenish(); err != nil {
		return Result{}, err
	}

	return Result{
		Tails:   r.tails,
		Winning: winning,
		Digits:  digits,
		Target:  working,
		Total:   total,
		Stats:   r.stats,
	}, nil
}

// winRate expresses target/total as a digits-long fixed-point fraction. Above
// one half it switches to the complement so the minority side gets tails.
func winRate(target, total uint128.Uint128, digits uint8) (rate, working uint128.Uint128, winning bool) {
	scaled := new(big.Int).Mul(target.Big(), pow10[digits].Big())
	rate = uint128.FromBig(scaled.Quo(scaled, total.Big()))

	half := pow10[digits-1].Mul64(5)
	if rate.Cmp(half) > 0 {
		return pow10[digits].Sub(rate), total.Sub(target), false
	}
	return rate, target, true
}

// run holds the working state of a single draw.
type run struct {
	src         RandomSource
	salt        uint32
	maxAttempts int

	total   uint128.Uint128
	target  uint128.Uint128
	highest uint8
	rate    []uint8

	tails   TailSet
	matched uint128.Uint128
	stats   Stats
}

func (r *run) String() string {
	return fmt.Sprintf("run{total=%s target=%s matched=%s tails=%d}", r.total, r.target, r.matched, len(r.tails))
}
