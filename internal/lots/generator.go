package lots

import (
	"fmt"

	"lukechampine.com/uint128"
)

// nextTail draws a free tail of length p. A candidate is redrawn when it is
// above total, when it would match no serial at all, or when a recorded tail
// is a suffix of it.
func (r *run) nextTail(p uint8) (uint128.Uint128, error) {
	mod := pow10[p]
	empty := mod.Cmp(r.total) > 0
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		v := uint128.From64(uint64(r.src.Next(r.salt))).Mod(mod)
		if v.Cmp(r.total) > 0 || (empty && v.IsZero()) || r.tails.hasSuffixOf(v, p) {
			r.stats.Rejected++
			continue
		}
		return v, nil
	}
	return uint128.Zero, fmt.Errorf("%w: no tail of length %d after %d attempts (%s)",
		ErrExhaustedCandidateSpace, p, r.maxAttempts, r)
}

// placeGroup places f evenly spaced tails of length p: one random base tail,
// then f-1 tails obtained by stepping its leading digit by 10/f.
func (r *run) placeGroup(p uint8, f uint8) error {
	if f == 0 {
		return nil
	}
	base, err := r.nextTail(p)
	if err != nil {
		return err
	}
	r.account(p, base)

	mod := pow10[p]
	unit := pow10[p-1]
	step := unit.Mul64(uint64(10 / f))
	for i := uint8(1); i < f; i++ {
		k := i
		if f == 8 && i == 4 {
			// 0,1,2,3,5,6,7,8: the two skipped digits sit five apart
			k = 8
		}
		r.placeDerived(p, base.Add(step.Mul64(uint64(k))).Mod(mod), unit, mod)
	}
	return nil
}

// placeDerived accounts one stepped tail. A colliding tail is shifted by one
// leading-digit unit once; if it still collides or is above total it is
// dropped.
func (r *run) placeDerived(p uint8, tail, unit, mod uint128.Uint128) {
	if r.tails.hasSuffixOf(tail, p) {
		tail = tail.Add(unit).Mod(mod)
		if r.tails.hasSuffixOf(tail, p) {
			r.stats.Dropped++
			return
		}
	}
	if tail.Cmp(r.total) > 0 {
		r.stats.Dropped++
		return
	}
	r.account(p, tail)
}
