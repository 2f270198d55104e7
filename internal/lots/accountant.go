package lots

import "lukechampine.com/uint128"

// account adds the serials matched by a tail of length p to the running
// count and records the tail. A tail that would overshoot the target is
// discarded; below the last position the current rate digit is lowered and
// every longer position is saturated to 9, e.g. 0.2800 becomes 0.2799 when
// the length-2 tail overshoots.
func (r *run) account(p uint8, value uint128.Uint128) {
	size := blockSize(p, value, r.total)
	if size.IsZero() {
		r.stats.Dropped++
		return
	}
	if r.matched.Add(size).Cmp(r.target) > 0 {
		r.stats.Rollbacks++
		if p != r.highest {
			if r.rate[p-1] > 0 {
				r.rate[p-1]--
			}
			for q := p; q < r.highest; q++ {
				r.rate[q] = 9
			}
		}
		return
	}
	r.matched = r.matched.Add(size)
	r.tails[value] = p
}

// replenish closes the remaining shortfall with tails of maximum length.
// Each of them matches exactly one serial since total < 10^highest.
func (r *run) replenish() error {
	for r.matched.Cmp(r.target) < 0 {
		v, err := r.nextTail(r.highest)
		if err != nil {
			return err
		}
		r.tails[v] = r.highest
		r.matched = r.matched.Add64(1)
		r.stats.Replenished++
	}
	return nil
}
