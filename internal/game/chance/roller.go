package chance

import "time"

// Pick selects one Option with probability proportional to its Weight.
// Options with non-positive weights are never selected.
//
// Precondition: src must be non-nil.
// Postcondition: Returns (tag, true) for a positive-weight option, or ("", false)
// when no option has a positive weight.
func Pick(src Source, opts []Option) (string, bool) {
	var total float64
	for _, o := range opts {
		if o.Weight > 0 {
			total += o.Weight
		}
	}
	if total <= 0 {
		return "", false
	}

	r := src.Float64() * total
	last := ""
	for _, o := range opts {
		if o.Weight <= 0 {
			continue
		}
		last = o.Tag
		if r < o.Weight {
			return o.Tag, true
		}
		r -= o.Weight
	}
	// Rounding can leave r a hair above the final cumulative weight.
	return last, true
}

// Between returns a duration sampled uniformly from [lo, hi).
//
// Postcondition: lo <= result < hi when hi > lo; result == lo otherwise.
func Between(src Source, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(src.Float64()*float64(hi-lo))
}

// Chance reports true with probability p.
//
// Postcondition: always false for p <= 0 and always true for p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
