package selection

import (
	"github.com/hupe1980/colsel/scalar"
)

const (
	// defaultSampleThreshold is the candidate count above which result
	// sizes are estimated by sampling.
	defaultSampleThreshold = 10000

	// sampleDelta is half the width of each of the three sampled slices.
	sampleDelta = 1000 / 3 / 2

	// defaultEstimate sizes the result buffer when nothing better is known.
	defaultEstimate = 1000000
)

// keyRangeCount returns the number of integers in the range, which bounds
// the result of a range select on a key column. ok is false for floats and
// when the count does not fit.
func keyRangeCount[T scalar.Scalar](tl, th T, li, hi bool) (int, bool) {
	if scalar.KindOf[T]().IsFloat() || th < tl {
		return 0, false
	}
	d := uint64(int64(th)) - uint64(int64(tl))
	if d >= 1<<62 {
		return 0, false
	}
	n := int(d) + 1
	if !li {
		n--
	}
	if !hi {
		n--
	}
	return max(n, 0), true
}

// sampleEstimate runs the query on three slices of about 333 rows at the
// start, middle and end of the column and extrapolates the hit rate with a
// 10% margin. A sample without hits yields an estimate low enough to favour
// the hash.
func (s *selector[T]) sampleEstimate() (int, bool) {
	n := s.col.Len()
	ncand := s.ci.Len()
	skip := (n - 2*sampleDelta) / 2
	if skip <= 0 {
		return 0, false
	}
	smpl, slct := 0, 0
	for pos := sampleDelta; pos < n; pos += skip {
		view := s.col.Slice(pos-sampleDelta, pos+sampleDelta)
		res, err := run(s.ctx, s.env, view, nil, s.q, true)
		if err != nil {
			continue
		}
		smpl += view.Len()
		slct += res.Set.Len()
	}
	switch {
	case smpl > 0 && slct > 0:
		return int(float64(slct) / float64(smpl) * float64(n) * 1.1), true
	case smpl > 0:
		return ncand/100 - 1, true
	}
	return 0, false
}
