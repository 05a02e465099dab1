package testutil

import (
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// NaiveSelect is the reference range selection: a linear scan that applies
// the predicate literally to every candidate. cand nil means all rows of
// vals, whose first row has OID hseq. hi nil is a point select on lo.
//
// A nil lo with hi set means no lower bound, a nil hi no upper bound. A nil
// lo without hi selects the nil rows. nilMatches makes nil an ordinary
// value for point selects.
func NaiveSelect[T scalar.Scalar](vals []T, hseq model.OID, cand []model.OID, lo T, hi *T, li, hincl, anti, nilMatches bool) []model.OID {
	match := predicate(lo, hi, li, hincl, anti, nilMatches)
	out := []model.OID{}
	if cand == nil {
		for i, v := range vals {
			if match(v) {
				out = append(out, hseq+model.OID(i))
			}
		}
		return out
	}
	for _, o := range cand {
		if o < hseq || uint64(o-hseq) >= uint64(len(vals)) {
			continue
		}
		if match(vals[o-hseq]) {
			out = append(out, o)
		}
	}
	return out
}

func predicate[T scalar.Scalar](tl T, th *T, li, hi, anti, nilMatches bool) func(T) bool {
	lnil := scalar.IsNil(tl)
	point := th == nil ||
		(!lnil && scalar.Equal(tl, *th)) ||
		(lnil && nilMatches && scalar.IsNil(*th))

	if point {
		incl := li
		if th != nil {
			incl = li && hi
		}
		if lnil && !nilMatches {
			if anti {
				return func(v T) bool { return !scalar.IsNil(v) }
			}
			return func(v T) bool { return incl && scalar.IsNil(v) }
		}
		if !anti {
			return func(v T) bool { return incl && scalar.Equal(v, tl) }
		}
		return func(v T) bool {
			if scalar.IsNil(v) && !nilMatches {
				return false
			}
			return !incl || !scalar.Equal(v, tl)
		}
	}

	hnil := scalar.IsNil(*th)
	vh := *th
	if lnil && hnil {
		return func(v T) bool { return !anti && !scalar.IsNil(v) }
	}
	return func(v T) bool {
		if scalar.IsNil(v) {
			return false
		}
		inLo := lnil || v > tl || (li && v == tl)
		inHi := hnil || v < vh || (hi && v == vh)
		return (inLo && inHi) != anti
	}
}
