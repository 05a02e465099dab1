package selection

import "github.com/hupe1980/colsel/scalar"

// bounds is a normalized range. Without anti it selects vl <= x <= vh;
// with anti it selects x <= vl || x >= vh. Both bounds are always set.
type bounds[T scalar.Scalar] struct {
	vl, vh T
	anti   bool
}

// normalize turns a range with open, closed or missing bounds into closed
// bounds, possibly clearing anti. lval and hval report whether the low and
// high bound take part in the comparison. ok is false when the range is
// provably empty.
func normalize[T scalar.Scalar](vl, vh T, li, hi, lval, hval, anti bool) (b bounds[T], ok bool) {
	minv, maxv := scalar.Min[T](), scalar.Max[T]()

	// x < vl is x <= prev(vl), and x > vh is x >= next(vh).
	if anti && li {
		if vl == minv {
			// Nothing lies below the minimum, so only the upper part is left.
			anti = false
			vl = vh
			li = !hi
			hval = false
		} else {
			vl = scalar.Prev(vl)
			li = false
		}
	}
	if anti && hi {
		if vh == maxv {
			anti = false
			vh = vl
			hi = !li
			lval = false
		} else {
			vh = scalar.Next(vh)
			hi = false
		}
	}

	if !anti {
		if lval {
			if !li {
				if vl == maxv {
					return b, false
				}
				vl = scalar.Next(vl)
			}
		} else {
			vl = minv
		}
		if hval {
			if !hi {
				if vh == minv {
					return b, false
				}
				vh = scalar.Prev(vh)
			}
		} else {
			vh = maxv
		}
		if vl > vh {
			return b, false
		}
	}
	return bounds[T]{vl: vl, vh: vh, anti: anti}, true
}

// matcher returns the value test of a normalized range. Nil rows match
// only when nilMatches is set.
func (b bounds[T]) matcher(nonil, nilMatches bool) func(T) bool {
	m := b.test(nonil)
	if nilMatches && !nonil {
		return func(v T) bool { return scalar.IsNil(v) || m(v) }
	}
	return m
}

// test returns a test that never accepts nil.
func (b bounds[T]) test(nonil bool) func(T) bool {
	vl, vh := b.vl, b.vh
	switch {
	case b.anti && nonil:
		return func(v T) bool { return v <= vl || v >= vh }
	case b.anti:
		return func(v T) bool { return !scalar.IsNil(v) && (v <= vl || v >= vh) }
	case nonil && vl == scalar.Min[T]():
		return func(v T) bool { return v <= vh }
	case vh == scalar.Max[T]():
		// vl is at least the non-nil minimum, so nil fails the test.
		return func(v T) bool { return v >= vl }
	}
	return func(v T) bool { return v >= vl && v <= vh }
}

// pointMatcher returns the test of an equality select.
func pointMatcher[T scalar.Scalar](v T, lnil bool) func(T) bool {
	if lnil {
		return scalar.IsNil[T]
	}
	return func(x T) bool { return x == v }
}
