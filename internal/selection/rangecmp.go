package selection

import (
	"github.com/hupe1980/colsel/column"
	"github.com/hupe1980/colsel/scalar"
)

// rangeComp classifies a query range against the known value range of a
// column.
type rangeComp int

const (
	// rangeInside means the query lies within the column range, or the
	// column range is unknown.
	rangeInside rangeComp = iota
	// rangeBefore means every column value is above the query range.
	rangeBefore
	// rangeAfter means every column value is below the query range.
	rangeAfter
	// rangeContains means the query range covers every column value.
	rangeContains
	// rangeAtStart means the query covers the low end of the column range.
	rangeAtStart
	// rangeAtEnd means the query covers the high end of the column range.
	rangeAtEnd
)

func (r rangeComp) String() string {
	switch r {
	case rangeBefore:
		return "before"
	case rangeAfter:
		return "after"
	case rangeContains:
		return "contains"
	case rangeAtStart:
		return "atstart"
	case rangeAtEnd:
		return "atend"
	}
	return "inside"
}

// knownRange returns the smallest and largest non-nil value of col. A view
// without positions of its own falls back to its parent's, which bound the
// view's values as well.
func knownRange[T scalar.Scalar](col *column.Column[T]) (minv, maxv T, ok bool) {
	if col.MinPos() >= 0 && col.MaxPos() >= 0 {
		return col.Value(col.MinPos()), col.Value(col.MaxPos()), true
	}
	if p := col.Parent(); p != nil && p.MinPos() >= 0 && p.MaxPos() >= 0 {
		return p.Value(p.MinPos()), p.Value(p.MaxPos()), true
	}
	return minv, maxv, false
}

// compareRange classifies [tl, th] (bounds present per lval and hval,
// inclusive per li and hi) against the column range [minv, maxv].
func compareRange[T scalar.Scalar](tl, th T, lval, hval, li, hi bool, minv, maxv T, known bool) rangeComp {
	if !lval && !hval {
		return rangeContains
	}
	if !known {
		return rangeInside
	}
	if lval {
		if c := scalar.Compare(tl, maxv); c > 0 || (c == 0 && !li) {
			return rangeAfter
		}
	}
	if hval {
		if c := scalar.Compare(th, minv); c < 0 || (c == 0 && !hi) {
			return rangeBefore
		}
	}
	coversLow := true
	if lval {
		c := scalar.Compare(tl, minv)
		coversLow = c < 0 || (c == 0 && li)
	}
	coversHigh := true
	if hval {
		c := scalar.Compare(th, maxv)
		coversHigh = c > 0 || (c == 0 && hi)
	}
	switch {
	case coversLow && coversHigh:
		return rangeContains
	case coversLow:
		return rangeAtStart
	case coversHigh:
		return rangeAtEnd
	}
	return rangeInside
}
