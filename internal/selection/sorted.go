package selection

import (
	"sort"

	"github.com/hupe1980/colsel/candidate"
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// findFirst returns the first position whose value is not before v in the
// column order; findLast the first position whose value is after v.
// Ascending columns order nil first, descending ones nil last.
func findFirst[T scalar.Scalar](values []T, rev bool, v T) int {
	if rev {
		return sort.Search(len(values), func(i int) bool { return scalar.Compare(values[i], v) <= 0 })
	}
	return sort.Search(len(values), func(i int) bool { return scalar.Compare(values[i], v) >= 0 })
}

func findLast[T scalar.Scalar](values []T, rev bool, v T) int {
	if rev {
		return sort.Search(len(values), func(i int) bool { return scalar.Compare(values[i], v) < 0 })
	}
	return sort.Search(len(values), func(i int) bool { return scalar.Compare(values[i], v) > 0 })
}

// denseRank returns how many values of the dense column base, base+1, ...
// of n rows are below v, or at most v when incl is set.
func denseRank[T scalar.Scalar](base T, n int, v T, incl bool) int {
	if v < base {
		return 0
	}
	// Exact for any v >= base, even where v-base overflows int64.
	d := uint64(int64(v)) - uint64(int64(base))
	if d >= uint64(n) {
		return n
	}
	if incl {
		return int(d) + 1
	}
	return int(d)
}

// orderedSelect answers the query with binary searches on a sorted,
// reverse-sorted or dense column, or on an order index.
func (s *selector[T]) orderedSelect(order []int, poidx bool) (candidate.Set, Algo, error) {
	col := s.col
	values := col.Values()
	n := len(values)
	hseq := col.SeqBase()
	low, high := 0, n
	nilv := scalar.Nil[T]()
	var algo Algo

	switch {
	case col.IsDense():
		algo = AlgoDense
		base := col.DenseBase()
		if s.hval {
			high = denseRank(base, n, s.th, s.hi)
		}
		if s.lval {
			low = min(denseRank(base, n, s.tl, !s.li), high)
		}
	case col.Sorted() || col.RevSorted():
		rev := !col.Sorted()
		algo = AlgoSorted
		if rev {
			algo = AlgoRevSorted
		}
		low, high = sortedBounds(values, rev, s.tl, s.th, s.lval, s.hval, s.li, s.hi)
	default:
		algo = AlgoOrderIdx
		if poidx {
			algo = AlgoParentOrderIdx
		}
		res, err := s.orderIndexSelect(order, poidx)
		return res, algo, err
	}

	if s.anti {
		if col.Sorted() {
			first := 0
			if !s.nilMatches {
				first = findLast(values, false, nilv)
			}
			return s.ci.Slice2Val(hseq+model.OID(first), hseq+model.OID(low), hseq+model.OID(high), model.OIDNil), algo, nil
		}
		last := n
		if !s.nilMatches {
			last = findFirst(values, true, nilv)
		}
		return s.ci.Slice2Val(0, hseq+model.OID(low), hseq+model.OID(high), hseq+model.OID(last)), algo, nil
	}
	if low >= high {
		return candidate.Empty(), algo, nil
	}
	return s.ci.SliceVal(hseq+model.OID(low), hseq+model.OID(high)), algo, nil
}

// sortedBounds returns the position range [low, high) of rows matching the
// raw bounds on a monotone column.
func sortedBounds[T scalar.Scalar](values []T, rev bool, tl, th T, lval, hval, li, hi bool) (low, high int) {
	n := len(values)
	nilv := scalar.Nil[T]()
	low, high = 0, n
	if !rev {
		if lval {
			if li {
				low = findFirst(values, false, tl)
			} else {
				low = findLast(values, false, tl)
			}
		} else {
			// Skip the nils at the start.
			low = findLast(values, false, nilv)
		}
		if hval {
			if hi {
				high = findLast(values, false, th)
			} else {
				high = findFirst(values, false, th)
			}
		}
		return low, high
	}
	if lval {
		if li {
			high = findLast(values, true, tl)
		} else {
			high = findFirst(values, true, tl)
		}
	} else {
		// Nils sit at the end.
		high = findFirst(values, true, nilv)
	}
	if hval {
		if hi {
			low = findFirst(values, true, th)
		} else {
			low = findLast(values, true, th)
		}
	}
	return low, high
}

// orderIndexSelect collects the positions between the bounds of the order
// index, restricted to the dense candidate range, and sorts them. With
// poidx the index belongs to the view's parent.
func (s *selector[T]) orderIndexSelect(order []int, poidx bool) (candidate.Set, error) {
	src := s.col
	off := 0
	if poidx {
		src = s.col.Parent()
		off = s.col.Offset()
	}
	values := src.Values()
	at := func(i int) T { return values[order[i]] }
	nilv := scalar.Nil[T]()

	var low, high int
	n := len(order)
	if s.lval {
		if s.li {
			low = sort.Search(n, func(i int) bool { return scalar.Compare(at(i), s.tl) >= 0 })
		} else {
			low = sort.Search(n, func(i int) bool { return scalar.Compare(at(i), s.tl) > 0 })
		}
	} else {
		low = sort.Search(n, func(i int) bool { return scalar.Compare(at(i), nilv) > 0 })
	}
	high = n
	if s.hval {
		if s.hi {
			high = sort.Search(n, func(i int) bool { return scalar.Compare(at(i), s.th) > 0 })
		} else {
			high = sort.Search(n, func(i int) bool { return scalar.Compare(at(i), s.th) >= 0 })
		}
	}
	if low >= high {
		return candidate.Empty(), nil
	}

	hseq := s.col.SeqBase()
	// The candidates are dense, so membership is a position window.
	wl := int(s.ci.First()-hseq) + off
	wh := int(s.ci.Last()-hseq) + off
	size := min(high-low, s.ci.Len())
	b, err := candidate.NewBuilder(size, size, s.env.Resource)
	if err != nil {
		return candidate.Empty(), err
	}
	for _, p := range order[low:high] {
		if wl <= p && p <= wh {
			if err := b.Append(hseq + model.OID(p-off)); err != nil {
				b.Release()
				return candidate.Empty(), err
			}
		}
	}
	// The order index yields positions by value; results go by row.
	b.Sort()
	return b.Finish(), nil
}
