package selection

import (
	"github.com/hupe1980/colsel/candidate"
	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// binRange returns a mask with bits lo through hi set.
func binRange(lo, hi int) uint64 {
	if lo > hi {
		return 0
	}
	return (^uint64(0) >> (63 - hi)) &^ (uint64(1)<<lo - 1)
}

// imprintMasks returns the bins that may hold a match and the bins whose
// every non-nil value matches.
func imprintMasks[T scalar.Scalar](x *imprints.Index[T], b bounds[T], nonil bool) (mask, innermask uint64) {
	lbin, hbin := x.BinOf(b.vl), x.BinOf(b.vh)
	mask = binRange(lbin, hbin)
	if b.anti {
		// Bins strictly between the boundary bins hold values in
		// (vl, vh) only, so they never match; bins outside the
		// boundary bins always do.
		mask, innermask = ^binRange(lbin+1, hbin-1), ^mask
	} else {
		innermask = mask
		if b.vl != scalar.Min[T]() {
			innermask &^= 1 << lbin
		}
		if b.vh != scalar.Max[T]() {
			innermask &^= 1 << hbin
		}
	}
	if !nonil {
		// Nils land in bin 0 and never match a range.
		innermask &^= 1
	}
	return mask, innermask
}

// imprintScan answers a range query with the imprint index x of the
// column's root. Pages whose mask misses the query are skipped, pages
// fully inside it are emitted without reading values, and the rest are
// tested value by value.
func (s *selector[T]) imprintScan(x *imprints.Index[T], b bounds[T], match func(T) bool, estimate, maximum int) (candidate.Set, Algo, error) {
	root := s.col
	off := 0
	if p := s.col.Parent(); p != nil {
		root, off = p, s.col.Offset()
	}
	values := root.Values()
	nonil := s.col.NoNil()

	if lo, hi, ok := x.ValueRange(values); !ok {
		return candidate.Empty(), AlgoImprintsStats, nil
	} else if !b.anti && (b.vh < lo || b.vl > hi) {
		return candidate.Empty(), AlgoImprintsStats, nil
	} else if b.anti && b.vl < lo && b.vh > hi {
		return candidate.Empty(), AlgoImprintsStats, nil
	}

	mask, innermask := imprintMasks(x, b, nonil)

	out, err := candidate.NewBuilder(estimate, maximum, s.env.Resource)
	if err != nil {
		return candidate.Empty(), AlgoImprints, err
	}

	hseq := s.col.SeqBase()
	vpp := imprints.ValuesPerPage[T]()
	it := s.ci.Iter()
	// oidAt maps a root position to the view's OID space.
	oidAt := func(p int) model.OID { return hseq + model.OID(p-off) }

	// page scans the candidates in root positions [start, stop) under m.
	page := func(m uint64, stop int) error {
		end := oidAt(stop)
		switch {
		case m&mask == 0:
			it.Advance(end)
		case m&^innermask == 0:
			for o, ok := it.Peek(); ok && o < end; o, ok = it.Peek() {
				it.Next()
				if err := out.AppendAt(o, it.Pos()); err != nil {
					return err
				}
			}
		default:
			for o, ok := it.Peek(); ok && o < end; o, ok = it.Peek() {
				it.Next()
				if match(values[int(o-hseq)+off]) {
					if err := out.AppendAt(o, it.Pos()); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	masks := x.Masks()
	mi, pg := 0, 0
	for _, e := range x.Dict() {
		o, ok := it.Peek()
		if !ok {
			break
		}
		next := int(o-hseq) + off
		cnt := e.Count()
		if stop := (pg + cnt) * vpp; next >= stop {
			// No candidate falls in this entry.
			pg += cnt
			mi += e.Masks()
			continue
		}
		if e.Repeat() {
			err = page(masks[mi], (pg+cnt)*vpp)
			mi++
			pg += cnt
		} else {
			for range cnt {
				if o, ok = it.Peek(); !ok {
					break
				}
				if int(o-hseq)+off < (pg+1)*vpp {
					if err = page(masks[mi], (pg+1)*vpp); err != nil {
						break
					}
				}
				mi++
				pg++
			}
		}
		if err != nil {
			out.Release()
			return candidate.Empty(), AlgoImprints, err
		}
	}
	return out.Finish(), AlgoImprints, nil
}
