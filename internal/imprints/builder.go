package imprints

import (
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// Build constructs the imprint index of values with bins derived from
// sample (see Sample and Classify).
func Build[T scalar.Scalar](values []T, sample []T, column model.ColumnID) *Index[T] {
	x := &Index[T]{rows: len(values), column: column}
	x.bits, x.bins = Classify(sample)

	vpp := ValuesPerPage[T]()
	var w dictWriter
	for start := 0; start < len(values); start += vpp {
		end := min(start+vpp, len(values))
		var mask uint64
		for i := start; i < end; i++ {
			v := values[i]
			b := binOf(&x.bins, x.bits, v)
			mask |= 1 << b
			if !scalar.IsNil(v) {
				x.observe(b, i, values)
			}
		}
		w.add(mask)
	}
	w.flush()
	x.masks, x.dict = w.masks, w.dict
	return x
}

func (x *Index[T]) observe(b, pos int, values []T) {
	st := &x.stats[b]
	p := uint64(pos)
	if st.Count == 0 {
		st.MinPos, st.MaxPos = p, p
	} else {
		if values[pos] < values[st.MinPos] {
			st.MinPos = p
		}
		if values[pos] > values[st.MaxPos] {
			st.MaxPos = p
		}
	}
	st.Count++
}

// dictWriter run-length encodes a stream of page masks. Equal consecutive
// masks collapse into a repeat entry; single pages are appended to the
// trailing non-repeat entry.
type dictWriter struct {
	masks []uint64
	dict  []Entry

	pending uint64
	run     int
}

func (w *dictWriter) add(mask uint64) {
	if w.run > 0 && mask == w.pending && w.run < MaxRunCount {
		w.run++
		return
	}
	w.flush()
	w.pending, w.run = mask, 1
}

func (w *dictWriter) flush() {
	switch {
	case w.run == 0:
		return
	case w.run == 1:
		if n := len(w.dict); n > 0 && !w.dict[n-1].Repeat() && w.dict[n-1].Count() < MaxRunCount {
			w.dict[n-1]++
		} else {
			w.dict = append(w.dict, NewEntry(1, false))
		}
	default:
		w.dict = append(w.dict, NewEntry(w.run, true))
	}
	w.masks = append(w.masks, w.pending)
	w.run = 0
}
