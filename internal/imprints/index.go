package imprints

import (
	"sync/atomic"

	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

const (
	// MaxBins is the largest number of bins, one bit each in a page mask.
	MaxBins = 64

	// PageSize is the number of bytes of column data summarised by one mask.
	PageSize = 64

	// MaxRunCount is the largest count a dictionary entry can carry.
	MaxRunCount = 1<<24 - 1

	// SampleSize is the target number of sampled values used to place bins.
	SampleSize = 2048

	// Version is the on-disk format version.
	Version = 2
)

// Entry is a compressed-dictionary entry: a 24-bit count and a repeat flag.
// A repeat entry covers count consecutive pages sharing one mask; a
// non-repeat entry covers count pages with one mask each.
type Entry uint32

const (
	countMask  = 1<<24 - 1
	repeatFlag = 1 << 24
)

// NewEntry packs count and repeat into an Entry.
func NewEntry(count int, repeat bool) Entry {
	e := Entry(count & countMask)
	if repeat {
		e |= repeatFlag
	}
	return e
}

// Count returns the number of pages the entry covers.
func (e Entry) Count() int {
	return int(e & countMask)
}

// Repeat reports whether all pages of the entry share a single mask.
func (e Entry) Repeat() bool {
	return e&repeatFlag != 0
}

// Masks returns the number of masks the entry consumes.
func (e Entry) Masks() int {
	if e.Repeat() {
		return 1
	}
	return e.Count()
}

// Index is the imprint index of one column: a histogram of at most 64 bins,
// one bit mask per cache-line page, and a run-length dictionary over the
// masks.
type Index[T scalar.Scalar] struct {
	bits  int
	bins  [MaxBins]T
	stats [MaxBins]BinStat

	masks []uint64
	dict  []Entry

	rows   int
	column model.ColumnID

	synced atomic.Bool
}

// BinStat records, per bin, the positions of the smallest and largest
// non-nil value that fell into the bin and how many did.
type BinStat struct {
	MinPos uint64
	MaxPos uint64
	Count  uint64
}

// Bits returns the number of bins: 8, 16, 32 or 64.
func (x *Index[T]) Bits() int {
	return x.bits
}

// Bins returns the bin borders. Bin k holds values in [bins[k], bins[k+1]);
// bin 0 also holds everything below bins[1], including nil.
func (x *Index[T]) Bins() []T {
	return x.bins[:x.bits]
}

// Stat returns the statistics of bin k.
func (x *Index[T]) Stat(k int) BinStat {
	return x.stats[k]
}

// Masks returns the stored page masks.
func (x *Index[T]) Masks() []uint64 {
	return x.masks
}

// Dict returns the dictionary entries.
func (x *Index[T]) Dict() []Entry {
	return x.dict
}

// Rows returns the row count the index was built for.
func (x *Index[T]) Rows() int {
	return x.rows
}

// Column returns the id of the column the index belongs to.
func (x *Index[T]) Column() model.ColumnID {
	return x.column
}

// Synced reports whether the index has been fully written to disk.
func (x *Index[T]) Synced() bool {
	return x.synced.Load()
}

// ValuesPerPage returns the number of values one mask summarises.
func ValuesPerPage[T scalar.Scalar]() int {
	return PageSize / scalar.KindOf[T]().Width()
}

// Pages returns the number of pages the dictionary covers.
func (x *Index[T]) Pages() int {
	n := 0
	for _, e := range x.dict {
		n += e.Count()
	}
	return n
}

// BinOf returns the bin v falls into: the number of borders k in [1, bits)
// with bins[k] <= v. Nil and NaN land in bin 0.
func (x *Index[T]) BinOf(v T) int {
	return binOf(&x.bins, x.bits, v)
}

// Fresh reports whether the index still describes a column of rows rows.
func (x *Index[T]) Fresh(rows int) bool {
	return x.rows == rows
}

// MemBytes returns the in-memory footprint of masks and dictionary.
func (x *Index[T]) MemBytes() int64 {
	return int64(len(x.masks))*8 + int64(len(x.dict))*4
}

// ValueRange returns the smallest and largest non-nil value the index saw,
// read from values at the recorded positions. ok is false when the column
// holds no non-nil value.
func (x *Index[T]) ValueRange(values []T) (lo, hi T, ok bool) {
	first, last := -1, -1
	for k := 0; k < x.bits; k++ {
		if x.stats[k].Count == 0 {
			continue
		}
		if first < 0 {
			first = k
		}
		last = k
	}
	if first < 0 {
		return lo, hi, false
	}
	return values[x.stats[first].MinPos], values[x.stats[last].MaxPos], true
}
