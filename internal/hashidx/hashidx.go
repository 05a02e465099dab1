// Package hashidx implements an in-memory value-to-positions hash index over
// a column.
//
// Each bucket holds the most recently inserted position for its hash, and a
// link array chains every position to the previous one in the same bucket.
// Walking a chain therefore yields positions from high to low.
package hashidx

import (
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/colsel/scalar"
)

const none = -1

// Index maps values to the positions holding them.
type Index[T scalar.Scalar] struct {
	mask    uint64
	buckets []int
	links   []int
	values  []T
	unique  int
	count   int
}

// Build indexes all of values. The slice is retained for equality checks.
func Build[T scalar.Scalar](values []T) *Index[T] {
	nb := 1 << max(bits.Len(uint(len(values))), 4)
	h := &Index[T]{
		mask:    uint64(nb - 1),
		buckets: make([]int, nb),
		links:   make([]int, len(values)),
		values:  values,
		count:   len(values),
	}
	for i := range h.buckets {
		h.buckets[i] = none
	}

	width := scalar.KindOf[T]().Width()
	var buf [8]byte
	for pos, v := range values {
		b := Hash(buf[:width], v) & h.mask
		dup := false
		for p := h.buckets[b]; p != none; p = h.links[p] {
			if scalar.Equal(values[p], v) {
				dup = true
				break
			}
		}
		if !dup {
			h.unique++
		}
		h.links[pos] = h.buckets[b]
		h.buckets[b] = pos
	}
	return h
}

// Hash hashes v with xxhash. All nils hash alike and -0 hashes like +0.
// buf must hold the width of T.
func Hash[T scalar.Scalar](buf []byte, v T) uint64 {
	switch {
	case scalar.IsNil(v):
		v = scalar.Nil[T]()
		if scalar.KindOf[T]().IsFloat() {
			// NaN payloads differ; hash a fixed pattern instead.
			return xxhash.Sum64String("nil")
		}
	case v == 0:
		v = 0
	}
	scalar.Put(buf, v)
	return xxhash.Sum64(buf)
}

// Len returns the number of positions the index was built over.
func (h *Index[T]) Len() int {
	return h.count
}

// Unique returns the number of distinct values, nil counting as one.
func (h *Index[T]) Unique() int {
	return h.unique
}

// IsKey reports whether every value is distinct.
func (h *Index[T]) IsKey() bool {
	return h.unique == h.count
}

// AvgChain returns the expected number of positions per distinct value.
func (h *Index[T]) AvgChain() float64 {
	if h.unique == 0 {
		return 0
	}
	return float64(h.count) / float64(h.unique)
}

// Lookup calls fn for every position in [lo, hi) holding v, from the highest
// position to the lowest, until fn returns false.
func (h *Index[T]) Lookup(v T, lo, hi int, fn func(pos int) bool) {
	var buf [8]byte
	b := Hash(buf[:scalar.KindOf[T]().Width()], v) & h.mask
	for p := h.buckets[b]; p != none; p = h.links[p] {
		if p < lo {
			// Chains run high to low.
			return
		}
		if p >= hi || !scalar.Equal(h.values[p], v) {
			continue
		}
		if !fn(p) {
			return
		}
	}
}

// SizeBytes estimates the memory held by the index, excluding the values.
func (h *Index[T]) SizeBytes() int64 {
	return int64(len(h.buckets)+len(h.links)) * bits.UintSize / 8
}
