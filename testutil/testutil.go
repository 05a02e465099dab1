package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Uniform returns n values drawn uniformly from [lo, hi).
func Uniform[T scalar.Scalar](r *RNG, n int, lo, hi T) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, n)
	span := float64(hi) - float64(lo)
	for i := range out {
		v := T(float64(lo) + r.rand.Float64()*span)
		if scalar.IsNil(v) {
			v = lo
		}
		out[i] = v
	}
	return out
}

// Ascending returns n values starting at first, each step apart.
func Ascending[T scalar.Scalar](n int, first, step T) []T {
	out := make([]T, n)
	v := first
	for i := range out {
		out[i] = v
		v += step
	}
	return out
}

// Skewed returns n values in [0, distinct) following Zipf's law with skew
// s, so a few values dominate. Heavy duplicates are what the hash and the
// repeat runs of an imprint dictionary are for.
func Skewed[T scalar.Scalar](r *RNG, n, distinct int, s float64) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	cdf := make([]float64, distinct)
	var hns float64
	for k := 1; k <= distinct; k++ {
		hns += 1.0 / math.Pow(float64(k), s)
		cdf[k-1] = hns
	}
	out := make([]T, n)
	for i := range out {
		u := r.rand.Float64() * hns
		k, _ := slices.BinarySearch(cdf, u)
		out[i] = T(min(k, distinct-1))
	}
	return out
}

// Clustered returns n values that stay within a band of width spread
// around a slowly drifting centre, which is how time-correlated columns
// look and where imprints skip most pages.
func Clustered[T scalar.Scalar](r *RNG, n int, spread float64) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, n)
	centre := 0.0
	for i := range out {
		if i%64 == 0 {
			centre += r.rand.Float64()*spread - spread/4
		}
		out[i] = T(centre + r.rand.Float64()*spread)
	}
	return out
}

// SprinkleNils replaces about rate of the values with nil.
func SprinkleNils[T scalar.Scalar](r *RNG, vals []T, rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	nilv := scalar.Nil[T]()
	for i := range vals {
		if r.rand.Float64() < rate {
			vals[i] = nilv
		}
	}
}

// Candidates returns a random ascending subset of [hseq, hseq+n) holding
// about rate of the rows.
func Candidates(r *RNG, hseq model.OID, n int, rate float64) []model.OID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OID
	for i := range n {
		if r.rand.Float64() < rate {
			out = append(out, hseq+model.OID(i))
		}
	}
	return out
}
