package imprints

import (
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/colsel/scalar"
)

// Sample draws up to n values from values at random, drops nils, and
// returns the distinct survivors in ascending order. Columns no larger than
// n are taken whole.
func Sample[T scalar.Scalar](values []T, n int, rng *rand.Rand) []T {
	var out []T
	if len(values) <= n {
		out = make([]T, 0, len(values))
		for _, v := range values {
			if !scalar.IsNil(v) {
				out = append(out, v)
			}
		}
	} else {
		out = make([]T, 0, n)
		for range n {
			if v := values[rng.IntN(len(values))]; !scalar.IsNil(v) {
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
