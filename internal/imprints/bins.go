package imprints

import "github.com/hupe1980/colsel/scalar"

// Classify derives the bin count and bin borders from a sorted sample of
// distinct non-nil values.
//
// Small samples become the borders directly, with the bin count rounded up
// to 8, 16, 32 or 64 and unused borders set to the type maximum. Larger
// samples are cut into 63 equal steps with the last border at the sample
// maximum.
func Classify[T scalar.Scalar](sample []T) (bits int, bins [MaxBins]T) {
	cnt := len(sample)
	if cnt < MaxBins-1 {
		k := copy(bins[:], sample)
		switch {
		case k < 8:
			bits = 8
		case k < 16:
			bits = 16
		case k < 32:
			bits = 32
		default:
			bits = 64
		}
		maxv := scalar.Max[T]()
		for ; k < MaxBins; k++ {
			bins[k] = maxv
		}
		return bits, bins
	}

	ystep := float64(cnt) / float64(MaxBins-1)
	for k := 0; k < MaxBins-1; k++ {
		bins[k] = sample[int(float64(k)*ystep)]
	}
	bins[MaxBins-1] = sample[cnt-1]
	return MaxBins, bins
}

func binOf[T scalar.Scalar](bins *[MaxBins]T, bits int, v T) int {
	if v != v {
		return 0
	}
	// Count borders bins[1:bits] that are <= v.
	lo, hi := 1, bits
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if bins[mid] <= v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}
