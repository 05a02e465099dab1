package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	const minv, maxv = math.MinInt32 + 1, math.MaxInt32

	tests := []struct {
		name               string
		vl, vh             int32
		li, hi, lval, hval bool
		anti               bool
		ok                 bool
		wantL, wantH       int32
		wantAnti           bool
	}{
		{"closed", 3, 7, true, true, true, true, false, true, 3, 7, false},
		{"open", 3, 7, false, false, true, true, false, true, 4, 6, false},
		{"no low", 0, 7, false, true, false, true, false, true, minv, 7, false},
		{"no high", 3, 0, true, false, true, false, false, true, 3, maxv, false},
		{"open at max", maxv, 0, false, false, true, false, false, false, 0, 0, false},
		{"open at min", 0, minv, false, false, false, true, false, false, 0, 0, false},
		{"open point", 5, 5, false, false, true, true, false, false, 0, 0, false},
		{"anti closed", 3, 7, true, true, true, true, true, true, 2, 8, true},
		{"anti open", 3, 7, false, false, true, true, true, true, 3, 7, true},
		{"anti from min", minv, 7, true, true, true, true, true, true, 8, maxv, false},
		{"anti to max", 3, maxv, true, true, true, true, true, true, minv, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := normalize(tt.vl, tt.vh, tt.li, tt.hi, tt.lval, tt.hval, tt.anti)
			assert.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantL, b.vl)
			assert.Equal(t, tt.wantH, b.vh)
			assert.Equal(t, tt.wantAnti, b.anti)
		})
	}
}

func TestNormalize_Float(t *testing.T) {
	b, ok := normalize(1.0, 2.0, false, false, true, true, false)
	assert.True(t, ok)
	assert.Equal(t, math.Nextafter(1, math.Inf(1)), b.vl)
	assert.Equal(t, math.Nextafter(2, math.Inf(-1)), b.vh)

	// Unbounded float ranges reach the infinities.
	b, ok = normalize(0.0, 5.0, false, true, false, true, false)
	assert.True(t, ok)
	assert.True(t, math.IsInf(b.vl, -1))
}

func TestMatcher(t *testing.T) {
	nilv := int32(math.MinInt32)

	in := bounds[int32]{vl: 3, vh: 7}
	assert.True(t, in.matcher(false, false)(3))
	assert.True(t, in.matcher(false, false)(7))
	assert.False(t, in.matcher(false, false)(8))
	assert.False(t, in.matcher(false, false)(nilv))

	out := bounds[int32]{vl: 3, vh: 7, anti: true}
	assert.True(t, out.matcher(false, false)(3))
	assert.False(t, out.matcher(false, false)(5))
	assert.False(t, out.matcher(false, false)(nilv))
	assert.True(t, out.matcher(false, true)(nilv))

	nan := math.NaN()
	f := bounds[float64]{vl: math.Inf(-1), vh: math.Inf(1)}
	assert.True(t, f.matcher(false, false)(math.Inf(1)))
	assert.False(t, f.matcher(false, false)(nan))

	assert.True(t, pointMatcher(nilv, true)(nilv))
	assert.False(t, pointMatcher(int32(4), false)(nilv))
}
