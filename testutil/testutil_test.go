package testutil

import (
	"math"
	"testing"

	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
	"github.com/stretchr/testify/assert"
)

func TestUniform(t *testing.T) {
	rng := NewRNG(4711)
	v := Uniform[int16](rng, 1000, -10, 10)
	assert.Len(t, v, 1000)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, int16(-10))
		assert.Less(t, x, int16(10))
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := Uniform[float64](rng, 10, 0, 1)
	rng.Reset()
	v2 := Uniform[float64](rng, 10, 0, 1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestSkewed(t *testing.T) {
	rng := NewRNG(1)
	v := Skewed[int32](rng, 10000, 100, 1.5)
	counts := map[int32]int{}
	for _, x := range v {
		assert.GreaterOrEqual(t, x, int32(0))
		assert.Less(t, x, int32(100))
		counts[x]++
	}
	assert.Greater(t, counts[0], counts[50])
}

func TestSprinkleNils(t *testing.T) {
	rng := NewRNG(1)
	v := Ascending[int64](1000, 0, 1)
	SprinkleNils(rng, v, 0.5)
	nils := 0
	for _, x := range v {
		if scalar.IsNil(x) {
			nils++
		}
	}
	assert.InDelta(t, 500, nils, 100)
}

func TestCandidates(t *testing.T) {
	rng := NewRNG(1)
	c := Candidates(rng, 100, 1000, 0.3)
	for i := 1; i < len(c); i++ {
		assert.Less(t, c[i-1], c[i])
	}
	assert.GreaterOrEqual(t, c[0], model.OID(100))
}

func TestNaiveSelect(t *testing.T) {
	nilv := int32(math.MinInt32)
	vals := []int32{nilv, 1, 2, 3, nilv, 5}
	p := func(v int32) *int32 { return &v }

	tests := []struct {
		name       string
		lo         int32
		hi         *int32
		li, hi2    bool
		anti       bool
		nilMatches bool
		want       []model.OID
	}{
		{"nil select", nilv, nil, true, false, false, false, []model.OID{0, 4}},
		{"nil select open", nilv, nil, false, false, false, false, []model.OID{}},
		{"not nil", nilv, nil, true, false, true, false, []model.OID{1, 2, 3, 5}},
		{"nil nil", nilv, p(nilv), false, false, false, false, []model.OID{1, 2, 3, 5}},
		{"nil nil anti", nilv, p(nilv), false, false, true, false, []model.OID{}},
		{"below", nilv, p(3), false, false, false, false, []model.OID{1, 2}},
		{"at most", nilv, p(3), false, true, false, false, []model.OID{1, 2, 3}},
		{"below anti", nilv, p(3), false, false, true, false, []model.OID{3, 5}},
		{"point", 2, nil, true, false, false, false, []model.OID{2}},
		{"point anti", 2, nil, true, false, true, false, []model.OID{1, 3, 5}},
		{"point anti nil matches", 2, nil, true, false, true, true, []model.OID{0, 1, 3, 4, 5}},
		{"open point anti", 2, nil, false, false, true, false, []model.OID{1, 2, 3, 5}},
		{"nil point nil matches", nilv, p(nilv), true, true, false, true, []model.OID{0, 4}},
		{"range", 2, p(5), true, false, false, false, []model.OID{2, 3}},
		{"range anti", 2, p(5), true, false, true, false, []model.OID{1, 5}},
		{"at least", 3, p(nilv), true, false, false, false, []model.OID{3, 5}},
		{"inverted", 5, p(2), true, true, false, false, []model.OID{}},
		{"inverted anti", 5, p(2), true, true, true, false, []model.OID{1, 2, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NaiveSelect(vals, 0, nil, tt.lo, tt.hi, tt.li, tt.hi2, tt.anti, tt.nilMatches)
			assert.Equal(t, tt.want, got)
		})
	}

	got := NaiveSelect(vals, 10, []model.OID{9, 11, 12, 16}, 1, p(5), true, true, false, false)
	assert.Equal(t, []model.OID{11, 12}, got)
}
