package imprints

import (
	"bytes"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		wantBits int
	}{
		{"empty", 0, 8},
		{"tiny", 5, 8},
		{"eight", 8, 16},
		{"sixteen", 16, 32},
		{"forty", 40, 64},
		{"sixty-two", 62, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := make([]int32, tt.n)
			for i := range sample {
				sample[i] = int32(i * 10)
			}
			bits, bins := Classify(sample)
			assert.Equal(t, tt.wantBits, bits)
			for i := 0; i < tt.n; i++ {
				assert.Equal(t, sample[i], bins[i])
			}
			for i := tt.n; i < MaxBins; i++ {
				assert.Equal(t, int32(math.MaxInt32), bins[i])
			}
		})
	}
}

func TestClassify_LargeSample(t *testing.T) {
	sample := make([]float64, 1000)
	for i := range sample {
		sample[i] = float64(i)
	}
	bits, bins := Classify(sample)
	assert.Equal(t, 64, bits)
	assert.Equal(t, 0.0, bins[0])
	assert.Equal(t, sample[158], bins[10])
	assert.Equal(t, 999.0, bins[63])
	for k := 1; k < MaxBins; k++ {
		assert.LessOrEqual(t, bins[k-1], bins[k])
	}
}

func TestBinOf(t *testing.T) {
	bits, bins := Classify([]float64{10, 20, 30})
	require.Equal(t, 8, bits)

	tests := []struct {
		v    float64
		want int
	}{
		{math.NaN(), 0},
		{math.Inf(-1), 0},
		{5, 0},
		{10, 0},
		{19.9, 0},
		{20, 1},
		{29, 1},
		{30, 2},
		{1e9, 2},
		{math.Inf(1), 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, binOf(&bins, bits, tt.v), "value %v", tt.v)
	}

	// Integer nil sorts below every border.
	ibits, ibins := Classify([]int16{-5, 0, 5})
	assert.Equal(t, 0, binOf(&ibins, ibits, scalar.Nil[int16]()))
}

func TestSample(t *testing.T) {
	vals := []int32{5, math.MinInt32, 3, 5, 1, math.MinInt32}
	assert.Equal(t, []int32{1, 3, 5}, Sample(vals, 100, nil))

	big := make([]float64, 10000)
	for i := range big {
		big[i] = float64(i % 500)
	}
	big[7] = math.NaN()
	s := Sample(big, SampleSize, rand.New(rand.NewPCG(1, 2)))
	assert.NotEmpty(t, s)
	assert.LessOrEqual(t, len(s), 500)
	for i := 1; i < len(s); i++ {
		assert.Less(t, s[i-1], s[i])
	}
	for _, v := range s {
		assert.False(t, math.IsNaN(v))
	}
}

func checkInvariants[T scalar.Scalar](t *testing.T, x *Index[T], values []T) {
	t.Helper()
	vpp := ValuesPerPage[T]()
	pages := (len(values) + vpp - 1) / vpp
	assert.Equal(t, pages, x.Pages())

	masks := 0
	for _, e := range x.Dict() {
		assert.Greater(t, e.Count(), 0)
		assert.LessOrEqual(t, e.Count(), MaxRunCount)
		masks += e.Masks()
	}
	assert.Equal(t, len(x.Masks()), masks)

	// Every value's bin is set in the mask of its page.
	page, mi := 0, 0
	for _, e := range x.Dict() {
		for c := 0; c < e.Count(); c++ {
			m := x.Masks()[mi]
			for i := page * vpp; i < min((page+1)*vpp, len(values)); i++ {
				bit := uint64(1) << x.BinOf(values[i])
				require.NotZero(t, m&bit, "page %d value %v", page, values[i])
			}
			page++
			if !e.Repeat() {
				mi++
			}
		}
		if e.Repeat() {
			mi++
		}
	}
}

func TestBuild_Random(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	values := make([]int32, 5000)
	for i := range values {
		values[i] = int32(rng.IntN(1000)) - 500
		if i%97 == 0 {
			values[i] = scalar.Nil[int32]()
		}
	}
	x := Build(values, Sample(values, SampleSize, rng), 1)
	assert.Equal(t, 64, x.Bits())
	assert.Equal(t, 5000, x.Rows())
	assert.Equal(t, model.ColumnID(1), x.Column())
	checkInvariants(t, x, values)

	lo, hi, ok := x.ValueRange(values)
	require.True(t, ok)
	wantLo, wantHi := int32(math.MaxInt32), int32(math.MinInt32+1)
	for _, v := range values {
		if !scalar.IsNil(v) {
			wantLo, wantHi = min(wantLo, v), max(wantHi, v)
		}
	}
	assert.Equal(t, wantLo, lo)
	assert.Equal(t, wantHi, hi)
}

func TestBuild_RepeatRuns(t *testing.T) {
	values := make([]int32, 1000)
	for i := range values {
		values[i] = 42
	}
	x := Build(values, Sample(values, SampleSize, nil), 1)
	// 1000 int32 values fill 63 pages of 16.
	require.Len(t, x.Dict(), 1)
	assert.True(t, x.Dict()[0].Repeat())
	assert.Equal(t, 63, x.Dict()[0].Count())
	assert.Len(t, x.Masks(), 1)
	checkInvariants(t, x, values)
}

func TestBuild_MixedRuns(t *testing.T) {
	// Pages of int64 hold 8 values: two distinct pages, then a run of three.
	values := make([]int64, 0, 40)
	for i := 0; i < 8; i++ {
		values = append(values, 1)
	}
	for i := 0; i < 8; i++ {
		values = append(values, 100)
	}
	for i := 0; i < 24; i++ {
		values = append(values, 50)
	}
	x := Build(values, []int64{1, 50, 100}, 1)

	require.Len(t, x.Dict(), 2)
	assert.False(t, x.Dict()[0].Repeat())
	assert.Equal(t, 2, x.Dict()[0].Count())
	assert.True(t, x.Dict()[1].Repeat())
	assert.Equal(t, 3, x.Dict()[1].Count())
	assert.Equal(t, []uint64{1 << 0, 1 << 2, 1 << 1}, x.Masks())
	checkInvariants(t, x, values)
}

func TestDictWriter_SplitsLongRuns(t *testing.T) {
	var w dictWriter
	for i := 0; i < MaxRunCount+5; i++ {
		w.add(3)
	}
	w.flush()
	require.Len(t, w.dict, 2)
	assert.Equal(t, MaxRunCount, w.dict[0].Count())
	assert.True(t, w.dict[0].Repeat())
	assert.Equal(t, 5, w.dict[1].Count())
	assert.Equal(t, []uint64{3, 3}, w.masks)
}

func TestBuild_AllNil(t *testing.T) {
	values := []float32{float32(math.NaN()), float32(math.NaN())}
	x := Build(values, Sample(values, SampleSize, nil), 9)
	_, _, ok := x.ValueRange(values)
	assert.False(t, ok)
	assert.Equal(t, []uint64{1}, x.Masks())
}

func TestEncodeDecode(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	values := make([]int16, 3000)
	for i := range values {
		values[i] = int16(i / 100)
		if rng.IntN(10) == 0 {
			values[i] = int16(rng.IntN(30))
		}
	}
	x := Build(values, Sample(values, SampleSize, rng), 4)

	var buf bytes.Buffer
	n, err := Encode(&buf, x, true)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, x.Header(true).FileSize(), n)

	y, err := Decode[int16](buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, x.Bits(), y.Bits())
	assert.Equal(t, x.Bins(), y.Bins())
	assert.Equal(t, x.Masks(), y.Masks())
	assert.Equal(t, x.Dict(), y.Dict())
	assert.Equal(t, x.Rows(), y.Rows())
	for k := 0; k < MaxBins; k++ {
		assert.Equal(t, x.Stat(k), y.Stat(k))
	}
}

func TestDecode_Errors(t *testing.T) {
	values := []int32{1, 2, 3, 4, 5}
	x := Build(values, values, 1)

	var synced, unsynced bytes.Buffer
	_, err := Encode(&synced, x, true)
	require.NoError(t, err)
	_, err = Encode(&unsynced, x, false)
	require.NoError(t, err)

	_, err = Decode[int32](unsynced.Bytes())
	assert.ErrorIs(t, err, ErrNotSynced)

	_, err = Decode[int32](synced.Bytes()[:synced.Len()-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Decode[int32](synced.Bytes()[:10])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Decode[float32](synced.Bytes())
	assert.ErrorIs(t, err, ErrKind)

	bad := bytes.Clone(synced.Bytes())
	h, err := ReadHeader(bad)
	require.NoError(t, err)
	h.Version = 1
	copy(bad, h.encode())
	_, err = Decode[int32](bad)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestFormat(t *testing.T) {
	values := make([]int64, 0, 32)
	for i := 0; i < 8; i++ {
		values = append(values, 1)
	}
	for i := 0; i < 24; i++ {
		values = append(values, 100)
	}
	x := Build(values, []int64{1, 100}, 1)

	var sb strings.Builder
	require.NoError(t, x.Format(&sb))
	want := "bits = 8, impcnt = 2, dictcnt = 2\n" +
		"[ 1 ]  x.......\n" +
		"[ 5 ]r .x......\n"
	assert.Equal(t, want, sb.String())
}
