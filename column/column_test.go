package column

import (
	"math"
	"testing"

	"github.com/hupe1980/colsel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Properties(t *testing.T) {
	nilv := int32(math.MinInt32)
	tests := []struct {
		name      string
		values    []int32
		sorted    bool
		revsorted bool
		key       bool
		nonil     bool
		minPos    int
		maxPos    int
	}{
		{"empty", nil, true, true, true, true, -1, -1},
		{"ascending", []int32{1, 2, 3}, true, false, true, true, 0, 2},
		{"ascending dups", []int32{1, 2, 2}, true, false, false, true, 0, 1},
		{"descending", []int32{3, 2, 1}, false, true, true, true, 2, 0},
		{"unsorted", []int32{2, 9, 1}, false, false, false, true, 2, 1},
		{"nil first sorts", []int32{nilv, 1, 5}, true, false, true, false, 1, 2},
		{"nil last revsorts", []int32{5, 1, nilv}, false, true, true, false, 1, 0},
		{"all nil", []int32{nilv, nilv}, true, true, false, false, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.values)
			assert.Equal(t, tt.sorted, c.Sorted(), "sorted")
			assert.Equal(t, tt.revsorted, c.RevSorted(), "revsorted")
			assert.Equal(t, tt.key, c.Key(), "key")
			assert.Equal(t, tt.nonil, c.NoNil(), "nonil")
			assert.Equal(t, tt.minPos, c.MinPos(), "minPos")
			assert.Equal(t, tt.maxPos, c.MaxPos(), "maxPos")
		})
	}
}

func TestNew_Options(t *testing.T) {
	c := New([]float64{3, 1, 2}, WithName("prices"), WithSeqBase(100), Persistent(), WithKey())
	assert.Equal(t, "prices", c.Name())
	assert.Equal(t, model.OID(100), c.SeqBase())
	assert.True(t, c.Persistent())
	assert.False(t, c.Dirty())
	assert.True(t, c.Key())

	d := New([]float64{1})
	assert.NotEqual(t, c.ID(), d.ID())
	assert.Contains(t, d.Name(), "col")
}

func TestAppend(t *testing.T) {
	c := New([]int64{1, 2, 3}, Persistent())
	c.BuildHash()
	c.BuildOrderIndex()

	require.NoError(t, c.Append(4, 5))
	assert.True(t, c.Sorted())
	assert.True(t, c.Key())
	assert.True(t, c.Dirty())
	assert.Equal(t, 4, c.MaxPos())
	assert.Nil(t, c.Hash())
	assert.Nil(t, c.OrderIndex())

	require.NoError(t, c.Append(5))
	assert.True(t, c.Sorted())
	assert.False(t, c.Key())

	require.NoError(t, c.Append(math.MinInt64, 0))
	assert.False(t, c.Sorted())
	assert.False(t, c.NoNil())
	assert.Equal(t, 8, c.Len())
	assert.Equal(t, 7, c.MinPos())

	c.MarkClean()
	assert.False(t, c.Dirty())

	assert.Error(t, c.Slice(0, 2).Append(1))
}

func TestDense(t *testing.T) {
	c, err := NewDense[int32](10, 5, WithSeqBase(3))
	require.NoError(t, err)
	assert.True(t, c.IsDense())
	assert.True(t, c.Sorted())
	assert.True(t, c.Key())
	assert.Equal(t, int32(10), c.DenseBase())
	assert.Equal(t, int32(14), c.Value(4))
	assert.Equal(t, []int32{10, 11, 12, 13, 14}, c.Values())
	assert.Error(t, c.Append(15))

	v := c.Slice(2, 4)
	assert.True(t, v.IsDense())
	assert.Equal(t, int32(12), v.DenseBase())
	assert.Equal(t, model.OID(5), v.SeqBase())

	_, err = NewDense[float32](0, 3)
	assert.Error(t, err)
	_, err = NewDense[int8](120, 10)
	assert.Error(t, err)
}

func TestSlice(t *testing.T) {
	nilv := int16(math.MinInt16)
	c := New([]int16{nilv, 1, 4, 4, 9, 12}, WithSeqBase(10), Persistent())

	v := c.Slice(1, 5)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, model.OID(11), v.SeqBase())
	assert.Same(t, c, v.Parent())
	assert.Equal(t, 1, v.Offset())
	assert.True(t, v.Sorted())
	assert.True(t, v.NoNil())
	assert.False(t, v.Persistent())
	assert.Equal(t, 0, v.MinPos())
	assert.Equal(t, 3, v.MaxPos())

	// A view of a view points at the root.
	vv := v.Slice(1, 3)
	assert.Same(t, c, vv.Parent())
	assert.Equal(t, 2, vv.Offset())
	assert.Equal(t, []int16{4, 4}, vv.Values())

	assert.Equal(t, 0, c.Slice(4, 2).Len())
	assert.Equal(t, 2, c.Slice(4, 100).Len())
}

func TestIndexes(t *testing.T) {
	c := New([]float32{3, float32(math.NaN()), 1, 3})

	assert.Nil(t, c.Hash())
	h := c.BuildHash()
	assert.Same(t, h, c.BuildHash())
	assert.Equal(t, 3, h.Unique())
	c.DropHash()
	assert.Nil(t, c.Hash())

	order := c.BuildOrderIndex()
	assert.Equal(t, []int{1, 2, 0, 3}, order)
	assert.Equal(t, order, c.OrderIndex())
}

func TestSelectCount(t *testing.T) {
	c := New([]int8{1})
	assert.Equal(t, int32(1), c.SelectCount())
	assert.Equal(t, int32(2), c.SelectCount())
}
