package candidate

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/colsel/model"
)

// Set is an ordered set of row identifiers. It is either dense, a contiguous
// range [first, first+n), or an explicit strictly ascending list.
//
// A Set is immutable. The zero value is the empty set.
type Set struct {
	first model.OID
	n     int
	ids   []model.OID
	list  bool
}

// Empty returns the empty set.
func Empty() Set {
	return Set{}
}

// Dense returns the contiguous set [first, first+n).
func Dense(first model.OID, n int) Set {
	if n <= 0 {
		return Set{}
	}
	return Set{first: first, n: n}
}

// List returns a set over ids, which must be strictly ascending.
// The slice is retained; callers must not modify it afterwards.
func List(ids []model.OID) (Set, error) {
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return Set{}, fmt.Errorf("%w: %v at %d follows %v", ErrUnsorted, ids[i], i, ids[i-1])
		}
	}
	return fromSorted(ids), nil
}

// Of returns a set over the given ids, sorting and deduplicating them.
func Of(ids ...model.OID) Set {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	return fromSorted(slices.Compact(ids))
}

// FromBitmap returns a set holding the members of bm.
func FromBitmap(bm *roaring64.Bitmap) Set {
	if bm == nil || bm.IsEmpty() {
		return Set{}
	}
	raw := bm.ToArray()
	ids := make([]model.OID, len(raw))
	for i, v := range raw {
		ids[i] = model.OID(v)
	}
	return virtualize(ids)
}

func fromSorted(ids []model.OID) Set {
	if len(ids) == 0 {
		return Set{}
	}
	return Set{first: ids[0], n: len(ids), ids: ids, list: true}
}

// virtualize turns a contiguous ascending list into a dense set.
func virtualize(ids []model.OID) Set {
	n := len(ids)
	if n == 0 {
		return Set{}
	}
	if uint64(ids[n-1]-ids[0]) == uint64(n-1) {
		return Dense(ids[0], n)
	}
	return fromSorted(ids)
}

// Len returns the number of members.
func (s Set) Len() int {
	return s.n
}

// IsDense reports whether the set is stored as a contiguous range.
func (s Set) IsDense() bool {
	return !s.list
}

// At returns the i-th smallest member.
func (s Set) At(i int) model.OID {
	if s.list {
		return s.ids[i]
	}
	return s.first + model.OID(i)
}

// First returns the smallest member, or OIDNil for the empty set.
func (s Set) First() model.OID {
	if s.n == 0 {
		return model.OIDNil
	}
	return s.first
}

// Last returns the largest member, or OIDNil for the empty set.
func (s Set) Last() model.OID {
	if s.n == 0 {
		return model.OIDNil
	}
	return s.At(s.n - 1)
}

// Search returns the index of the first member >= o, or Len() if none.
func (s Set) Search(o model.OID) int {
	if s.n == 0 {
		return 0
	}
	if !s.list {
		switch {
		case o <= s.first:
			return 0
		case uint64(o-s.first) >= uint64(s.n):
			return s.n
		default:
			return int(o - s.first)
		}
	}
	return sort.Search(s.n, func(i int) bool { return s.ids[i] >= o })
}

// Contains reports whether o is a member.
func (s Set) Contains(o model.OID) bool {
	i := s.Search(o)
	return i < s.n && s.At(i) == o
}

// Slice returns the members at indexes [i, j).
func (s Set) Slice(i, j int) Set {
	i = max(i, 0)
	j = min(j, s.n)
	if i >= j {
		return Set{}
	}
	if !s.list {
		return Dense(s.first+model.OID(i), j-i)
	}
	return fromSorted(s.ids[i:j])
}

// SliceVal returns the members in [lo, hi). OIDNil as hi means unbounded.
func (s Set) SliceVal(lo, hi model.OID) Set {
	i := s.Search(lo)
	j := s.n
	if hi != model.OIDNil {
		j = s.Search(hi)
	}
	return s.Slice(i, j)
}

// Slice2Val returns the members in [lo1, hi1) together with those in
// [lo2, hi2). The ranges must not overlap and hi1 <= lo2.
func (s Set) Slice2Val(lo1, hi1, lo2, hi2 model.OID) Set {
	a := s.SliceVal(lo1, hi1)
	b := s.SliceVal(lo2, hi2)
	switch {
	case a.n == 0:
		return b
	case b.n == 0:
		return a
	case !a.list && !b.list && a.first+model.OID(a.n) == b.first:
		return Dense(a.first, a.n+b.n)
	}
	ids := make([]model.OID, 0, a.n+b.n)
	ids = a.appendTo(ids)
	ids = b.appendTo(ids)
	return fromSorted(ids)
}

func (s Set) appendTo(dst []model.OID) []model.OID {
	if s.list {
		return append(dst, s.ids...)
	}
	for i := 0; i < s.n; i++ {
		dst = append(dst, s.first+model.OID(i))
	}
	return dst
}

// ToSlice returns the members as a freshly allocated slice.
func (s Set) ToSlice() []model.OID {
	return s.appendTo(make([]model.OID, 0, s.n))
}

// All iterates over the members in ascending order.
func (s Set) All() iter.Seq[model.OID] {
	return func(yield func(model.OID) bool) {
		for i := 0; i < s.n; i++ {
			if !yield(s.At(i)) {
				return
			}
		}
	}
}

// Bitmap returns the members as a roaring bitmap.
func (s Set) Bitmap() *roaring64.Bitmap {
	bm := roaring64.New()
	if s.n == 0 {
		return bm
	}
	if !s.list {
		bm.AddRange(uint64(s.first), uint64(s.first)+uint64(s.n))
		return bm
	}
	for _, o := range s.ids {
		bm.Add(uint64(o))
	}
	return bm
}

// Diff returns the members of s that are not in o.
func (s Set) Diff(o Set) Set {
	if s.n == 0 || o.n == 0 {
		return s
	}
	if o.Last() < s.First() || o.First() > s.Last() {
		return s
	}
	bm := s.Bitmap()
	bm.AndNot(o.Bitmap())
	return FromBitmap(bm)
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(o Set) Set {
	if s.n == 0 || o.n == 0 {
		return Set{}
	}
	if !s.list && !o.list {
		lo := max(s.first, o.first)
		hi := min(s.first+model.OID(s.n), o.first+model.OID(o.n))
		if lo >= hi {
			return Set{}
		}
		return Dense(lo, int(hi-lo))
	}
	bm := s.Bitmap()
	bm.And(o.Bitmap())
	return FromBitmap(bm)
}

// Equal reports whether both sets hold the same members.
func (s Set) Equal(o Set) bool {
	if s.n != o.n {
		return false
	}
	if !s.list && !o.list {
		return s.n == 0 || s.first == o.first
	}
	for i := 0; i < s.n; i++ {
		if s.At(i) != o.At(i) {
			return false
		}
	}
	return true
}

// String renders small sets in full and large ones by their bounds.
func (s Set) String() string {
	switch {
	case s.n == 0:
		return "{}"
	case !s.list:
		return fmt.Sprintf("[%d, %d)", uint64(s.first), uint64(s.first)+uint64(s.n))
	case s.n > 16:
		return fmt.Sprintf("{%d .. %d} (%d)", uint64(s.First()), uint64(s.Last()), s.n)
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, o := range s.ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", uint64(o))
	}
	sb.WriteByte('}')
	return sb.String()
}
