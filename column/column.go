package column

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/colsel/internal/hashidx"
	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

var nextID atomic.Uint64

// Column is a fixed-width numeric column with its derived properties and
// attached secondary indexes.
//
// A column is either materialised, dense (value i is base+i; the values
// are materialised too, but selections compute positions from base and
// never build imprints), or a view: a window onto another column's values
// that shares the parent's indexes.
//
// Selections may run concurrently. Append must not run concurrently with
// selections on the same column.
type Column[T scalar.Scalar] struct {
	id    model.ColumnID
	name  string
	hseq  model.OID
	kind  scalar.Kind
	dense bool
	base  T

	values []T

	parent *Column[T]
	offset int

	sorted     bool
	revsorted  bool
	key        bool
	nonil      bool
	minPos     int
	maxPos     int
	persistent bool
	dirty      bool

	imprints imprints.Slot[T]

	hashMu sync.Mutex
	hash   *hashidx.Index[T]

	orderMu sync.Mutex
	order   []int

	selcnt atomic.Int32
}

// Option configures a new column.
type Option func(*options)

type options struct {
	name       string
	hseq       model.OID
	persistent bool
	key        bool
}

// WithName sets the physical name, the stem of the column's imprint file.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithSeqBase sets the OID of the first row.
func WithSeqBase(hseq model.OID) Option {
	return func(o *options) {
		o.hseq = hseq
	}
}

// Persistent marks the column as durable and clean, which makes its imprint
// index eligible for write-back.
func Persistent() Option {
	return func(o *options) {
		o.persistent = true
	}
}

// WithKey asserts that all values are distinct.
func WithKey() Option {
	return func(o *options) {
		o.key = true
	}
}

func newColumn[T scalar.Scalar](optFns []Option) *Column[T] {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	id := model.ColumnID(nextID.Add(1))
	if o.name == "" {
		o.name = fmt.Sprintf("col%d", id)
	}
	return &Column[T]{
		id:         id,
		name:       o.name,
		hseq:       o.hseq,
		kind:       scalar.KindOf[T](),
		persistent: o.persistent,
		key:        o.key,
		minPos:     -1,
		maxPos:     -1,
	}
}

// New returns a column over values. The slice is retained.
func New[T scalar.Scalar](values []T, optFns ...Option) *Column[T] {
	c := newColumn[T](optFns)
	c.values = values
	c.derive()
	return c
}

// NewDense returns a virtual column of n rows whose value i is base+i.
// Dense columns are only defined for integer types.
func NewDense[T scalar.Scalar](base T, n int, optFns ...Option) (*Column[T], error) {
	if scalar.KindOf[T]().IsFloat() {
		return nil, fmt.Errorf("column: dense %s column", scalar.KindOf[T]())
	}
	if n < 0 || (n > 0 && (scalar.IsNil(base) || int64(base) > int64(scalar.Max[T]())-int64(n-1))) {
		return nil, fmt.Errorf("column: dense range %d+%d out of %s range", int64(base), n, scalar.KindOf[T]())
	}
	c := newColumn[T](optFns)
	c.dense = true
	c.base = base
	c.values = make([]T, n)
	for i := range c.values {
		c.values[i] = base + T(i)
	}
	c.sorted, c.key, c.nonil = true, true, true
	c.revsorted = n <= 1
	if n > 0 {
		c.minPos, c.maxPos = 0, n-1
	}
	return c, nil
}

// derive computes sortedness, nil presence and min/max positions in one
// pass. Key-ness is derived for monotone columns only.
func (c *Column[T]) derive() {
	c.sorted, c.revsorted, c.nonil = true, true, true
	c.minPos, c.maxPos = -1, -1
	for i, v := range c.values {
		c.observe(i, v)
	}
	c.deriveKey()
}

func (c *Column[T]) observe(i int, v T) {
	if i > 0 {
		prev := c.values[i-1]
		switch scalar.Compare(prev, v) {
		case -1:
			c.revsorted = false
		case 1:
			c.sorted = false
		}
	}
	if scalar.IsNil(v) {
		c.nonil = false
		return
	}
	if c.minPos < 0 || v < c.values[c.minPos] {
		c.minPos = i
	}
	if c.maxPos < 0 || v > c.values[c.maxPos] {
		c.maxPos = i
	}
}

func (c *Column[T]) deriveKey() {
	if c.key || !(c.sorted || c.revsorted) {
		return
	}
	for i := 1; i < len(c.values); i++ {
		if scalar.Equal(c.values[i-1], c.values[i]) {
			return
		}
	}
	c.key = true
}

// Append adds values, updates the derived properties and marks the column
// dirty. Hash and order indexes are dropped; the imprint index is left in
// place and detected as stale by its row count.
func (c *Column[T]) Append(vals ...T) error {
	if c.parent != nil || c.dense {
		return fmt.Errorf("column: append to %s", c.describe())
	}
	start := len(c.values)
	c.values = append(c.values, vals...)
	for i := start; i < len(c.values); i++ {
		c.observe(i, c.values[i])
	}
	if c.key && !c.WithinKey(start) {
		c.key = false
	}
	c.dirty = true

	c.hashMu.Lock()
	c.hash = nil
	c.hashMu.Unlock()
	c.orderMu.Lock()
	c.order = nil
	c.orderMu.Unlock()
	return nil
}

// WithinKey reports whether the values from start on keep the column's
// values distinct. Only monotone columns can be checked cheaply; others
// lose the key property on append.
func (c *Column[T]) WithinKey(start int) bool {
	if !(c.sorted || c.revsorted) {
		return false
	}
	for i := max(start, 1); i < len(c.values); i++ {
		if scalar.Equal(c.values[i-1], c.values[i]) {
			return false
		}
	}
	return true
}

// MarkClean clears the dirty flag, after the owner has made the column's
// current contents durable.
func (c *Column[T]) MarkClean() {
	c.dirty = false
}

// Slice returns a view of rows [lo, hi). Views share the parent's values
// and indexes and never own an imprint index of their own.
func (c *Column[T]) Slice(lo, hi int) *Column[T] {
	lo = max(lo, 0)
	hi = min(max(hi, lo), c.Len())
	root, off := c, 0
	if c.parent != nil {
		root, off = c.parent, c.offset
	}
	v := &Column[T]{
		id:         model.ColumnID(nextID.Add(1)),
		name:       c.name,
		hseq:       c.hseq + model.OID(lo),
		kind:       c.kind,
		dense:      c.dense,
		values:     c.values[lo:hi],
		parent:     root,
		offset:     off + lo,
		sorted:     c.sorted,
		revsorted:  c.revsorted,
		key:        c.key,
		nonil:      c.nonil,
		minPos:     -1,
		maxPos:     -1,
		persistent: false,
	}
	if c.dense && hi > lo {
		v.base = c.values[lo]
	}
	if !v.nonil {
		v.nonil = !slices.ContainsFunc(v.values, scalar.IsNil[T])
	}
	if v.sorted || v.revsorted {
		v.locateBounds()
	}
	return v
}

// locateBounds finds the min/max positions of a monotone column from its
// first and last non-nil values.
func (c *Column[T]) locateBounds() {
	first, last := -1, -1
	for i, v := range c.values {
		if !scalar.IsNil(v) {
			first = i
			break
		}
	}
	for i := len(c.values) - 1; i >= 0; i-- {
		if !scalar.IsNil(c.values[i]) {
			last = i
			break
		}
	}
	if first < 0 {
		return
	}
	if c.sorted {
		c.minPos, c.maxPos = first, last
	} else {
		c.minPos, c.maxPos = last, first
	}
}

func (c *Column[T]) describe() string {
	switch {
	case c.parent != nil:
		return fmt.Sprintf("view %s of %s", c.id, c.parent.id)
	case c.dense:
		return fmt.Sprintf("dense column %s", c.id)
	}
	return fmt.Sprintf("column %s", c.id)
}

// ID returns the column's process-unique identifier.
func (c *Column[T]) ID() model.ColumnID { return c.id }

// Name returns the physical name.
func (c *Column[T]) Name() string { return c.name }

// Kind returns the value kind.
func (c *Column[T]) Kind() scalar.Kind { return c.kind }

// SeqBase returns the OID of the first row.
func (c *Column[T]) SeqBase() model.OID { return c.hseq }

// Len returns the row count.
func (c *Column[T]) Len() int { return len(c.values) }

// Values returns the column's values. Callers must not modify them.
func (c *Column[T]) Values() []T { return c.values }

// Value returns the value of row position i.
func (c *Column[T]) Value(i int) T { return c.values[i] }

// IsDense reports whether value i is base+i.
func (c *Column[T]) IsDense() bool { return c.dense }

// DenseBase returns the value of the first row of a dense column.
func (c *Column[T]) DenseBase() T { return c.base }

// Sorted reports whether values are non-decreasing, nil first.
func (c *Column[T]) Sorted() bool { return c.sorted }

// RevSorted reports whether values are non-increasing, nil last.
func (c *Column[T]) RevSorted() bool { return c.revsorted }

// Key reports whether all values are known to be distinct.
func (c *Column[T]) Key() bool { return c.key }

// NoNil reports whether the column is known to hold no nil.
func (c *Column[T]) NoNil() bool { return c.nonil }

// MinPos returns the position of the smallest non-nil value, or -1.
func (c *Column[T]) MinPos() int { return c.minPos }

// MaxPos returns the position of the largest non-nil value, or -1.
func (c *Column[T]) MaxPos() int { return c.maxPos }

// Persistent reports whether the column is durable.
func (c *Column[T]) Persistent() bool { return c.persistent }

// Dirty reports whether the column changed since it was last made durable.
func (c *Column[T]) Dirty() bool { return c.dirty }

// Parent returns the column a view looks into, or nil.
func (c *Column[T]) Parent() *Column[T] { return c.parent }

// Offset returns a view's first row position within its parent.
func (c *Column[T]) Offset() int { return c.offset }

// ImprintSlot returns the column's imprint attachment.
func (c *Column[T]) ImprintSlot() *imprints.Slot[T] { return &c.imprints }

// SelectCount bumps and returns the number of selections that wanted a hash
// index on this column.
func (c *Column[T]) SelectCount() int32 { return c.selcnt.Add(1) }
