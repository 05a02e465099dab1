package column

import (
	"slices"

	"github.com/hupe1980/colsel/internal/hashidx"
	"github.com/hupe1980/colsel/scalar"
)

// Hash returns the column's hash index, or nil if none has been built.
func (c *Column[T]) Hash() *hashidx.Index[T] {
	c.hashMu.Lock()
	defer c.hashMu.Unlock()
	return c.hash
}

// BuildHash returns the column's hash index, building it if needed.
func (c *Column[T]) BuildHash() *hashidx.Index[T] {
	c.hashMu.Lock()
	defer c.hashMu.Unlock()
	if c.hash == nil || c.hash.Len() != len(c.values) {
		c.hash = hashidx.Build(c.values)
	}
	return c.hash
}

// DropHash discards the hash index.
func (c *Column[T]) DropHash() {
	c.hashMu.Lock()
	defer c.hashMu.Unlock()
	c.hash = nil
}

// OrderIndex returns the positions of the column in ascending value order
// (nil first), or nil if no order index has been built.
func (c *Column[T]) OrderIndex() []int {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	return c.order
}

// BuildOrderIndex builds and returns the order index. Equal values keep
// their position order.
func (c *Column[T]) BuildOrderIndex() []int {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	if c.order != nil && len(c.order) == len(c.values) {
		return c.order
	}
	order := make([]int, len(c.values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return scalar.Compare(c.values[a], c.values[b])
	})
	c.order = order
	return order
}
