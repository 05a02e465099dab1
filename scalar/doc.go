// Package scalar defines the fixed-width numeric value types colsel selects
// over, and their nil/min/max conventions.
//
// Integers use the type minimum as nil, so the smallest selectable integer is
// one above it. Floats use NaN as nil and the infinities as their range ends.
// [Next] and [Prev] step to the adjacent representable value, which is how
// open range bounds are turned into closed ones.
package scalar
