// Package column provides the column abstraction selections run over.
//
// A [Column] holds fixed-width numeric values plus the properties the
// selection engine plans with: sorted, reverse sorted, key, no-nil and the
// positions of its minimum and maximum. Properties are derived when the
// column is created and maintained on [Column.Append].
//
// Columns also carry their secondary indexes: an imprint slot managed by
// the engine, an optional hash index and an optional order index. Views
// created with [Column.Slice] share the values and indexes of their parent.
//
//	col := column.New([]int32{4, 8, 15, 16, 23, 42}, column.Persistent())
//	view := col.Slice(2, 5)
package column
