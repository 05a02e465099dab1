// Package selection implements range selection over a column.
//
// A selection takes a column, an optional candidate set and a Query, and
// returns the ascending OIDs of the candidates whose value satisfies the
// query. Degenerate queries are answered from the column's properties
// alone; the rest go to the cheapest applicable strategy: binary search on
// sorted or dense columns, an order index, a hash index for equality, an
// imprint scan for ranges, or a full scan. The chosen strategy is reported
// in Result.Algo; the result itself never depends on it.
package selection
