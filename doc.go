// Package colsel provides range selection over numeric columns, accelerated
// by column imprints.
//
// A column imprint is a small secondary index: every cache line of column
// values gets one bitmask recording which of up to 64 value bins occur in
// it, and runs of identical masks are compressed in a dictionary. A range
// selection turns its bounds into a bin mask and skips every cache line
// whose imprint misses it, emits cache lines whose bins lie fully inside
// it without reading values, and tests values only where a bin straddles a
// bound.
//
// # Quick Start
//
//	e, _ := colsel.New(colsel.WithDir("./imprints"))
//	defer e.Close()
//
//	col := column.New(prices, column.WithName("prices"), column.Persistent())
//	res, _ := colsel.Select(ctx, e, col, nil, colsel.Between(100.0, 250.0))
//	for oid := range res.Set.All() {
//	    fmt.Println(oid)
//	}
//
// # Strategies
//
// Each selection picks the cheapest applicable strategy and reports it in
// Result.Algo:
//
//   - answers from column properties alone (empty ranges, ranges outside
//     the known minimum and maximum, nil selects on columns without nil)
//   - binary search on sorted, reverse-sorted and dense columns
//   - an order index for range selects on unsorted columns
//   - a hash index for equality, built on demand for persistent columns and
//     after repeated use for transient ones
//   - an imprint scan for ranges on persistent columns
//   - a full scan otherwise
//
// The result never depends on the strategy.
//
// # Persistence
//
// With WithDir, imprint indexes of persistent, clean columns are written
// back in the background and loaded on later use. A file is only trusted
// once its sync flag is set, and is discarded when the column's row count
// no longer matches. Register attaches an existing file to a column of a
// new process; Evict and DropImprints release and destroy indexes.
package colsel
