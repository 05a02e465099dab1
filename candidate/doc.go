// Package candidate implements ordered row-identifier sets, the input and
// output of every selection.
//
// A [Set] is either dense (a contiguous range of OIDs, stored as first and
// count) or an explicit strictly ascending list. Results are built with a
// [Builder], which accounts its buffer against a resource controller and
// returns a dense set whenever the result turns out contiguous.
//
// Set algebra (Diff, Intersect) goes through roaring bitmaps.
package candidate
