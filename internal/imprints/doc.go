// Package imprints implements column imprints: a compact, cache-line
// granular secondary index for fixed-width numeric columns.
//
// A sample of the column places up to 64 bin borders. Every 64-byte page of
// column data is summarised by a bit mask of the bins its values fall
// into, and runs of identical masks are compressed by a dictionary of
// (count, repeat) entries. A range predicate becomes a mask; pages whose
// mask does not intersect it are skipped without touching their values.
//
// The [Manager] owns the lifecycle: indexes are built on first use, written
// back to "<name>.timprints" for persistent clean columns, loaded lazily,
// evicted under memory pressure once synced, and destroyed when the column
// changes.
//
// File layout (native byte order, 8-byte words):
//
//	header   4 words (bits|version|sync|kind, rows, masks, dict entries)
//	bins     64 values of the column type
//	stats    64 min positions, 64 max positions, 64 counts
//	masks    one bits/8-byte mask per stored mask, padded to a word
//	dict     one 4-byte entry each (count:24, repeat:1)
//
// The sync flag is set by a separate write after the body has been
// flushed, so a half-written file never validates.
package imprints
