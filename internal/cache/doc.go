// Package cache provides the LRU that bounds resident imprint indexes.
//
// Entries are sized in bytes and carry an [Evictor]. When the total exceeds
// the capacity, the least recently used entries are asked to evict
// themselves; an entry that cannot go yet (not synced to disk, or its
// column is busy) is skipped and stays resident.
//
// Sizes are memory reserved against a resource.Controller by the caller;
// the cache releases them when entries leave.
package cache
