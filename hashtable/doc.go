// Package hashtable provides a generic, embeddable chained hash table with a
// load-factor driven bucket count, pluggable hashing/equality/destruction
// behavior and an explicit memory-ownership contract.
//
// Design
//
//   - Storage: entries live in an arena owned by the table and are chained
//     per bucket through arena indexes. Each entry caches its key's hash, so
//     rehashing never calls the hash function again.
//
//   - Buckets: the bucket count is always a power of two, at least
//     MinBuckets, so the bucket of a hash is hash & (buckets-1).
//
//   - Resizing: after Set the table grows when the load factor exceeds the
//     policy's high water mark (0.50 by default); after Steal/Pop it shrinks
//     below the low water mark (0.10). The new size lands the load factor
//     in the middle of that window. See package policy/watermark.
//
//   - Ownership: the table owns entries and buckets; keys and values are
//     borrowed. KeyDestroy/ValueDestroy run when the table drops an entry
//     on its own (Clear, Destroy). Steal and Pop hand the value back without
//     running them.
//
//   - Memory: an Allocator accounts for entries and bucket arrays and may
//     refuse them. A refused entry fails Set with ErrNoMemory and leaves the
//     table unchanged; a refused rehash is skipped.
//
//   - Specializations: NewIdentity (integer keys) and NewPointer (pointer
//     keys) install a lookup that compares keys directly.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Rehash/Size signals.
//     By default NoopMetrics is used; see package metrics/prom.
//
// Basic usage
//
//	t := hashtable.NewComparable[string, int]()
//	if _, ok := t.GetEntry("a"); !ok {
//	    _ = t.Set("a", 1)
//	}
//	v, ok := t.Get("a")      // 1, true
//	v, ok = t.Steal("a")     // 1, true; caller owns v
//	_, ok = t.Get("a")       // false
//
// With destroy callbacks and a memory budget
//
//	t, err := hashtable.NewFull(hashtable.Options[string, *os.File]{
//	    Hasher:       hashtable.Strings{},
//	    ValueDestroy: func(f *os.File) { _ = f.Close() },
//	    Allocator:    hashtable.NewBudget(1 << 20),
//	})
//	...
//	t.Destroy() // closes every file still in the table
//
// Thread-safety & complexity
//
// A Table is not safe for concurrent use; callers serialize all access.
// Lookups are O(1) expected, O(chain length) worst case. Set, Steal and Pop
// add an amortized O(n) rehash.
//
// Caller contract
//
// Inserting a key that is already present, and mutating the table from a
// Foreach callback, are undefined. Builds tagged hashtable_debug panic on
// both.
package hashtable
