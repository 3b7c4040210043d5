package hashtable

import (
	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/chaintable/internal/util"
)

// rehash resizes the bucket array to the policy's target for the current
// entry count and relinks every entry using its cached hash.
// If the allocator refuses the new array the table keeps its current size;
// lookups stay correct, only chain lengths suffer.
func (t *Table[K, V]) rehash() {
	oldSize := len(t.buckets)
	newSize := util.RoundSize(t.resize.Target(t.nentries), MinBuckets)
	if newSize == oldSize {
		return
	}

	if err := t.alloc.Alloc(bucketBytes(newSize)); err != nil {
		t.metrics.Rehash(RehashFailed)
		level.Debug(t.logger).Log("msg", "rehash skipped", "entries", t.nentries,
			"buckets", oldSize, "target", newSize, "err", err)
		return
	}

	buckets := make([]int32, newSize)
	mask := uint64(newSize - 1)
	for _, head := range t.buckets {
		for i := head; i != 0; {
			e := &t.arena.slots[i]
			next := e.next
			b := e.hash & mask
			e.next = buckets[b]
			buckets[b] = i
			i = next
		}
	}
	t.alloc.Free(bucketBytes(oldSize))
	t.buckets = buckets
	t.rehashes++

	if newSize > oldSize {
		t.metrics.Rehash(RehashGrow)
	} else {
		t.metrics.Rehash(RehashShrink)
	}
}
