package hashtable

import "math"

// entry is one stored key/value pair. Entries live in the table's arena and
// are chained through arena indexes: index 0 is a reserved sentinel, so a zero
// link ends a chain and a zeroed bucket array is an empty table.
type entry[K, V any] struct {
	hash uint64 // cached at insertion; rehash never recomputes it
	key  K
	val  V
	next int32  // next entry in the bucket chain, or the free list while released
	gen  uint32 // bumped on release so outstanding Refs go stale
}

// Ref is a generation-checked handle to a live entry, returned by GetEntry.
// A Ref goes stale once its entry is removed; the zero Ref never resolves.
type Ref struct {
	index int32
	gen   uint32
}

// arena owns every entry slot of a table.
type arena[K, V any] struct {
	slots []entry[K, V]
	free  int32 // head of the released-slot list, threaded through next
}

func newArena[K, V any](capacity int) arena[K, V] {
	return arena[K, V]{slots: make([]entry[K, V], 1, capacity+1)}
}

// take hands out a slot, reusing released ones first.
func (a *arena[K, V]) take() int32 {
	if i := a.free; i != 0 {
		a.free = a.slots[i].next
		a.slots[i].next = 0
		return i
	}
	if len(a.slots) == math.MaxInt32 {
		panic("hashtable: arena exhausted")
	}
	a.slots = append(a.slots, entry[K, V]{})
	return int32(len(a.slots) - 1)
}

// release zeroes slot i (dropping references to key and value) and puts it
// on the free list.
func (a *arena[K, V]) release(i int32) {
	e := &a.slots[i]
	*e = entry[K, V]{gen: e.gen + 1, next: a.free}
	a.free = i
}

// resolve returns the live entry behind r, or nil when r is stale.
func (a *arena[K, V]) resolve(r Ref) *entry[K, V] {
	if r.index <= 0 || int(r.index) >= len(a.slots) {
		return nil
	}
	e := &a.slots[r.index]
	if e.gen != r.gen {
		return nil
	}
	return e
}
