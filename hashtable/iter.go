package hashtable

import (
	"iter"
	"unsafe"

	"github.com/pkg/errors"
)

// ForeachFunc is called once per entry by Foreach. Returning non-zero stops
// the iteration and becomes Foreach's result. Per-call state travels in the
// closure.
type ForeachFunc[K, V any] func(t *Table[K, V], key K, value V) int

// Foreach visits every entry once, bucket by bucket, in unspecified order.
// fn must not insert, remove or clear; doing so is undefined (and panics in
// hashtable_debug builds).
func (t *Table[K, V]) Foreach(fn ForeachFunc[K, V]) int {
	if debug {
		t.iterating++
		defer func() { t.iterating-- }()
	}
	for _, head := range t.buckets {
		for i := head; i != 0; i = t.arena.slots[i].next {
			e := &t.arena.slots[i]
			if r := fn(t, e.key, e.val); r != 0 {
				return r
			}
		}
	}
	return 0
}

// All returns an iterator over key/value pairs with Foreach's ordering and
// restrictions.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		t.Foreach(func(_ *Table[K, V], k K, v V) int {
			if !yield(k, v) {
				return 1
			}
			return 0
		})
	}
}

// Keys returns an iterator over the stored keys.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		t.Foreach(func(_ *Table[K, V], k K, _ V) int {
			if !yield(k) {
				return 1
			}
			return 0
		})
	}
}

// Copy returns an independent table with the same configuration, bucket
// count and contents. Keys and values are copied by value; the copy shares
// destroy callbacks, so pointees owned through them must not be released
// twice. On ErrNoMemory nothing is left allocated.
func (t *Table[K, V]) Copy() (*Table[K, V], error) {
	if t.destroyed {
		return nil, ErrDestroyed
	}
	if err := t.alloc.Alloc(bucketBytes(len(t.buckets))); err != nil {
		return nil, errors.Wrap(err, "hashtable: allocate buckets")
	}
	c := &Table[K, V]{
		buckets:      make([]int32, len(t.buckets)),
		arena:        newArena[K, V](t.nentries),
		hash:         t.hash,
		equal:        t.equal,
		find:         t.find,
		keyDestroy:   t.keyDestroy,
		valueDestroy: t.valueDestroy,
		alloc:        t.alloc,
		entrySize:    t.entrySize,
		resize:       t.resize,
		metrics:      t.metrics,
		logger:       t.logger,
	}
	for b, head := range t.buckets {
		for i := head; i != 0; i = t.arena.slots[i].next {
			src := &t.arena.slots[i]
			j, err := c.newEntry(src.key, src.hash, src.val)
			if err != nil {
				c.discard()
				return nil, err
			}
			c.arena.slots[j].next = c.buckets[b]
			c.buckets[b] = j
			c.nentries++
		}
	}
	return c, nil
}

// discard frees everything without destroy callbacks.
func (t *Table[K, V]) discard() {
	for _, head := range t.buckets {
		for i := head; i != 0; {
			next := t.arena.slots[i].next
			t.releaseEntry(i)
			i = next
		}
	}
	t.alloc.Free(bucketBytes(len(t.buckets)))
	t.buckets = emptyBuckets
	t.arena = arena[K, V]{}
	t.nentries = 0
	t.destroyed = true
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int { return t.nentries }

// Buckets returns the current bucket count (0 after Destroy).
func (t *Table[K, V]) Buckets() int {
	if t.destroyed {
		return 0
	}
	return len(t.buckets)
}

// LoadFactor returns Len()/Buckets().
func (t *Table[K, V]) LoadFactor() float64 {
	if t.destroyed {
		return 0
	}
	return float64(t.nentries) / float64(len(t.buckets))
}

// Size estimates the bytes held by the table: header, bucket array and
// entry arena (including released slots awaiting reuse).
func (t *Table[K, V]) Size() uintptr {
	size := unsafe.Sizeof(*t) + uintptr(cap(t.arena.slots))*t.entrySize
	if !t.destroyed {
		size += bucketBytes(len(t.buckets))
	}
	return size
}

// Stats is a diagnostic snapshot of the table's shape.
type Stats struct {
	Entries      int
	Buckets      int
	EmptyBuckets int
	MaxChain     int
	Rehashes     int
	Size         uintptr
}

// Stats walks every chain; it costs O(buckets + entries).
func (t *Table[K, V]) Stats() Stats {
	s := Stats{
		Entries:  t.nentries,
		Buckets:  t.Buckets(),
		Rehashes: t.rehashes,
		Size:     t.Size(),
	}
	if t.destroyed {
		return s
	}
	for _, head := range t.buckets {
		if head == 0 {
			s.EmptyBuckets++
			continue
		}
		n := 0
		for i := head; i != 0; i = t.arena.slots[i].next {
			n++
		}
		if n > s.MaxChain {
			s.MaxChain = n
		}
	}
	return s
}
