package hashtable

import (
	"unsafe"

	"github.com/go-kit/log"
	"github.com/pkg/errors"

	"github.com/IvanBrykalov/chaintable/internal/util"
	"github.com/IvanBrykalov/chaintable/policy"
	"github.com/IvanBrykalov/chaintable/policy/watermark"
)

// MinBuckets is the smallest bucket count a table ever has.
const MinBuckets = 16

var (
	// ErrNoMemory is returned when the Allocator refuses an entry or a table.
	ErrNoMemory = errors.New("hashtable: out of memory")
	// ErrDestroyed is returned by Set after Destroy.
	ErrDestroyed = errors.New("hashtable: table destroyed")
)

// emptyBuckets is installed by Destroy so lookups miss without a branch.
// It is never written to.
var emptyBuckets = []int32{0}

// Table is a chained hash table with a load-factor driven bucket count.
// It is not safe for concurrent use: callers serialize every access.
type Table[K, V any] struct {
	buckets  []int32 // chain heads (arena indexes); len is a power of two
	nentries int
	arena    arena[K, V]

	hash  func(K) uint64
	equal func(a, b K) bool
	find  func(t *Table[K, V], key K) int32

	keyDestroy   func(K)
	valueDestroy func(V)

	alloc     Allocator
	entrySize uintptr
	resize    policy.Resize
	metrics   Metrics
	logger    log.Logger

	rehashes  int
	iterating int // Foreach depth, checked in hashtable_debug builds
	destroyed bool
}

// New returns an empty table using the heap allocator and default policy.
// It panics if hash or equal is nil.
func New[K, V any](hash func(K) uint64, equal func(a, b K) bool) *Table[K, V] {
	t, err := NewFull(Options[K, V]{Hash: hash, Equal: equal})
	if err != nil {
		// HeapAllocator never refuses.
		panic(err)
	}
	return t
}

// NewComparable returns a table for comparable keys hashed with util.Hash64
// (xxhash for strings and byte arrays, a 64-bit mixer for integers).
func NewComparable[K comparable, V any]() *Table[K, V] {
	return New[K, V](util.Hash64[K], func(a, b K) bool { return a == b })
}

// NewFull constructs a table from Options.
// It panics when neither Hash/Equal nor Hasher is provided, and returns
// ErrNoMemory when the allocator refuses the initial bucket array.
func NewFull[K, V any](opt Options[K, V]) (*Table[K, V], error) {
	if opt.Hash == nil || opt.Equal == nil {
		if opt.Hasher == nil {
			panic("hashtable: Hash and Equal (or Hasher) must be set")
		}
		opt.Hash, opt.Equal = opt.Hasher.Hash, opt.Hasher.Equal
	}
	if opt.Allocator == nil {
		opt.Allocator = HeapAllocator{}
	}
	if opt.Policy == nil {
		opt.Policy = watermark.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}

	n := util.RoundSize(opt.InitialBuckets, MinBuckets)
	if err := opt.Allocator.Alloc(bucketBytes(n)); err != nil {
		return nil, errors.Wrap(err, "hashtable: allocate buckets")
	}

	return &Table[K, V]{
		buckets:      make([]int32, n),
		arena:        newArena[K, V](0),
		hash:         opt.Hash,
		equal:        opt.Equal,
		find:         findGeneric[K, V],
		keyDestroy:   opt.KeyDestroy,
		valueDestroy: opt.ValueDestroy,
		alloc:        opt.Allocator,
		entrySize:    unsafe.Sizeof(entry[K, V]{}),
		resize:       opt.Policy,
		metrics:      opt.Metrics,
		logger:       opt.Logger,
	}, nil
}

// ---- lookup ----

// findGeneric walks the key's chain comparing cached hashes first and
// calling Equal only on a hash match.
func findGeneric[K, V any](t *Table[K, V], key K) int32 {
	h := t.hash(key)
	for i := t.buckets[h&t.mask()]; i != 0; {
		e := &t.arena.slots[i]
		if e.hash == h && t.equal(e.key, key) {
			return i
		}
		i = e.next
	}
	return 0
}

// GetEntry returns a handle to the entry stored under key.
// Use it to tell "present with a zero value" apart from "absent".
func (t *Table[K, V]) GetEntry(key K) (Ref, bool) {
	i := t.find(t, key)
	if i == 0 {
		t.metrics.Miss()
		return Ref{}, false
	}
	t.metrics.Hit()
	return Ref{index: i, gen: t.arena.slots[i].gen}, true
}

// Get returns the value stored under key and a presence flag.
func (t *Table[K, V]) Get(key K) (V, bool) {
	i := t.find(t, key)
	if i == 0 {
		t.metrics.Miss()
		var zero V
		return zero, false
	}
	t.metrics.Hit()
	return t.arena.slots[i].val, true
}

// Contains reports whether key is present.
func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.GetEntry(key)
	return ok
}

// Entry dereferences a handle. ok is false once the entry has been removed.
func (t *Table[K, V]) Entry(r Ref) (key K, value V, ok bool) {
	e := t.arena.resolve(r)
	if e == nil {
		return key, value, false
	}
	return e.key, e.val, true
}

// Update replaces the value behind a live handle in place.
// Destroy callbacks are not invoked for the old value.
func (t *Table[K, V]) Update(r Ref, value V) bool {
	e := t.arena.resolve(r)
	if e == nil {
		return false
	}
	e.val = value
	return true
}

// ---- insertion ----

// Set inserts key→value. The key must not be present: duplicate insertion is
// a caller error (it panics in builds tagged hashtable_debug). Check with
// GetEntry first when in doubt.
//
// On ErrNoMemory the table is unchanged.
func (t *Table[K, V]) Set(key K, value V) error {
	if t.destroyed {
		return ErrDestroyed
	}
	t.checkMutation()
	if debug && t.find(t, key) != 0 {
		panic("hashtable: Set of a key that is already present")
	}

	h := t.hash(key)
	i, err := t.newEntry(key, h, value)
	if err != nil {
		return err
	}

	// Prepend: the newest entry is found first.
	b := h & t.mask()
	t.arena.slots[i].next = t.buckets[b]
	t.buckets[b] = i
	t.nentries++

	if t.resize.NeedsGrow(t.nentries, len(t.buckets)) {
		t.rehash()
	}
	t.metrics.Size(t.nentries, len(t.buckets))
	return nil
}

// ---- removal ----

// Steal removes key and hands its value back to the caller, who now owns it.
// Destroy callbacks are not invoked.
func (t *Table[K, V]) Steal(key K) (V, bool) {
	_, v, ok := t.Pop(key)
	return v, ok
}

// Pop is Steal that also returns the stored key (which may be a different,
// Equal instance from the one passed in).
func (t *Table[K, V]) Pop(key K) (K, V, bool) {
	t.checkMutation()
	i := t.unlink(key)
	if i == 0 {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	e := &t.arena.slots[i]
	k, v := e.key, e.val
	t.releaseEntry(i)

	if t.resize.NeedsShrink(t.nentries, len(t.buckets)) {
		t.rehash()
	}
	t.metrics.Size(t.nentries, len(t.buckets))
	return k, v, true
}

// unlink detaches key's entry from its chain and returns its index (0 if absent).
func (t *Table[K, V]) unlink(key K) int32 {
	if t.nentries == 0 {
		return 0
	}
	h := t.hash(key)
	b := h & t.mask()
	var prev int32
	for i := t.buckets[b]; i != 0; {
		e := &t.arena.slots[i]
		if e.hash == h && t.equal(e.key, key) {
			if prev == 0 {
				t.buckets[b] = e.next
			} else {
				t.arena.slots[prev].next = e.next
			}
			e.next = 0
			t.nentries--
			return i
		}
		prev, i = i, e.next
	}
	return 0
}

// ---- teardown ----

// Clear destroys every entry (invoking destroy callbacks once per entry) and
// shrinks the bucket array back to MinBuckets. The table stays usable.
func (t *Table[K, V]) Clear() {
	if t.destroyed {
		return
	}
	t.checkMutation()
	for b, head := range t.buckets {
		for i := head; i != 0; {
			next := t.arena.slots[i].next
			t.destroyEntry(i)
			i = next
		}
		t.buckets[b] = 0
	}
	t.nentries = 0
	t.rehash()
	t.metrics.Size(0, len(t.buckets))
}

// Destroy clears the table and releases its bucket array and arena.
// Afterwards Set returns ErrDestroyed and lookups miss. Destroy is idempotent.
func (t *Table[K, V]) Destroy() {
	if t.destroyed {
		return
	}
	t.Clear()
	t.alloc.Free(bucketBytes(len(t.buckets)))
	t.buckets = emptyBuckets
	t.arena = arena[K, V]{}
	t.destroyed = true
	t.metrics.Size(0, 0)
}

// ---- entry lifecycle ----

// newEntry allocates a slot for key/value. Nothing is linked on failure.
func (t *Table[K, V]) newEntry(key K, hash uint64, value V) (int32, error) {
	if err := t.alloc.Alloc(t.entrySize); err != nil {
		return 0, errors.Wrap(err, "hashtable: allocate entry")
	}
	i := t.arena.take()
	e := &t.arena.slots[i]
	e.hash, e.key, e.val = hash, key, value
	return i, nil
}

// destroyEntry is the only path that runs destroy callbacks.
func (t *Table[K, V]) destroyEntry(i int32) {
	e := &t.arena.slots[i]
	if t.keyDestroy != nil {
		t.keyDestroy(e.key)
	}
	if t.valueDestroy != nil {
		t.valueDestroy(e.val)
	}
	t.releaseEntry(i)
}

// releaseEntry frees slot i without callbacks.
func (t *Table[K, V]) releaseEntry(i int32) {
	t.arena.release(i)
	t.alloc.Free(t.entrySize)
}

// ---- helpers ----

func (t *Table[K, V]) mask() uint64 { return uint64(len(t.buckets) - 1) }

func (t *Table[K, V]) checkMutation() {
	if debug && t.iterating > 0 {
		panic("hashtable: table mutated during Foreach")
	}
}

func bucketBytes(n int) uintptr {
	return uintptr(n) * unsafe.Sizeof(int32(0))
}
