package hashtable

import (
	"bytes"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/IvanBrykalov/chaintable/internal/util"
)

// Comparable hashes comparable keys with util.Hash64 and compares with ==.
type Comparable[K comparable] struct{}

func (Comparable[K]) Hash(k K) uint64   { return util.Hash64(k) }
func (Comparable[K]) Equal(a, b K) bool { return a == b }

// Strings hashes string keys with xxhash, skipping Comparable's type switch.
type Strings struct{}

func (Strings) Hash(s string) uint64   { return xxhash.Sum64String(s) }
func (Strings) Equal(a, b string) bool { return a == b }

// Bytes keys a table by byte-slice contents. Callers must not mutate a key
// slice after inserting it.
type Bytes struct{}

func (Bytes) Hash(b []byte) uint64   { return xxhash.Sum64(b) }
func (Bytes) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

var (
	_ Hasher[int]    = Comparable[int]{}
	_ Hasher[string] = Strings{}
	_ Hasher[[]byte] = Bytes{}
)

// Integer is the key constraint of identity tables.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// NewIdentity returns a table whose hash is the key's own bits and whose
// equality is ==. Lookups use a specialized chain walk with no indirect
// calls; behavior matches the generic path. opt.Hash, opt.Equal and
// opt.Hasher are ignored.
func NewIdentity[K Integer, V any](opt Options[K, V]) (*Table[K, V], error) {
	opt.Hash = func(k K) uint64 { return uint64(k) }
	opt.Equal = func(a, b K) bool { return a == b }
	t, err := NewFull(opt)
	if err != nil {
		return nil, err
	}
	t.find = findIdentity[K, V]
	return t, nil
}

// The hash is injective, so comparing keys alone is exact.
func findIdentity[K Integer, V any](t *Table[K, V], key K) int32 {
	for i := t.buckets[uint64(key)&t.mask()]; i != 0; {
		e := &t.arena.slots[i]
		if e.key == key {
			return i
		}
		i = e.next
	}
	return 0
}

// NewPointer returns a table keyed by pointer identity. The hash is the
// address rotated right by 4 bits (alignment leaves the low bits empty).
// opt.Hash, opt.Equal and opt.Hasher are ignored.
func NewPointer[T, V any](opt Options[*T, V]) (*Table[*T, V], error) {
	opt.Hash = pointerHash[T]
	opt.Equal = func(a, b *T) bool { return a == b }
	t, err := NewFull(opt)
	if err != nil {
		return nil, err
	}
	t.find = findPointer[T, V]
	return t, nil
}

func pointerHash[T any](p *T) uint64 {
	return util.PointerHash(uintptr(unsafe.Pointer(p)))
}

func findPointer[T, V any](t *Table[*T, V], key *T) int32 {
	h := pointerHash(key)
	for i := t.buckets[h&t.mask()]; i != 0; {
		e := &t.arena.slots[i]
		if e.key == key {
			return i
		}
		i = e.next
	}
	return 0
}
