package hashtable

import "sync/atomic"

// Allocator accounts for the memory a table holds: one request per entry and
// one per bucket array. Alloc may refuse by returning an error; the table
// then behaves as if the memory were unavailable (Set fails, rehash is skipped).
// Free returns bytes previously granted by Alloc.
type Allocator interface {
	Alloc(size uintptr) error
	Free(size uintptr)
}

// HeapAllocator leaves memory to the Go heap and never refuses.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(uintptr) error { return nil }
func (HeapAllocator) Free(uintptr)        {}

// Budget is an Allocator with a fixed byte limit.
// A Budget may be shared by several tables; its counters are atomic.
type Budget struct {
	limit uintptr
	used  atomic.Uintptr
}

// NewBudget returns an allocator that grants at most limit bytes at a time.
func NewBudget(limit uintptr) *Budget {
	return &Budget{limit: limit}
}

// Alloc reserves size bytes or returns ErrNoMemory.
func (b *Budget) Alloc(size uintptr) error {
	for {
		used := b.used.Load()
		if size > b.limit-used {
			return ErrNoMemory
		}
		if b.used.CompareAndSwap(used, used+size) {
			return nil
		}
	}
}

// Free releases size bytes.
func (b *Budget) Free(size uintptr) {
	b.used.Add(^(size - 1))
}

// Used reports the bytes currently granted.
func (b *Budget) Used() uintptr { return b.used.Load() }

// Limit reports the configured ceiling.
func (b *Budget) Limit() uintptr { return b.limit }

var (
	_ Allocator = HeapAllocator{}
	_ Allocator = (*Budget)(nil)
)
