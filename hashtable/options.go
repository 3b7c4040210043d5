package hashtable

import (
	"github.com/go-kit/log"

	"github.com/IvanBrykalov/chaintable/policy"
)

// RehashEvent describes the outcome of a rehash attempt.
type RehashEvent int

const (
	// RehashGrow means the bucket array grew after an insertion.
	RehashGrow RehashEvent = iota
	// RehashShrink means the bucket array shrank after a removal or Clear.
	RehashShrink
	// RehashFailed means the allocator refused the new bucket array; the table kept its size.
	RehashFailed
)

// String returns a stable label for the event.
func (e RehashEvent) String() string {
	switch e {
	case RehashGrow:
		return "grow"
	case RehashShrink:
		return "shrink"
	case RehashFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Metrics exposes table-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Rehash(event RehashEvent)
	Size(entries, buckets int)
}

// Hasher bundles a hash function with an equality relation consistent with it:
// Equal(a, b) implies Hash(a) == Hash(b).
type Hasher[K any] interface {
	Hash(k K) uint64
	Equal(a, b K) bool
}

// Options configures a table. Zero values are safe except for hashing:
// either Hash and Equal, or Hasher, must be set. Defaults applied in NewFull():
//   - nil Allocator      => HeapAllocator
//   - InitialBuckets <= 0 => MinBuckets
//   - nil Policy         => watermark.Default() (grow above 0.50, shrink below 0.10)
//   - nil Metrics        => NoopMetrics
//   - nil Logger         => log.NewNopLogger()
type Options[K, V any] struct {
	// Hash and Equal define key identity. Equal keys must hash equally.
	Hash  func(k K) uint64
	Equal func(a, b K) bool

	// Hasher is used when Hash/Equal are nil.
	Hasher Hasher[K]

	// KeyDestroy and ValueDestroy release what the table holds when the table
	// itself drops an entry (Clear, Destroy). Steal and Pop never call them.
	KeyDestroy   func(k K)
	ValueDestroy func(v V)

	// Allocator accounts for entry and bucket-array memory and may refuse it.
	Allocator Allocator

	// InitialBuckets seeds the bucket count; rounded up to a power of two,
	// never below MinBuckets.
	InitialBuckets int

	// Policy decides when to rehash and to what size.
	Policy policy.Resize

	// Observability
	Metrics Metrics
	Logger  log.Logger
}
