// Package util contains internal helpers (hashing, power-of-two sizing).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// Hash64 hashes common key types.
// Strings and byte arrays go through xxhash; integer-like keys are mixed with Mix64
// so sequential keys spread across buckets.
// Supported: string, []byte, [16|32|64]byte, all int/uint widths, uintptr, bool, fmt.Stringer.
// Panicking on unsupported types is deliberate to avoid silently poor hashing.
func Hash64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	case uint8:
		return Mix64(uint64(v))
	case uint16:
		return Mix64(uint64(v))
	case uint32:
		return Mix64(uint64(v))
	case uint64:
		return Mix64(v)
	case uint:
		return Mix64(uint64(v))
	case uintptr:
		return Mix64(uint64(v))
	case int8:
		return Mix64(uint64(uint8(v)))
	case int16:
		return Mix64(uint64(uint16(v)))
	case int32:
		return Mix64(uint64(uint32(v)))
	case int64:
		return Mix64(uint64(v))
	case int:
		return Mix64(uint64(v))
	case bool:
		if v {
			return Mix64(1)
		}
		return Mix64(0)

	// Fallback for pseudo-keys via String() (avoid if you can).
	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.Hash64: unsupported key type %T; convert key to string or provide a custom hasher", k))
	}
}

// Mix64 is the splitmix64 finalizer.
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// PointerHash hashes an address. The low bits of a pointer are mostly zero
// because of alignment, so the address is rotated by 4 bits first.
func PointerHash(p uintptr) uint64 {
	return bits.RotateLeft64(uint64(p), -4)
}
