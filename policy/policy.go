// Package policy defines the resize strategy a table consults after every
// insertion and removal.
package policy

// Resize decides when a table rehashes and how many buckets it gets.
//
// Semantics:
//   - NeedsGrow is checked after an insertion, NeedsShrink after a removal.
//     Either returning true makes the table call Target.
//   - Target returns the desired bucket count for the given entry count.
//     The table rounds it up to a power of two (never below its minimum)
//     and skips the rehash when the rounded value equals the current size.
//
// Implementations must be stateless or safe to share between tables;
// a single value may be used as the default for every table in a process.
type Resize interface {
	NeedsGrow(entries, buckets int) bool
	NeedsShrink(entries, buckets int) bool
	Target(entries int) int
}
