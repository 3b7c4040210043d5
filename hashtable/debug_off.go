//go:build !hashtable_debug

package hashtable

// debug enables caller-contract assertions (duplicate Set, mutation during
// Foreach). Build with -tags hashtable_debug to turn them on.
const debug = false
