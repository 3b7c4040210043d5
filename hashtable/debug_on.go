//go:build hashtable_debug

package hashtable

const debug = true
