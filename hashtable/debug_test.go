//go:build hashtable_debug

package hashtable

import "testing"

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestDebug_DuplicateSetPanics(t *testing.T) {
	tb := NewComparable[string, int]()
	_ = tb.Set("a", 1)
	mustPanic(t, "duplicate Set", func() { _ = tb.Set("a", 2) })
}

func TestDebug_MutationDuringForeachPanics(t *testing.T) {
	tb := NewComparable[int, int]()
	_ = tb.Set(1, 1)

	mustPanic(t, "Set in Foreach", func() {
		tb.Foreach(func(tt *Table[int, int], k, _ int) int {
			_ = tt.Set(k+100, 0)
			return 0
		})
	})
	mustPanic(t, "Steal in Foreach", func() {
		tb.Foreach(func(tt *Table[int, int], k, _ int) int {
			tt.Steal(k)
			return 0
		})
	})
}
