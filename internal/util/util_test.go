package util

import "testing"

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want uint64 }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {16, 16}, {17, 32},
		{1000, 1024}, {1 << 62, 1 << 62}, {1<<62 + 1, 1 << 63}, {1<<63 + 1, 1 << 63},
	}
	for _, c := range cases {
		if got := NextPow2(c.in); got != c.want {
			t.Fatalf("NextPow2(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRoundSize_Floor(t *testing.T) {
	t.Parallel()

	if got := RoundSize(0, 16); got != 16 {
		t.Fatalf("RoundSize(0,16) = %d", got)
	}
	if got := RoundSize(15, 16); got != 16 {
		t.Fatalf("RoundSize(15,16) = %d", got)
	}
	if got := RoundSize(33, 16); got != 64 {
		t.Fatalf("RoundSize(33,16) = %d", got)
	}
	if !IsPowerOfTwo(uint64(RoundSize(3333, 16))) {
		t.Fatal("RoundSize must return a power of two")
	}
}

// Sequential integers must not collapse into a handful of buckets.
func TestHash64_IntSpread(t *testing.T) {
	t.Parallel()

	const buckets = 64
	seen := make(map[uint64]int)
	for i := 0; i < 1024; i++ {
		seen[Hash64(i)&(buckets-1)]++
	}
	if len(seen) < buckets/2 {
		t.Fatalf("poor spread: %d of %d buckets used", len(seen), buckets)
	}
}

func TestHash64_StringsStable(t *testing.T) {
	t.Parallel()

	if Hash64("sha256") != Hash64(string([]byte("sha256"))) {
		t.Fatal("equal strings must hash equally")
	}
	if Hash64("a") == Hash64("b") {
		t.Fatal("unexpected collision for a/b")
	}
}

func TestHash64_UnsupportedPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unsupported key type")
		}
	}()
	type pair struct{ a, b int }
	Hash64(pair{1, 2})
}
