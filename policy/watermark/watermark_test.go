package watermark

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_Thresholds(t *testing.T) {
	t.Parallel()

	p := Default()
	require.False(t, p.NeedsGrow(8, 16), "exactly 0.5 is not above the high mark")
	require.True(t, p.NeedsGrow(9, 16))
	require.False(t, p.NeedsShrink(2, 16))
	require.True(t, p.NeedsShrink(1, 16))
}

// After a rehash the load factor sits between the marks.
func TestDefault_TargetLandsInsideWindow(t *testing.T) {
	t.Parallel()

	p := Default()
	f, ok := Factor(p)
	require.True(t, ok)
	require.InDelta(t, 2.0/0.6, f, 1e-9)

	for _, n := range []int{9, 100, 1000, 12345} {
		target := p.Target(n)
		require.GreaterOrEqual(t, target, n*3)
		load := float64(n) / float64(target)
		require.Less(t, load, DefaultHigh)
		require.Greater(t, load, DefaultLow)
	}
}

func TestNew_InvalidPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { New(0.5, 0.5) })
	require.Panics(t, func() { New(-0.1, 0.5) })
	require.Panics(t, func() { New(0.1, 1.5) })
	require.NotPanics(t, func() { New(0.25, 0.75) })
}

func TestCustom_Marks(t *testing.T) {
	t.Parallel()

	p := New(0.25, 0.75)
	require.True(t, p.NeedsGrow(13, 16))
	require.False(t, p.NeedsGrow(12, 16))
	require.True(t, p.NeedsShrink(3, 16))
	require.Equal(t, 200, p.Target(100))
}
