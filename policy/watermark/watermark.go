// Package watermark implements the load-factor water mark resize policy.
package watermark

import (
	"fmt"

	"github.com/IvanBrykalov/chaintable/policy"
)

// Default water marks: grow above 50% load, shrink below 10%.
const (
	DefaultLow  = 0.10
	DefaultHigh = 0.50
)

// watermark rehashes when the load factor leaves [low, high]. After a rehash
// the load factor lands near the middle of that window.
type watermark struct {
	low, high float64
	factor    float64 // 2 / (low + high)
}

// New returns a water mark policy. It panics unless 0 <= low < high <= 1.
func New(low, high float64) policy.Resize {
	if low < 0 || high > 1 || low >= high {
		panic(fmt.Sprintf("watermark: invalid water marks low=%v high=%v", low, high))
	}
	return watermark{low: low, high: high, factor: 2.0 / (low + high)}
}

// Default returns the policy with DefaultLow/DefaultHigh.
func Default() policy.Resize { return defaultPolicy }

var defaultPolicy = New(DefaultLow, DefaultHigh)

func (w watermark) NeedsGrow(entries, buckets int) bool {
	return float64(entries)/float64(buckets) > w.high
}

func (w watermark) NeedsShrink(entries, buckets int) bool {
	return float64(entries)/float64(buckets) < w.low
}

// Target scales the entry count by the rehash factor.
func (w watermark) Target(entries int) int {
	return int(float64(entries) * w.factor)
}

// Factor exposes the rehash factor for diagnostics.
func Factor(p policy.Resize) (float64, bool) {
	w, ok := p.(watermark)
	if !ok {
		return 0, false
	}
	return w.factor, true
}
