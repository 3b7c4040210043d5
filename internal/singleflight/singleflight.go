// Package singleflight coalesces concurrent resolutions of the same key.
package singleflight

import (
	"context"
	"sync"
)

// Group runs fn at most once per key among concurrent callers; the others
// wait for the leader's result.
//
// The leader's fn is not cancelled when a follower's ctx ends: that follower
// alone returns ctx.Err(). Thread ctx into fn to make the work cancellable.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done    chan struct{} // closed once val/err are published
	val     V
	err     error
	waiters int
}

// Do returns fn's result for key. shared reports whether the result was
// handed to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, shared bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.waiters++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, true, c.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.m, key)
	shared = c.waiters > 0
	g.mu.Unlock()
	close(c.done)

	return c.val, shared, c.err
}

// InFlight reports how many keys are currently being resolved.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
