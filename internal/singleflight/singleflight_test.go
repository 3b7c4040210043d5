package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_Coalesces(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	var calls int64
	release := make(chan struct{})

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	results := make([]int, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, _, err := g.Do(context.Background(), "k", func() (int, error) {
				atomic.AddInt64(&calls, 1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			results[i] = v
		}(i)
	}

	// Let followers pile up behind the leader.
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got < 1 || got > n {
		t.Fatalf("calls = %d", got)
	}
	for i, v := range results {
		if v != 42 {
			t.Fatalf("result %d = %d", i, v)
		}
	}
	if g.InFlight() != 0 {
		t.Fatal("in-flight marker must be removed")
	}
}

// A follower whose ctx ends returns early; the leader still finishes.
func TestGroup_FollowerCancel(t *testing.T) {
	t.Parallel()

	var g Group[string, string]
	started := make(chan struct{})
	release := make(chan struct{})
	leaderDone := make(chan string)

	go func() {
		v, _, _ := g.Do(context.Background(), "k", func() (string, error) {
			close(started)
			<-release
			return "v", nil
		})
		leaderDone <- v
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Do(ctx, "k", func() (string, error) { return "other", nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("follower: want context.Canceled, got %v", err)
	}

	close(release)
	if v := <-leaderDone; v != "v" {
		t.Fatalf("leader got %q", v)
	}
}

func TestGroup_ErrorShared(t *testing.T) {
	t.Parallel()

	var g Group[int, int]
	boom := errors.New("boom")
	_, shared, err := g.Do(context.Background(), 1, func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) || shared {
		t.Fatalf("err=%v shared=%v", err, shared)
	}
}
