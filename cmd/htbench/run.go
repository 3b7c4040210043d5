package main

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/IvanBrykalov/chaintable/hashtable"
)

// result is one worker's tally.
type result struct {
	ops, inserts, steals, hits, misses, oom int
	stats                                  hashtable.Stats
}

func (r *result) add(o result) {
	r.ops += o.ops
	r.inserts += o.inserts
	r.steals += o.steals
	r.hits += o.hits
	r.misses += o.misses
	r.oom += o.oom
	r.stats.Entries += o.stats.Entries
	r.stats.Rehashes += o.stats.Rehashes
	r.stats.Size += o.stats.Size
	if o.stats.MaxChain > r.stats.MaxChain {
		r.stats.MaxChain = o.stats.MaxChain
	}
}

// newTable builds the table a worker owns exclusively.
func newTable(w workload, m hashtable.Metrics) (*hashtable.Table[uint64, uint64], error) {
	opt := hashtable.Options[uint64, uint64]{Metrics: m}
	if w.Budget > 0 {
		opt.Allocator = hashtable.NewBudget(uintptr(w.Budget))
	}
	if w.Identity {
		return hashtable.NewIdentity(opt)
	}
	opt.Hasher = hashtable.Comparable[uint64]{}
	return hashtable.NewFull(opt)
}

// runWorker drives one table through a random insert/steal/get mix.
// With verify set every answer is checked against a shadow map.
func runWorker(ctx context.Context, id int, w workload, m hashtable.Metrics) (result, error) {
	var res result
	t, err := newTable(w, m)
	if err != nil {
		return res, err
	}
	defer t.Destroy()

	var shadow map[uint64]uint64
	if w.Verify {
		shadow = make(map[uint64]uint64)
	}
	r := rand.New(rand.NewSource(w.Seed + int64(id)*9973))

	for i := 0; i < w.Ops; i++ {
		if i&1023 == 0 {
			if err := ctx.Err(); err != nil {
				break
			}
		}
		k := uint64(r.Intn(w.Keys))
		res.ops++

		switch p := r.Intn(100); {
		case p < w.InsertPct:
			if _, ok := t.GetEntry(k); ok {
				continue
			}
			v := r.Uint64()
			if err := t.Set(k, v); err != nil {
				if errors.Is(err, hashtable.ErrNoMemory) {
					res.oom++
					continue
				}
				return res, err
			}
			res.inserts++
			if shadow != nil {
				shadow[k] = v
			}
		case p < w.InsertPct+w.StealPct:
			v, ok := t.Steal(k)
			if ok {
				res.steals++
			}
			if shadow != nil {
				want, wantOK := shadow[k]
				if ok != wantOK || v != want {
					return res, errors.Errorf("worker %d: Steal(%d) = %d,%v want %d,%v", id, k, v, ok, want, wantOK)
				}
				delete(shadow, k)
			}
		default:
			v, ok := t.Get(k)
			if ok {
				res.hits++
			} else {
				res.misses++
			}
			if shadow != nil {
				want, wantOK := shadow[k]
				if ok != wantOK || v != want {
					return res, errors.Errorf("worker %d: Get(%d) = %d,%v want %d,%v", id, k, v, ok, want, wantOK)
				}
			}
		}
	}

	if shadow != nil && t.Len() != len(shadow) {
		return res, errors.Errorf("worker %d: table holds %d entries, shadow %d", id, t.Len(), len(shadow))
	}
	res.stats = t.Stats()
	return res, nil
}
