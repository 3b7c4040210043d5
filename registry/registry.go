// Package registry maps digest algorithm names to descriptors. It is the
// kind of name→descriptor table hashtable was built for: a Registry guards
// a hashtable.Table with its own lock, since the table itself is not safe
// for concurrent use.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/IvanBrykalov/chaintable/hashtable"
	"github.com/IvanBrykalov/chaintable/internal/singleflight"
)

var (
	// ErrUnsupported is returned for names with no registered descriptor.
	ErrUnsupported = errors.New("registry: unsupported algorithm")
	// ErrDuplicate is returned by Register when the name is taken.
	ErrDuplicate = errors.New("registry: algorithm already registered")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("registry: closed")
)

// Resolver produces a descriptor for a name the registry does not know yet.
type Resolver func(ctx context.Context, name string) (*Descriptor, error)

// Options configures a Registry. Zero values are safe.
type Options struct {
	// Resolver backs LookupOrResolve; nil disables resolution.
	Resolver Resolver

	// Metrics and Allocator are handed to the underlying table.
	Metrics   hashtable.Metrics
	Allocator hashtable.Allocator

	// OnRemove runs for every descriptor the registry drops on Close.
	OnRemove func(d *Descriptor)

	Logger log.Logger
}

// Registry is a concurrency-safe name → *Descriptor table.
type Registry struct {
	mu     sync.RWMutex
	table  *hashtable.Table[string, *Descriptor]
	closed bool

	resolve Resolver
	sf      singleflight.Group[string, *Descriptor]
	logger  log.Logger
}

// New returns an empty registry.
func New(opt Options) (*Registry, error) {
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}
	t, err := hashtable.NewFull(hashtable.Options[string, *Descriptor]{
		Hasher:       hashtable.Strings{},
		ValueDestroy: opt.OnRemove,
		Allocator:    opt.Allocator,
		Metrics:      opt.Metrics,
		Logger:       opt.Logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "registry: create table")
	}
	return &Registry{table: t, resolve: opt.Resolver, logger: opt.Logger}, nil
}

// Normalize folds case and treats '-' like '_' ("SHA3-256" → "sha3_256").
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// Register adds d under Normalize(d.Name).
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.New == nil {
		return errors.New("registry: descriptor without constructor")
	}
	name := Normalize(d.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(name, d)
}

func (r *Registry) registerLocked(name string, d *Descriptor) error {
	if r.closed {
		return ErrClosed
	}
	if _, ok := r.table.GetEntry(name); ok {
		return errors.Wrapf(ErrDuplicate, "%q", name)
	}
	if err := r.table.Set(name, d); err != nil {
		return errors.Wrapf(err, "registry: register %q", name)
	}
	level.Debug(r.logger).Log("msg", "registered algorithm", "name", name, "size", d.Size)
	return nil
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	name = Normalize(name)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}
	if d, ok := r.table.Get(name); ok {
		return d, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "%q", name)
}

// LookupOrResolve returns the descriptor for name, asking the Resolver on a
// miss and registering its answer. Concurrent misses for the same name share
// one resolution.
func (r *Registry) LookupOrResolve(ctx context.Context, name string) (*Descriptor, error) {
	d, err := r.Lookup(name)
	if err == nil || !errors.Is(err, ErrUnsupported) || r.resolve == nil {
		return d, err
	}

	name = Normalize(name)
	d, _, err = r.sf.Do(ctx, name, func() (*Descriptor, error) {
		// Double-check after joining the flight.
		if d, err := r.Lookup(name); err == nil {
			return d, nil
		}
		d, err := r.resolve(ctx, name)
		if err != nil {
			return nil, errors.Wrapf(err, "registry: resolve %q", name)
		}
		if d == nil || d.New == nil {
			return nil, errors.Wrapf(ErrUnsupported, "%q", name)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.registerLocked(name, d); err != nil && !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		// A concurrent Register may have won; serve whatever is stored.
		stored, _ := r.table.Get(name)
		return stored, nil
	})
	return d, err
}

// Unregister removes name and hands its descriptor back. OnRemove is not called.
func (r *Registry) Unregister(name string) (*Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Steal(Normalize(name))
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, r.table.Len())
	r.table.Foreach(func(_ *hashtable.Table[string, *Descriptor], k string, _ *Descriptor) int {
		names = append(names, k)
		return 0
	})
	r.mu.Unlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered algorithms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.Len()
}

// Close drops every descriptor (calling OnRemove for each) and makes further
// operations fail with ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.table.Destroy()
	return nil
}
