package registry

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/chaintable/hashtable"
)

func TestDefault_KnownDigests(t *testing.T) {
	t.Parallel()

	r := Default()
	t.Cleanup(func() { _ = r.Close() })

	cases := []struct {
		name string
		size int
		hex  string
	}{
		{"sha256", 32, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"SHA-256", 32, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"md5", 16, "900150983cd24fb0d6963f7d28e17f72"},
		{"sha3_256", 32, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{"SHA3-256", 32, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{"blake2b_512", 64, ""},
		{"blake2s_256", 32, ""},
	}
	for _, c := range cases {
		d, err := r.Lookup(c.name)
		require.NoError(t, err, c.name)
		require.Equal(t, c.size, d.Size, c.name)
		if c.hex != "" {
			require.Equal(t, c.hex, d.HexSum([]byte("abc")), c.name)
		}
	}
	require.Equal(t, len(Builtin()), r.Len())
}

func TestLookup_Unsupported(t *testing.T) {
	t.Parallel()

	r := Default()
	_, err := r.Lookup("whirlpool")
	require.True(t, errors.Is(err, ErrUnsupported))
	require.Contains(t, err.Error(), "whirlpool")
}

func TestRegister_DuplicateAndUnregister(t *testing.T) {
	t.Parallel()

	r, err := New(Options{})
	require.NoError(t, err)

	d := &Descriptor{Name: "SHA256", Size: 32, BlockSize: 64, New: sha256.New}
	require.NoError(t, r.Register(d))
	require.True(t, errors.Is(r.Register(d), ErrDuplicate))
	require.Error(t, r.Register(&Descriptor{Name: "nil-ctor"}))

	got, ok := r.Unregister("sha256")
	require.True(t, ok)
	require.Same(t, d, got)
	_, ok = r.Unregister("sha256")
	require.False(t, ok)

	// Name is free again.
	require.NoError(t, r.Register(d))
}

func TestHMAC(t *testing.T) {
	t.Parallel()

	d, err := Default().Lookup("sha256")
	require.NoError(t, err)

	// RFC 4231 test case 2.
	m := d.HMAC([]byte("Jefe"))
	m.Write([]byte("what do ya want for nothing?"))
	require.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", fmt.Sprintf("%x", m.Sum(nil)))
}

func TestNames_Sorted(t *testing.T) {
	t.Parallel()

	names := Default().Names()
	require.Len(t, names, len(Builtin()))
	require.IsIncreasing(t, names)
	require.Contains(t, names, "blake2b_256")
}

// Close drops descriptors through OnRemove; Unregister never does.
func TestClose_OnRemove(t *testing.T) {
	t.Parallel()

	var removed []string
	r, err := New(Options{OnRemove: func(d *Descriptor) { removed = append(removed, d.Name) }})
	require.NoError(t, err)
	for _, d := range Builtin()[:4] {
		require.NoError(t, r.Register(d))
	}
	_, _ = r.Unregister("md5")
	require.Empty(t, removed)

	require.NoError(t, r.Close())
	require.Len(t, removed, 3)
	require.NoError(t, r.Close())

	_, err = r.Lookup("sha1")
	require.True(t, errors.Is(err, ErrClosed))
	require.True(t, errors.Is(r.Register(Builtin()[0]), ErrClosed))
}

// Concurrent misses for one name resolve once; lookups run in parallel.
func TestLookupOrResolve_Coalesced(t *testing.T) {
	t.Parallel()

	var calls int64
	r, err := New(Options{
		Resolver: func(_ context.Context, name string) (*Descriptor, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(5 * time.Millisecond) // simulate a slow provider
			return &Descriptor{Name: name, Size: 32, BlockSize: 64, New: sha256.New}, nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var g errgroup.Group
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			d, err := r.LookupOrResolve(ctx, "custom-256")
			if err != nil {
				return err
			}
			if d.Name != "custom_256" {
				return fmt.Errorf("got %q", d.Name)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, atomic.LoadInt64(&calls))

	d, err := r.Lookup("CUSTOM_256")
	require.NoError(t, err)
	require.Equal(t, 32, d.Size)
}

func TestLookupOrResolve_Errors(t *testing.T) {
	t.Parallel()

	noResolver, err := New(Options{})
	require.NoError(t, err)
	_, err = noResolver.LookupOrResolve(context.Background(), "x")
	require.True(t, errors.Is(err, ErrUnsupported))

	boom := errors.New("provider down")
	r, err := New(Options{Resolver: func(context.Context, string) (*Descriptor, error) { return nil, boom }})
	require.NoError(t, err)
	_, err = r.LookupOrResolve(context.Background(), "x")
	require.True(t, errors.Is(err, boom))
	require.Equal(t, 0, r.Len())

	empty, err := New(Options{Resolver: func(context.Context, string) (*Descriptor, error) { return nil, nil }})
	require.NoError(t, err)
	_, err = empty.LookupOrResolve(context.Background(), "x")
	require.True(t, errors.Is(err, ErrUnsupported))
}

// Register fails cleanly when the table's budget is exhausted.
func TestRegister_OutOfMemory(t *testing.T) {
	t.Parallel()

	r, err := New(Options{Allocator: hashtable.NewBudget(128)})
	require.NoError(t, err) // 16 buckets * 4 bytes fit

	var regErr error
	for _, d := range Builtin() {
		if regErr = r.Register(d); regErr != nil {
			break
		}
	}
	require.True(t, errors.Is(regErr, hashtable.ErrNoMemory))
	require.Less(t, r.Len(), len(Builtin()))
}
