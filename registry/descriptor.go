package registry

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Descriptor describes one digest algorithm.
type Descriptor struct {
	Name      string
	Size      int // digest length in bytes
	BlockSize int
	New       func() hash.Hash
}

// Sum digests data in one call.
func (d *Descriptor) Sum(data []byte) []byte {
	h := d.New()
	h.Write(data)
	return h.Sum(nil)
}

// HexSum is Sum encoded as lower-case hex.
func (d *Descriptor) HexSum(data []byte) string {
	return hex.EncodeToString(d.Sum(data))
}

// HMAC returns a keyed MAC built on this digest.
func (d *Descriptor) HMAC(key []byte) hash.Hash {
	return hmac.New(d.New, key)
}

// describe fills Size and BlockSize from a probe instance.
func describe(name string, fn func() hash.Hash) *Descriptor {
	h := fn()
	return &Descriptor{Name: name, Size: h.Size(), BlockSize: h.BlockSize(), New: fn}
}

// mustHash adapts keyed-capable constructors used unkeyed.
func mustHash(fn func([]byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := fn(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

// Builtin returns descriptors for the algorithms Default registers.
func Builtin() []*Descriptor {
	return []*Descriptor{
		describe("md5", md5.New),
		describe("sha1", sha1.New),
		describe("sha224", sha256.New224),
		describe("sha256", sha256.New),
		describe("sha384", sha512.New384),
		describe("sha512", sha512.New),
		describe("sha512_224", sha512.New512_224),
		describe("sha512_256", sha512.New512_256),
		describe("sha3_224", sha3.New224),
		describe("sha3_256", sha3.New256),
		describe("sha3_384", sha3.New384),
		describe("sha3_512", sha3.New512),
		describe("blake2b_256", mustHash(blake2b.New256)),
		describe("blake2b_512", mustHash(blake2b.New512)),
		describe("blake2s_256", mustHash(blake2s.New256)),
	}
}

// Default returns a registry holding Builtin().
func Default() *Registry {
	r, err := New(Options{})
	if err != nil {
		panic(err)
	}
	for _, d := range Builtin() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}
