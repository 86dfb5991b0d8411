package chainmap

import (
	"hash/maphash"

	"github.com/dchest/siphash"
)

// HashFunc hashes a key. Only the low 28 bits select a bucket at the largest
// capacity, so the low bits must be well mixed.
type HashFunc[K comparable] func(K) uint64

// MakeDefaultHashFunc returns a maphash based hash function for any
// comparable key.
func MakeDefaultHashFunc[K comparable](seed maphash.Seed) HashFunc[K] {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// MakeSipHashFunc returns a keyed SipHash-2-4 hash function for string keys.
// Unlike maphash, the result is stable across processes for the same key
// pair, which makes bucket layouts reproducible.
func MakeSipHashFunc[K ~string](k0, k1 uint64) HashFunc[K] {
	return func(k K) uint64 {
		return siphash.Hash(k0, k1, stringBytes(string(k)))
	}
}
