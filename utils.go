package chainmap

import (
	"math"
	"math/bits"
	"unsafe"
)

// Returns the next power of 2 for the given value `v`.
func NextPowerOf2(v uint32) uint32 {
	return uint32(1) << min(bits.Len32(v-1), 31)
}

// EntriesFromSize estimates how many entries of a Map[K, V] fit in size bytes
// while the table sits at its grow threshold.
func EntriesFromSize[K comparable, V any](size uintptr) int {
	var (
		k K
		v V
	)

	perEntry := unsafe.Sizeof(node{}) + unsafe.Sizeof(k) + unsafe.Sizeof(v)
	perBucket := unsafe.Sizeof(nilRef)

	// n entries need n/0.75 buckets: n*entry + n*4/3*bucket <= size.
	return int(size * 3 / (3*perEntry + 4*perBucket))
}

// normalizeCapacity maps a requested bucket count to the value handed to
// initCapacity. Oversized requests are passed through so createEntries
// rejects them.
func normalizeCapacity(n int) uint32 {
	switch {
	case n <= minCapacity:
		return minCapacity
	case n > maxCapacity:
		return math.MaxUint32
	}

	return NextPowerOf2(uint32(n))
}

func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
