package chainmap

type config[K comparable] struct {
	capacity int
	hashFunc HashFunc[K]
	alloc    func(n uint32) []ref
}

type Option[K comparable] func(c *config[K])

// WithCapacity preallocates a bucket array of at least n buckets. n is
// rounded up to a power of two and raised to 16. Requests above 0x10000000
// buckets are ignored and the map allocates lazily on first insert.
func WithCapacity[K comparable](n int) Option[K] {
	return func(c *config[K]) {
		c.capacity = n
	}
}

// Override default hash function.
func WithHashFunc[K comparable](f HashFunc[K]) Option[K] {
	return func(c *config[K]) {
		c.hashFunc = f
	}
}
