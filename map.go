package chainmap

import "iter"

// Map is a hash map that remembers insertion order.
//
// Entries are chained in power-of-two bucket arrays that double once the
// load factor reaches 0.75 and halve once it drops to 0.25 (never below 16
// buckets). Resizing splits or merges bucket chains by a single hash bit and
// never rehashes keys. Iteration follows insertion order; updating an
// existing key keeps its position.
//
// The zero Map is empty and ready to use. A Map is not safe for concurrent
// use; see SyncMap.
type Map[K comparable, V any] struct {
	store[K, V]
}

// Returns a new instance of the map.
func New[K comparable, V any](opts ...Option[K]) *Map[K, V] {
	var m Map[K, V]
	m.init(opts...)

	return &m
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.get(key)
}

func (m *Map[K, V]) Has(key K) bool {
	return m.find(key) != nilRef
}

// Set inserts key or replaces its value in place.
func (m *Map[K, V]) Set(key K, value V) error {
	_, err := m.insert(key, value, true)

	return err
}

// Put inserts key only if it is absent and reports whether it did.
func (m *Map[K, V]) Put(key K, value V) (bool, error) {
	return m.insert(key, value, false)
}

// Deletes a key from the map.
func (m *Map[K, V]) Delete(key K) bool {
	return m.delete(key)
}

func (m *Map[K, V]) Len() int {
	return int(m.count)
}

// Capacity returns the current number of buckets, 0 before the first insert.
func (m *Map[K, V]) Capacity() int {
	return int(m.capacity)
}

// All iterates over entries in insertion order. The visited entry may be
// deleted from inside the loop.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return m.all
}

// Backward iterates over entries in reverse insertion order.
func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return m.backward
}

func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.all {
			if !yield(k) {
				return
			}
		}
	}
}

func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.all {
			if !yield(v) {
				return
			}
		}
	}
}

// First returns the oldest entry.
func (m *Map[K, V]) First() (K, V, bool) {
	return m.at(m.first)
}

// Last returns the most recently inserted entry.
func (m *Map[K, V]) Last() (K, V, bool) {
	return m.at(m.last)
}

// Reset removes all entries. The bucket array is kept.
func (m *Map[K, V]) Reset() {
	m.reset()
}

// Clone returns an independent copy sharing the hash function.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{store: m.clone()}
}

func (m *Map[K, V]) Stats() Stats {
	return m.stats()
}
