package chainmap

import "iter"

// Set is a hash set that remembers insertion order. It shares its
// implementation with Map and only stores keys.
type Set[K comparable] struct {
	store[K, struct{}]
}

func NewSet[K comparable](opts ...Option[K]) *Set[K] {
	var s Set[K]
	s.init(opts...)

	return &s
}

// Checks whether a key is in the set.
func (s *Set[K]) Has(key K) bool {
	return s.find(key) != nilRef
}

// Add puts a key in the set and reports whether it was new.
func (s *Set[K]) Add(key K) (bool, error) {
	return s.insert(key, struct{}{}, false)
}

func (s *Set[K]) Delete(key K) bool {
	return s.delete(key)
}

func (s *Set[K]) Len() int {
	return int(s.count)
}

func (s *Set[K]) Capacity() int {
	return int(s.capacity)
}

// All iterates over keys in insertion order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.all {
			if !yield(k) {
				return
			}
		}
	}
}

func (s *Set[K]) Backward() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range s.backward {
			if !yield(k) {
				return
			}
		}
	}
}

func (s *Set[K]) Reset() {
	s.reset()
}

func (s *Set[K]) Clone() *Set[K] {
	return &Set[K]{store: s.clone()}
}

func (s *Set[K]) Stats() Stats {
	return s.stats()
}
