package chainmap

import (
	"errors"
	"hash/maphash"
	"math"
	"slices"
)

// ErrNoBuckets is returned by inserts when the bucket array could not be
// allocated.
var ErrNoBuckets = errors.New("chainmap: bucket array unavailable")

// store owns the entries indexed by its table. Entries live in parallel
// arena slices addressed by ref; slot 0 is the sentinel.
type store[K comparable, V any] struct {
	table

	nodes  []node
	keys   []K
	values []V

	// Released slots, linked through node.chain.
	freeList ref
	numFree  int

	hashFunc HashFunc[K]
}

func (s *store[K, V]) init(opts ...Option[K]) {
	var cfg config[K]
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.hashFunc == nil {
		cfg.hashFunc = MakeDefaultHashFunc[K](maphash.MakeSeed())
	}

	s.hashFunc = cfg.hashFunc
	s.nodes = make([]node, 1)
	s.keys = make([]K, 1)
	s.values = make([]V, 1)
	s.freeList = nilRef
	s.numFree = 0

	s.table.alloc = cfg.alloc
	if cfg.capacity > 0 {
		s.initCapacity(normalizeCapacity(cfg.capacity))
	} else {
		s.table.init()
	}
}

// lookup returns the entry holding key and its predecessor in the bucket
// chain, or nilRef.
func (s *store[K, V]) lookup(key K, hash uint64) (r, prev ref) {
	for r = s.head(hash); r != nilRef; prev, r = r, s.nodes[r].chain {
		if s.nodes[r].hash == hash && s.keys[r] == key {
			return r, prev
		}
	}

	return nilRef, nilRef
}

func (s *store[K, V]) find(key K) ref {
	if s.count == 0 {
		return nilRef
	}

	r, _ := s.lookup(key, s.hashFunc(key))

	return r
}

func (s *store[K, V]) get(key K) (V, bool) {
	if r := s.find(key); r != nilRef {
		return s.values[r], true
	}

	var zero V

	return zero, false
}

// insert adds key unless present. With replace set an existing entry gets
// the new value in place, keeping its position in the order list.
func (s *store[K, V]) insert(key K, value V, replace bool) (bool, error) {
	if s.nodes == nil {
		s.init()
	}

	hash := s.hashFunc(key)

	if r, _ := s.lookup(key, hash); r != nilRef {
		if replace {
			s.values[r] = value
		}

		return false, nil
	}

	if !s.validateEntries() {
		return false, ErrNoBuckets
	}

	// Grow before linking so the new entry is placed in the final array.
	s.expand(s.nodes)

	r := s.allocSlot()
	s.keys[r] = key
	s.values[r] = value
	s.add(s.nodes, r, hash)

	return true, nil
}

func (s *store[K, V]) delete(key K) bool {
	if s.count == 0 {
		return false
	}

	hash := s.hashFunc(key)

	r, prev := s.lookup(key, hash)
	if r == nilRef {
		return false
	}

	if prev == nilRef {
		s.buckets[s.bucketOf(hash)] = s.nodes[r].chain
	} else {
		s.nodes[prev].chain = s.nodes[r].chain
	}

	s.remove(s.nodes, r)
	s.release(r)
	s.compact(s.nodes)

	return true
}

func (s *store[K, V]) allocSlot() ref {
	if r := s.freeList; r != nilRef {
		s.freeList = s.nodes[r].chain
		s.numFree--
		s.nodes[r] = node{}

		return r
	}

	if uint64(len(s.nodes)) > math.MaxUint32 {
		panic("chainmap: entry arena exhausted")
	}

	var (
		k K
		v V
	)

	s.nodes = append(s.nodes, node{})
	s.keys = append(s.keys, k)
	s.values = append(s.values, v)

	return ref(len(s.nodes) - 1)
}

// release returns slot r to the free list. The order links are left intact
// so an iterator positioned on r can still step forward.
func (s *store[K, V]) release(r ref) {
	var (
		k K
		v V
	)

	s.keys[r] = k
	s.values[r] = v

	if s.count == 0 {
		// Nothing is live: drop the whole arena instead of threading a list.
		s.truncateArena()

		return
	}

	s.nodes[r].chain = s.freeList
	s.freeList = r
	s.numFree++
}

func (s *store[K, V]) truncateArena() {
	clear(s.keys[1:])
	clear(s.values[1:])

	s.nodes = s.nodes[:1]
	s.keys = s.keys[:1]
	s.values = s.values[:1]
	s.freeList = nilRef
	s.numFree = 0
}

func (s *store[K, V]) all(yield func(K, V) bool) {
	for r := s.first; r != nilRef; {
		next := s.nodes[r].next
		if !yield(s.keys[r], s.values[r]) {
			return
		}

		r = next
	}
}

func (s *store[K, V]) backward(yield func(K, V) bool) {
	for r := s.last; r != nilRef; {
		before := s.nodes[r].before
		if !yield(s.keys[r], s.values[r]) {
			return
		}

		r = before
	}
}

func (s *store[K, V]) at(r ref) (K, V, bool) {
	if r == nilRef {
		var (
			k K
			v V
		)

		return k, v, false
	}

	return s.keys[r], s.values[r], true
}

// reset drops every entry but keeps the bucket array for reuse.
func (s *store[K, V]) reset() {
	if s.nodes == nil {
		return
	}

	s.truncateArena()
	s.clear()
}

func (s *store[K, V]) clone() store[K, V] {
	c := *s
	c.buckets = slices.Clone(s.buckets)
	c.nodes = slices.Clone(s.nodes)
	c.keys = slices.Clone(s.keys)
	c.values = slices.Clone(s.values)

	return c
}

func (s *store[K, V]) stats() Stats {
	st := Stats{
		Size:      int(s.count),
		Capacity:  int(s.capacity),
		FreeSlots: s.numFree,
	}

	if len(s.nodes) > 0 {
		st.ArenaSlots = len(s.nodes) - 1
	}

	for _, head := range s.buckets {
		if head == nilRef {
			continue
		}

		st.UsedBuckets++

		n := 0
		for r := head; r != nilRef; r = s.nodes[r].chain {
			n++
		}

		st.LongestChain = max(st.LongestChain, n)
	}

	if s.capacity > 0 {
		st.LoadFactor = float32(s.count) / float32(s.capacity)
	}

	return st
}
