package chainmap

import "sync"

// SyncMap is a Map guarded by a read-write mutex. Every method holds the
// lock for its whole duration, including resizes.
type SyncMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  Map[K, V]
}

func NewSyncMap[K comparable, V any](opts ...Option[K]) *SyncMap[K, V] {
	var sm SyncMap[K, V]
	sm.m.init(opts...)

	return &sm
}

func (sm *SyncMap[K, V]) Get(key K) (V, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Get(key)
}

func (sm *SyncMap[K, V]) Has(key K) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Has(key)
}

func (sm *SyncMap[K, V]) Set(key K, value V) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.Set(key, value)
}

func (sm *SyncMap[K, V]) Put(key K, value V) (bool, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.Put(key, value)
}

func (sm *SyncMap[K, V]) Delete(key K) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.m.Delete(key)
}

func (sm *SyncMap[K, V]) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Len()
}

// Range calls fn for each entry in insertion order under the read lock.
// fn must not call mutating methods of sm.
func (sm *SyncMap[K, V]) Range(fn func(K, V) bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.m.all(fn)
}

// Compute atomically replaces the value of key with the result of fn. fn
// receives the current value and whether it exists; returning keep=false
// deletes the key.
func (sm *SyncMap[K, V]) Compute(key K, fn func(old V, loaded bool) (value V, keep bool)) (V, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	old, loaded := sm.m.Get(key)

	value, keep := fn(old, loaded)
	if !keep {
		if loaded {
			sm.m.Delete(key)
		}

		var zero V

		return zero, nil
	}

	if err := sm.m.Set(key, value); err != nil {
		return old, err
	}

	return value, nil
}

// Snapshot returns a copy of the current contents.
func (sm *SyncMap[K, V]) Snapshot() *Map[K, V] {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.m.Clone()
}
