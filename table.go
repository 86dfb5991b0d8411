package chainmap

const (
	// minCapacity is the smallest bucket array the table ever allocates.
	minCapacity = 16

	// maxCapacity bounds the bucket array so index arithmetic stays within
	// uint32 with headroom.
	maxCapacity = 0x10000000
)

// ref is an index into the caller's node arena.
//
// Slot 0 of every arena is a sentinel that is never linked, so the zero ref
// means "no entry" and a freshly made bucket array is already empty.
type ref uint32

const nilRef ref = 0

// node is the linkage header the table threads through caller-owned entries.
// The table reads and writes these fields only; keys and values live
// elsewhere in the arena.
type node struct {
	// Full, unmasked hash. Stored once so resizing never rehashes.
	hash uint64

	// Next entry in the same bucket.
	chain ref

	// Insertion order list.
	next   ref
	before ref
}

// table is a chained hash index over a node arena it does not own.
//
// It manages the bucket array, bucket chains and the insertion order list.
// add and remove never resize; callers decide when to call expand and compact.
// A table is not safe for concurrent use.
type table struct {
	buckets []ref

	capacity      uint32
	count         uint32
	thresholdUp   uint32
	thresholdDown uint32

	first ref
	last  ref

	// alloc returns a zeroed bucket array of length n, or nil if it cannot.
	// nil means make.
	alloc func(n uint32) []ref
}

// init resets t to the empty state without allocating.
func (t *table) init() {
	*t = table{alloc: t.alloc}
}

// initCapacity resets t and eagerly allocates capacity buckets. capacity is
// expected to be a power of two; values below minCapacity are raised to it.
// If the allocation is rejected t stays in the empty state and the next
// validateEntries retries.
func (t *table) initCapacity(capacity uint32) {
	t.init()

	if capacity == 0 {
		return
	}

	if !t.createEntries(max(capacity, minCapacity)) {
		t.init()
	}
}

// validateEntries allocates the minimal bucket array if there is none yet.
func (t *table) validateEntries() bool {
	if t.capacity != 0 {
		return true
	}

	return t.createEntries(minCapacity)
}

// createEntries installs a new, empty bucket array of the given capacity and
// recomputes the thresholds. The previous array, if any, is simply replaced;
// resize paths keep their own reference to it.
func (t *table) createEntries(capacity uint32) bool {
	if capacity > maxCapacity {
		return false
	}

	var buckets []ref
	if t.alloc != nil {
		buckets = t.alloc(capacity)
	} else {
		buckets = make([]ref, capacity)
	}

	if uint32(len(buckets)) != capacity {
		return false
	}

	t.buckets = buckets
	t.capacity = capacity
	t.thresholdUp = capacity / 4 * 3
	t.thresholdDown = capacity / 4

	return true
}

func (t *table) bucketOf(hash uint64) uint32 {
	return uint32(hash) & (t.capacity - 1)
}

// head returns the first entry of the bucket hash maps to.
func (t *table) head(hash uint64) ref {
	if t.capacity == 0 {
		return nilRef
	}

	return t.buckets[t.bucketOf(hash)]
}

// add links entry r with the given hash into its bucket (at the front) and at
// the end of the order list. The bucket array must exist.
func (t *table) add(nodes []node, r ref, hash uint64) {
	t.count++

	idx := t.bucketOf(hash)

	n := &nodes[r]
	n.hash = hash
	n.chain = t.buckets[idx]
	t.buckets[idx] = r

	n.next = nilRef
	n.before = t.last

	if t.last != nilRef {
		nodes[t.last].next = r
	} else {
		t.first = r
	}

	t.last = r
}

// remove unlinks entry r from the order list. Unlinking it from its bucket
// chain is up to the caller, who has the predecessor from its lookup.
func (t *table) remove(nodes []node, r ref) {
	t.count--

	n := &nodes[r]

	if n.before != nilRef {
		nodes[n.before].next = n.next
	} else {
		t.first = n.next
	}

	if n.next != nilRef {
		nodes[n.next].before = n.before
	} else {
		t.last = n.before
	}
}

// expand doubles the bucket array once count reaches thresholdUp.
//
// Every entry of old bucket i lands in new bucket i or i|n, where n is the old
// capacity, depending only on bit n of its stored hash. Each old chain is
// split into two fresh chains in a single pass, keeping relative order.
func (t *table) expand(nodes []node) {
	if t.capacity == 0 || t.count < t.thresholdUp {
		return
	}

	n := t.capacity
	old := t.buckets

	if !t.createEntries(n << 1) {
		return
	}

	for i := range n {
		var loHead, loTail, hiHead, hiTail ref

		for r := old[i]; r != nilRef; {
			e := &nodes[r]
			next := e.chain
			e.chain = nilRef

			if uint32(e.hash)&n == 0 {
				if loTail == nilRef {
					loHead = r
				} else {
					nodes[loTail].chain = r
				}

				loTail = r
			} else {
				if hiTail == nilRef {
					hiHead = r
				} else {
					nodes[hiTail].chain = r
				}

				hiTail = r
			}

			r = next
		}

		t.buckets[i] = loHead
		t.buckets[i|n] = hiHead
	}
}

// compact halves the bucket array once count drops to thresholdDown, never
// going below minCapacity. New bucket i is old chain i followed by old chain
// i|n, the inverse of the split done by expand.
func (t *table) compact(nodes []node) {
	if t.capacity <= minCapacity || t.count > t.thresholdDown {
		return
	}

	n := t.capacity >> 1
	old := t.buckets

	if !t.createEntries(n) {
		return
	}

	for i := range n {
		head := old[i]
		if head == nilRef {
			t.buckets[i] = old[i|n]

			continue
		}

		tail := head
		for nodes[tail].chain != nilRef {
			tail = nodes[tail].chain
		}

		nodes[tail].chain = old[i|n]
		t.buckets[i] = head
	}
}

// clear empties every bucket and the order list but keeps the array.
func (t *table) clear() {
	clear(t.buckets)

	t.count = 0
	t.first = nilRef
	t.last = nilRef
}

// free releases the bucket array and returns t to the empty state.
func (t *table) free() {
	t.init()
}
