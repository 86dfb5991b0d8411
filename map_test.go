package chainmap

import (
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityHash(k int) uint64 {
	return uint64(k)
}

func TestMap_Basic(t *testing.T) {
	m := New[string, int]()

	// Set and Get
	err := m.Set("foo", 42)
	require.NoError(t, err)

	v, ok := m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Update existing key
	err = m.Set("foo", 100)
	require.NoError(t, err)

	v, ok = m.Get("foo")
	require.True(t, ok)
	assert.Equal(t, 100, v)
	assert.Equal(t, 1, m.Len())

	// Get non-existent key
	_, ok = m.Get("bar")
	assert.False(t, ok)
	assert.False(t, m.Has("bar"))

	// Delete
	deleted := m.Delete("foo")
	assert.True(t, deleted)

	_, ok = m.Get("foo")
	assert.False(t, ok)

	// Delete non-existent key
	deleted = m.Delete("foo")
	assert.False(t, deleted)
	assert.Equal(t, 0, m.Len())
}

func TestMap_ZeroValue(t *testing.T) {
	var m Map[string, string]

	_, ok := m.Get("a")
	require.False(t, ok)
	require.False(t, m.Delete("a"))
	require.Zero(t, m.Capacity())

	for range m.All() {
		t.Fatal("empty map yielded an entry")
	}

	require.NoError(t, m.Set("a", "b"))

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, minCapacity, m.Capacity())
}

func TestMap_Put(t *testing.T) {
	m := New[string, string]()

	ok, err := m.Put("foo", "bar")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Put("foo", "bar2")
	require.NoError(t, err)
	require.False(t, ok)

	v, _ := m.Get("foo")
	assert.Equal(t, "bar", v)
}

func TestMap_WithCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"default is lazy", 0, 0},
		{"small is raised to floor", 3, 16},
		{"rounded up", 100, 128},
		{"exact", 1024, 1024},
		{"above ceiling stays lazy", maxCapacity + 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New[int, int](WithCapacity[int](tc.capacity))
			require.Equal(t, tc.want, m.Capacity())

			require.NoError(t, m.Set(1, 1))
			require.GreaterOrEqual(t, m.Capacity(), minCapacity)
		})
	}
}

func TestMap_WithHashFunc(t *testing.T) {
	customHash := func(k int) uint64 {
		return uint64(k * 31)
	}

	m := New[int, int](WithHashFunc(customHash))

	require.NoError(t, m.Set(1, 100))

	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, 100, v)
}

func TestMap_Collisions(t *testing.T) {
	// Every key lands in the same bucket.
	m := New[string, int](WithHashFunc(func(string) uint64 { return 7 }))

	for i := range 50 {
		require.NoError(t, m.Set(fmt.Sprint(i), i))
	}

	for i := range 50 {
		v, ok := m.Get(fmt.Sprint(i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	stats := m.Stats()
	assert.Equal(t, 1, stats.UsedBuckets)
	assert.Equal(t, 50, stats.LongestChain)

	// Remove from the middle, head and tail of the chain.
	for _, k := range []string{"25", "49", "0"} {
		require.True(t, m.Delete(k))

		_, ok := m.Get(k)
		require.False(t, ok)
	}

	assert.Equal(t, 47, m.Len())
}

func TestMap_Order(t *testing.T) {
	m := New[string, int]()

	for i, k := range []string{"c", "a", "d", "b"} {
		require.NoError(t, m.Set(k, i))
	}

	assert.Equal(t, []string{"c", "a", "d", "b"}, slices.Collect(m.Keys()))
	assert.Equal(t, []int{0, 1, 2, 3}, slices.Collect(m.Values()))

	// Updating keeps the position.
	require.NoError(t, m.Set("a", 10))
	assert.Equal(t, []string{"c", "a", "d", "b"}, slices.Collect(m.Keys()))

	// Delete then re-insert moves to the end.
	require.True(t, m.Delete("c"))
	require.NoError(t, m.Set("c", 20))
	assert.Equal(t, []string{"a", "d", "b", "c"}, slices.Collect(m.Keys()))

	var backward []string
	for k := range m.Backward() {
		backward = append(backward, k)
	}

	assert.Equal(t, []string{"c", "b", "d", "a"}, backward)

	k, v, ok := m.First()
	require.True(t, ok)
	assert.Equal(t, "a", k)
	assert.Equal(t, 10, v)

	k, v, ok = m.Last()
	require.True(t, ok)
	assert.Equal(t, "c", k)
	assert.Equal(t, 20, v)
}

func TestMap_FirstLast_Empty(t *testing.T) {
	m := New[string, int]()

	_, _, ok := m.First()
	assert.False(t, ok)

	_, _, ok = m.Last()
	assert.False(t, ok)
}

func TestMap_All_EarlyStop(t *testing.T) {
	m := New[int, int]()
	for i := range 10 {
		require.NoError(t, m.Set(i, i))
	}

	var seen []int
	for k := range m.All() {
		if k == 3 {
			break
		}

		seen = append(seen, k)
	}

	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestMap_All_DeleteWhileIterating(t *testing.T) {
	m := New[int, int](WithHashFunc(identityHash))
	for i := range 100 {
		require.NoError(t, m.Set(i, i))
	}

	for k := range m.All() {
		if k%3 != 0 {
			require.True(t, m.Delete(k))
		}
	}

	var want []int
	for i := 0; i < 100; i += 3 {
		want = append(want, i)
	}

	assert.Equal(t, want, slices.Collect(m.Keys()))

	// Deleting everything while iterating also works.
	for k := range m.All() {
		require.True(t, m.Delete(k))
	}

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, minCapacity, m.Capacity())
}

func TestMap_GrowOnThirteenthInsert(t *testing.T) {
	m := New[int, int](WithHashFunc(identityHash))
	require.Zero(t, m.Capacity())

	for i := range 12 {
		require.NoError(t, m.Set(i, i))
		require.Equal(t, 16, m.Capacity())
	}

	require.NoError(t, m.Set(12, 12))
	require.Equal(t, 32, m.Capacity())
	require.Equal(t, 13, m.Len())

	// Updates never resize.
	require.NoError(t, m.Set(12, 13))
	require.Equal(t, 32, m.Capacity())
}

func TestMap_RemoveEvenKeys(t *testing.T) {
	m := New[int, int](WithHashFunc(identityHash))

	for i := range 100 {
		require.NoError(t, m.Set(i, i*10))
	}

	want := make([]int, 0, 100)
	for i := range 100 {
		want = append(want, i)
	}

	require.Equal(t, want, slices.Collect(m.Keys()))

	for i := 0; i < 100; i += 2 {
		require.True(t, m.Delete(i))
	}

	want = want[:0]
	for i := 1; i < 100; i += 2 {
		want = append(want, i)
	}

	require.Equal(t, want, slices.Collect(m.Keys()))

	for _, k := range want {
		v, ok := m.Get(k)
		require.True(t, ok)
		require.Equal(t, k*10, v)
	}
}

func TestMap_ShrinkToFloor(t *testing.T) {
	m := New[int, int]()

	for i := range 48 {
		require.NoError(t, m.Set(i, i))
	}

	require.Equal(t, 64, m.Capacity())

	capacities := []int{m.Capacity()}
	for i := range 45 {
		require.True(t, m.Delete(i))

		if c := m.Capacity(); c != capacities[len(capacities)-1] {
			capacities = append(capacities, c)
		}
	}

	assert.Equal(t, []int{64, 32, 16}, capacities)
	assert.Equal(t, 3, m.Len())

	for i := 45; i < 48; i++ {
		require.True(t, m.Has(i))
	}
}

func TestMap_ArenaReuse(t *testing.T) {
	m := New[int, int]()

	for i := range 20 {
		require.NoError(t, m.Set(i, i))
	}

	for i := range 5 {
		require.True(t, m.Delete(i))
	}

	stats := m.Stats()
	assert.Equal(t, 20, stats.ArenaSlots)
	assert.Equal(t, 5, stats.FreeSlots)

	for i := 100; i < 105; i++ {
		require.NoError(t, m.Set(i, i))
	}

	stats = m.Stats()
	assert.Equal(t, 20, stats.ArenaSlots)
	assert.Equal(t, 0, stats.FreeSlots)

	// Emptying the map releases the arena at once.
	for k := range m.All() {
		m.Delete(k)
	}

	stats = m.Stats()
	assert.Equal(t, 0, stats.ArenaSlots)
	assert.Equal(t, 0, stats.FreeSlots)
}

func TestMap_Stats(t *testing.T) {
	m := New[int, int](WithHashFunc(identityHash))

	stats := m.Stats()
	assert.Equal(t, Stats{}, stats)

	for i := range 8 {
		require.NoError(t, m.Set(i, i))
	}

	stats = m.Stats()
	assert.Equal(t, 8, stats.Size)
	assert.Equal(t, 16, stats.Capacity)
	assert.Equal(t, 8, stats.UsedBuckets)
	assert.Equal(t, 1, stats.LongestChain)
	assert.InDelta(t, 0.5, stats.LoadFactor, 1e-6)
}

func TestMap_Reset(t *testing.T) {
	m := New[int, int]()

	for i := range 40 {
		require.NoError(t, m.Set(i, i))
	}

	capacity := m.Capacity()

	m.Reset()

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, capacity, m.Capacity())

	_, ok := m.Get(0)
	assert.False(t, ok)

	require.NoError(t, m.Set(7, 7))
	assert.Equal(t, []int{7}, slices.Collect(m.Keys()))
}

func TestMap_Clone(t *testing.T) {
	m := New[string, int]()
	for i := range 30 {
		require.NoError(t, m.Set(fmt.Sprint(i), i))
	}

	c := m.Clone()

	require.NoError(t, c.Set("new", -1))
	require.True(t, c.Delete("3"))
	require.NoError(t, m.Set("0", 1000))

	assert.Equal(t, 30, m.Len())
	assert.True(t, m.Has("3"))
	assert.False(t, m.Has("new"))

	v, _ := c.Get("0")
	assert.Equal(t, 0, v)

	assert.Equal(t, 30, c.Len())

	got := maps.Collect(c.All())
	assert.Len(t, got, 30)
	assert.Equal(t, -1, got["new"])
}

func TestMap_AllocFailure(t *testing.T) {
	failing := func(c *config[int]) {
		c.alloc = func(uint32) []ref { return nil }
	}

	m := New[int, int](WithCapacity[int](64), failing)
	require.Zero(t, m.Capacity())

	err := m.Set(1, 1)
	require.ErrorIs(t, err, ErrNoBuckets)

	ok, err := m.Put(1, 1)
	require.ErrorIs(t, err, ErrNoBuckets)
	require.False(t, ok)

	assert.Equal(t, 0, m.Len())

	_, found := m.Get(1)
	assert.False(t, found)
}
