package chainmap

type Stats struct {
	Size         int
	Capacity     int
	UsedBuckets  int
	LongestChain int
	LoadFactor   float32

	// Arena slots ever allocated and how many of them are free for reuse.
	ArenaSlots int
	FreeSlots  int
}
