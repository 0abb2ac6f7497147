package wildcard

// Counts is a resizable per-co-index occurrence array, used while a
// decode is in progress to tally how many times each wildcard
// co-index has been seen before the final Index is built from a
// finished buffer. It caches the highest nonzero index so repeated
// queries after a quiet period don't rescan the whole array.
//
// Grounded on original_source/dbuffer.C's WildcardCounts.
type Counts struct {
	counts       []uint32
	prevHighest  int
	knownHighest bool
}

// NewCounts returns a zeroed Counts sized for co-indices in [0, size).
func NewCounts(size uint32) *Counts {
	return &Counts{counts: make([]uint32, size)}
}

// NumCounts returns the array's current size.
func (c *Counts) NumCounts() int { return len(c.counts) }

// Clear zeroes the count for the given co-index (the wildcard is now
// resolved) and resets the cached highest-used index, so the next
// HighestUsed call rescans.
func (c *Counts) Clear(index uint32) {
	if int(index) < len(c.counts) {
		c.counts[index] = 0
	}
	c.prevHighest = 0
	c.knownHighest = false
}

// Incr bumps the count for the given co-index and invalidates the
// cached highest-used index if needed.
func (c *Counts) Incr(index uint32) {
	c.counts[index]++
	c.knownHighest = false
}

// Get returns the count for the given co-index.
func (c *Counts) Get(index uint32) uint32 { return c.counts[index] }

// HighestUsed returns the highest co-index with a nonzero count,
// scanning backward from the end only as far as needed and caching
// the result for the next call.
func (c *Counts) HighestUsed() int {
	if !c.knownHighest {
		for i := len(c.counts); i > c.prevHighest; i-- {
			if c.counts[i-1] != 0 {
				c.prevHighest = i - 1
				return c.prevHighest
			}
		}
	}
	return c.prevHighest
}

// SetHighestUsed forces recomputation of, then caches, the
// highest-used index.
func (c *Counts) SetHighestUsed() {
	c.prevHighest = c.HighestUsed()
	c.knownHighest = true
}

// ExpandTo grows the array to at least new_size entries, zero-filling
// the new slots. It is a no-op if the array is already large enough.
func (c *Counts) ExpandTo(newSize uint32) {
	if int(newSize) <= len(c.counts) {
		return
	}
	grown := make([]uint32, newSize)
	copy(grown, c.counts)
	c.counts = grown
}
