// Package tailcache memoizes Buffer.CopyBufferTail snapshots.
//
// An external guesser polls the same trailing window repeatedly while
// proposing reconstructions for one discontinuity, and CopyBufferTail
// recomputes the same bytes from scratch on every call. tailcache
// keys each snapshot by the buffer's identity plus a generation
// counter the caller bumps on every write, so repeated polls against
// an unchanged window hit the cache instead of re-walking it.
//
// Grounded on internal/spinner/concurrent.go's block cache
// (p.bcache), which uses the same github.com/dgryski/go-tinylfu admission
// cache keyed on an identity+offset struct.
package tailcache

import (
	"hash/maphash"
	"sync"

	"github.com/dgryski/go-tinylfu"
)

// Key identifies one CopyBufferTail snapshot: a particular buffer
// (by caller-supplied identity, typically a filename), its write
// generation, and the requested tail length.
type Key struct {
	Buffer     string
	Generation uint64
	Length     uint32
}

var seed = maphash.MakeSeed()

func hashKey(k Key) uint64 {
	return maphash.Comparable(seed, k)
}

// Cache is a bounded, recency- and frequency-aware cache of
// CopyBufferTail snapshots. A Cache is safe for concurrent use.
type Cache struct {
	mu   sync.Mutex
	t    *tinylfu.T[Key, []byte]
	pool sync.Pool
}

// New returns a Cache admitting up to size distinct snapshots,
// sampling 10x that many candidates for admission decisions (the
// ratio internal/spinner's block cache uses).
func New(size int) *Cache {
	c := &Cache{pool: sync.Pool{New: func() any { return new([]byte) }}}
	c.t = tinylfu.New[Key, []byte](size, size*10, hashKey, tinylfu.OnEvict(c.evict))
	return c
}

// Get returns the cached tail for key, if present.
func (c *Cache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.Get(key)
}

// Add records tail under key, taking ownership of the slice: callers
// must not mutate it afterward.
func (c *Cache) Add(key Key, tail []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t.Add(key, tail)
}

func (c *Cache) evict(_ Key, _ []byte) {}
