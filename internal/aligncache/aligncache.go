// Package aligncache memoizes Buffer.AlignDiscontinuity outcomes on
// disk, keyed by the exact bytes the alignment search scans.
//
// A batch re-run over the same corpus (ziprec batch) recomputes
// the same offset for the same discontinuity every time the surrounding
// literal history and replacement table haven't changed. Persisting the
// winning offset in an embedded KV store lets a later run skip straight
// to the answer instead of rescanning.
//
// The teacher's go.mod requires github.com/cockroachdb/pebble/v2 directly
// but no teacher source file imports it; this package is what finally
// gives that dependency a job, using pebble the way its own documentation
// does (Open, Get, Set, Close) since nothing in the retrieval pack
// exercises its top-level API. Cache keys are hashed with
// github.com/cespare/xxhash/v2, the same library internal/fileid uses to
// fold composite identity fields into a fixed-width key.
package aligncache

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
)

// Cache is a disk-backed memo table from an alignment search's input
// bytes to the offset AlignDiscontinuity found for them.
type Cache struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a Cache backed by a pebble store
// at dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes the byte windows an alignment search would scan
// (fileBuffer and the candidate replacement slots) plus the search
// parameters that change its outcome, into a single lookup key.
func Key(fileBuffer, replacements []byte, corruptionSize uint32, compressionRatio float64) []byte {
	var h xxhash.Digest
	h.Write(fileBuffer)
	h.Write(replacements)
	var tail [12]byte
	binary.BigEndian.PutUint32(tail[0:4], corruptionSize)
	binary.BigEndian.PutUint64(tail[4:12], math.Float64bits(compressionRatio))
	h.Write(tail[:])

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, h.Sum64())
	return key
}

// Lookup returns the previously stored offset for key, if any.
func (c *Cache) Lookup(key []byte) (offset uint32, found bool, err error) {
	value, closer, err := c.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	defer closer.Close()
	if len(value) != 4 {
		return 0, false, nil
	}
	return binary.BigEndian.Uint32(value), true, nil
}

// Store records offset as the alignment result for key.
func (c *Cache) Store(key []byte, offset uint32) error {
	var value [4]byte
	binary.BigEndian.PutUint32(value[:], offset)
	return c.db.Set(key, value[:], pebble.Sync)
}
