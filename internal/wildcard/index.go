// Package wildcard builds an inverted index from wildcard co-index to
// the positions in a decoded buffer that reference it, so that once a
// co-index is resolved every occurrence can be patched in one pass
// instead of rescanning the whole buffer.
package wildcard

import "github.com/ziprecover/ziprec/internal/dbyte"

// Index maps each wildcard co-index in [0, size) to the list of byte
// positions that carry it, built in two passes over a decoded buffer:
// one to size each co-index's location list, one to fill it. Grounded
// on original_source/index.h/index.C's WildcardIndex, whose two-pass
// count-then-fill shape this mirrors exactly; Fr::NewPtr arrays become
// plain Go slices.
type Index struct {
	locations [][]uint32
}

// Build scans bytes and returns an Index sized for co-indices in
// [0, maxRef). Only back-reference bytes below maxRef are indexed;
// anything else is silently skipped, matching the original's bounds
// check in its fill pass.
func Build(bytes []dbyte.DecodedByte, maxRef uint32) *Index {
	idx := &Index{locations: make([][]uint32, maxRef)}
	if maxRef == 0 {
		return idx
	}

	counts := make([]uint32, maxRef)
	for _, b := range bytes {
		if b.IsReference() {
			wild := b.OriginalLocation()
			if wild < maxRef {
				counts[wild]++
			}
		}
	}
	for i, c := range counts {
		if c > 0 {
			idx.locations[i] = make([]uint32, 0, c)
		}
	}

	for i, b := range bytes {
		if b.IsLiteral() {
			continue
		}
		wild := b.OriginalLocation()
		if wild < maxRef && uint32(len(idx.locations[wild])) < counts[wild] {
			idx.locations[wild] = append(idx.locations[wild], uint32(i))
		}
	}
	return idx
}

// Size returns the number of wildcard co-indices the index covers.
func (idx *Index) Size() int { return len(idx.locations) }

// NumLocations returns how many positions reference the given
// wildcard co-index.
func (idx *Index) NumLocations(wildcard uint32) int {
	if int(wildcard) >= len(idx.locations) {
		return 0
	}
	return len(idx.locations[wildcard])
}

// Location returns the index'th position referencing wildcard, or
// false if out of range.
func (idx *Index) Location(wildcard uint32, index int) (uint32, bool) {
	if int(wildcard) >= len(idx.locations) {
		return 0, false
	}
	locs := idx.locations[wildcard]
	if index < 0 || index >= len(locs) {
		return 0, false
	}
	return locs[index], true
}

// Locations returns the full position list for wildcard, or nil if it
// has none (or is out of range).
func (idx *Index) Locations(wildcard uint32) []uint32 {
	if int(wildcard) >= len(idx.locations) {
		return nil
	}
	return idx.locations[wildcard]
}
