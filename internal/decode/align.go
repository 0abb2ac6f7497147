package decode

import (
	"math"

	"github.com/ziprecover/ziprec/internal/aligncache"
	"github.com/ziprecover/ziprec/internal/dbyte"
)

// byteValues extracts the raw byte value of every DecodedByte in ds,
// substituting 0 for a non-literal slot, for hashing into an
// aligncache key. Confidence and wildcard state don't affect which
// offset scoreAlignment prefers closely enough to be worth folding
// into the key, so they're left out.
func byteValues(ds []dbyte.DecodedByte) []byte {
	out := make([]byte, len(ds))
	for i, d := range ds {
		if d.IsLiteral() {
			out[i] = d.ByteValue()
		}
	}
	return out
}

// minDiscOverlap is the smallest number of matching literal/replacement
// pairs an offset must produce before it is even considered.
//
// Grounded on original_source/dbuffer.C's MIN_DISC_OVERLAP.
const minDiscOverlap = 12

// computeByteWeights scores each byte value inversely by how often it
// occurs in bytes: rare bytes get a higher weight so a single rare-byte
// match pins an alignment far more strongly than a run of common ones
// (spaces, 'e', etc.) would.
//
// Grounded on dbuffer.C's compute_byte_weights.
func computeByteWeights(bytes []dbyte.DecodedByte) [256]float64 {
	var counts [256]int
	var weights [256]float64
	total := 0
	for _, d := range bytes {
		if d.IsLiteral() {
			counts[d.ByteValue()]++
			total++
		}
	}
	if total > 0 {
		avg := float64(total) / 256
		for i := range weights {
			if counts[i] > 0 {
				weights[i] = avg / float64(counts[i])
			} else {
				weights[i] = 1.0
			}
		}
	}
	return weights
}

// scoreAlignment compares bytes[offset:numBytes] (the pre-discontinuity
// literal history) against replacements[limit-i] for matching i, where
// limit = numBytes+offset, accumulating a confidence- and rarity-
// weighted score plus the raw count/correct tallies the caller uses for
// the minimum-overlap and early-termination checks.
//
// Grounded on dbuffer.C's score_alignment.
func scoreAlignment(bytes, replacements []dbyte.DecodedByte, numBytes, offset uint32, byteWeights [256]float64) (score float64, count, correct uint32) {
	limit := numBytes + offset
	for i := offset; i < numBytes; i++ {
		db1 := bytes[i]
		db2 := replacements[limit-i]
		if !db1.IsLiteral() || !db2.IsLiteral() {
			continue
		}
		count++
		weight := float64(db1.Confidence()) * float64(db2.Confidence())
		if db1.ByteValue() == db2.ByteValue() {
			score += weight * byteWeights[db1.ByteValue()]
			correct++
		} else {
			score -= weight * byteWeights[db1.ByteValue()]
		}
	}
	return score / (float64(dbyte.ConfidenceLevels) * float64(dbyte.ConfidenceLevels)), count, correct
}

// AlignDiscontinuity finds the offset at which the replacement table's
// guessed pre-corruption history lines up best with the literal bytes
// that precede the which-th discontinuity, and on success rewrites that
// discontinuity's replacement slots with the real, now-known literal
// values and patches the marker's recorded size.
//
// which beyond the known discontinuity count is a no-op success, as in
// the original (AlignDiscontinuities relies on this to call every index
// up to and including m_discontinuities uniformly).
//
// Grounded on DecodeBuffer::alignDiscontinuity. The original additionally
// widens max_repl up to discont_loc when max_repl is already smaller
// (a "boundary consistency" adjustment that increases max_repl instead
// of capping it); that isn't part of spec.md's description of the
// algorithm and risks reading before the start of the loaded buffer, so
// this port only caps max_repl down to discont_loc and to the reference
// window, never up. See DESIGN.md.
func (b *Buffer) AlignDiscontinuity(which, corruptionSize uint32, compressionRatio float64) (bool, error) {
	if which > b.discontinuities {
		return true, nil
	}

	discontLoc := -1
	disc := uint32(0)
	for i, d := range b.filebuffer {
		if d.IsDiscontinuity() {
			cur := disc
			disc++
			if cur >= which {
				discontLoc = i
				break
			}
		}
	}
	if discontLoc < 0 {
		return false, ErrDiscontinuityNotFound
	}

	maxRepl := b.HighestReplacement(which, b.refWindow) % b.refWindow
	if maxRepl > uint32(discontLoc) {
		maxRepl = uint32(discontLoc)
	}
	if maxRepl > b.refWindow {
		maxRepl = b.refWindow
	}

	fileBuffer := b.filebuffer[uint32(discontLoc)-maxRepl : uint32(discontLoc)]

	base := which * b.refWindow
	limit := base + b.refWindow
	if limit > uint32(len(b.replacements)) {
		limit = uint32(len(b.replacements))
	}
	replacements := b.replacements[base:limit]

	var cacheKey []byte
	if b.alignCache != nil {
		cacheKey = aligncache.Key(byteValues(fileBuffer), byteValues(replacements), corruptionSize, compressionRatio)
		if cached, found, err := b.alignCache.Lookup(cacheKey); err != nil {
			return false, err
		} else if found {
			if cached >= maxRepl {
				return false, ErrAlignmentFailed
			}
			return b.applyAlignment(which, discontLoc, cached)
		}
	}

	totalCount := float64(b.CountReplacements(which, maxRepl))
	byteWeights := computeByteWeights(fileBuffer)

	bestScore := 0.0
	bestOffset := maxRepl
	expectedGap := float64(corruptionSize) * compressionRatio

	for offset := uint32(1); offset+2*minDiscOverlap < maxRepl; offset++ {
		score, count, correct := scoreAlignment(fileBuffer, replacements, maxRepl, offset, byteWeights)
		if correct < minDiscOverlap {
			continue
		}
		score *= math.Sqrt(float64(count) / totalCount)
		if expectedGap > 0 {
			score *= math.Sqrt(math.Abs(expectedGap - float64(offset)))
		}
		if score > bestScore {
			bestScore = score
			bestOffset = offset
			b.logger.Debug("alignDiscontinuity: candidate",
				"which", which, "offset", offset, "score", score)
		}
		if float64(correct) > totalCount/2 {
			break
		}
	}

	if b.alignCache != nil {
		storeOffset := bestOffset
		if bestOffset >= maxRepl || bestScore <= 0.0 {
			storeOffset = maxRepl
		}
		if err := b.alignCache.Store(cacheKey, storeOffset); err != nil {
			return false, err
		}
	}

	if bestOffset >= maxRepl || bestScore <= 0.0 {
		return false, ErrAlignmentFailed
	}

	return b.applyAlignment(which, discontLoc, bestOffset)
}

// applyAlignment rewrites the which-th discontinuity's replacement
// slots with the literal values implied by offset and patches the
// marker's recorded size, whether offset came from a fresh scan or an
// aligncache hit.
func (b *Buffer) applyAlignment(which uint32, discontLoc int, offset uint32) (bool, error) {
	if err := b.ClearReplacements(which); err != nil {
		return false, err
	}
	if err := b.SetInferredLiterals(which, b.filebuffer[:discontLoc], offset); err != nil {
		return false, err
	}
	b.filebuffer[discontLoc].SetDiscontinuitySize(uint(offset + 1))
	if err := b.WriteUpdatedByte(uint32(discontLoc)); err != nil {
		return false, err
	}
	return true, nil
}

// AlignDiscontinuities runs AlignDiscontinuity over every discontinuity
// in the loaded file, in order, stopping at the first failure. Gap size
// and compression ratio are always 0 — the original never plumbed them
// through either ("//FIXME: get gapsize/comp_ratio").
//
// Grounded on DecodeBuffer::alignDiscontinuities.
func (b *Buffer) AlignDiscontinuities() (bool, error) {
	if len(b.filebuffer) == 0 {
		return false, nil
	}
	first := uint32(0)
	if b.filebuffer[0].IsDiscontinuity() {
		first = 1
	}
	for disc := first; disc <= b.discontinuities; disc++ {
		ok, err := b.AlignDiscontinuity(disc, 0, 0.0)
		if !ok {
			return false, err
		}
	}
	return true, nil
}
