package decode

import "github.com/ziprecover/ziprec/internal/dbyte"

// NumReplacements returns the current size of the replacement table.
func (b *Buffer) NumReplacements() uint32 { return uint32(len(b.replacements)) }

// HighestReplaced returns the highest co-index ever written via
// SetReplacement/SetReplacementByte.
func (b *Buffer) HighestReplaced() uint32 { return b.highestReplaced }

// Replacements returns the live replacement table. Callers must not
// retain it across a call that may reallocate (ExpandReplacements,
// SetReplacements).
func (b *Buffer) Replacements() []dbyte.DecodedByte { return b.replacements }

// SetReplacements bulk-loads the replacement table, used when opening
// a DB file. A nil src clears the table.
//
// Grounded on DecodeBuffer::setReplacements.
func (b *Buffer) SetReplacements(src []dbyte.DecodedByte) {
	b.highestReplaced = 0
	if src == nil {
		b.replacements = nil
		return
	}
	b.replacements = make([]dbyte.DecodedByte, len(src))
	copy(b.replacements, src)
}

// SetReplacement writes one slot of the replacement table, clearing
// the wildcard's occurrence count (it is now resolved) and advancing
// the highest-replaced watermark. Co-index 0 is a permanent sentinel
// and is always rejected (Open Question (b), see DESIGN.md).
//
// Grounded on DecodeBuffer::setReplacement(size_t, const DecodedByte&).
func (b *Buffer) SetReplacement(which uint32, repl dbyte.DecodedByte) error {
	if which == 0 || which >= uint32(len(b.replacements)) {
		return ErrReplacementOutOfRange
	}
	b.replacements[which] = repl
	if b.wildcardCounts != nil && repl.IsLiteral() {
		b.wildcardCounts.Clear(which)
	}
	if which > b.highestReplaced {
		b.highestReplaced = which
	}
	return nil
}

// SetReplacementByte writes a reconstructed literal into slot which
// at the given confidence.
//
// Grounded on DecodeBuffer::setReplacement(size_t, uint8_t, unsigned).
func (b *Buffer) SetReplacementByte(which uint32, c byte, confidence uint) error {
	if which == 0 || which >= uint32(len(b.replacements)) {
		return ErrReplacementOutOfRange
	}
	b.replacements[which] = dbyte.NewReconstructed(c, confidence)
	if b.wildcardCounts != nil {
		b.wildcardCounts.Clear(which)
	}
	if which > b.highestReplaced {
		b.highestReplaced = which
	}
	return nil
}

// ExpandReplacements grows the table by added new entries, each
// initialized to refer to its own co-index (still unresolved) per the
// "lazy replacement growth" design note.
//
// Grounded on DecodeBuffer::expandReplacements.
func (b *Buffer) ExpandReplacements(added uint32) {
	start := uint32(len(b.replacements))
	grown := make([]dbyte.DecodedByte, start+added)
	copy(grown, b.replacements)
	for i := start; i < start+added; i++ {
		grown[i].SetOriginalLocation(i)
	}
	b.replacements = grown
}

// ClearReplacements resets the W-sized slice belonging to the given
// discontinuity back to self-referential, unresolved co-indices.
//
// Grounded on DecodeBuffer::clearReplacements.
func (b *Buffer) ClearReplacements(whichDiscont uint32) error {
	if whichDiscont > b.discontinuities || b.replacements == nil {
		return ErrNoReplacementTable
	}
	base := whichDiscont * b.refWindow
	limit := base + b.refWindow
	if limit > uint32(len(b.replacements)) {
		limit = uint32(len(b.replacements))
	}
	for i := base; i < limit; i++ {
		b.replacements[i].SetOriginalLocation(i)
	}
	return nil
}

// CountReplacements returns how many slots in discontinuity
// numDiscont's W-window (capped at maxBackref, or the full window if
// 0) currently hold a resolved literal.
//
// Grounded on DecodeBuffer::countReplacements.
func (b *Buffer) CountReplacements(numDiscont, maxBackref uint32) uint32 {
	if maxBackref == 0 {
		maxBackref = b.refWindow
	}
	base := numDiscont * b.refWindow
	limit := base + maxBackref
	if limit > uint32(len(b.replacements)) {
		limit = uint32(len(b.replacements))
	}
	var count uint32
	for i := base; i < limit; i++ {
		if b.replacements[i].IsLiteral() {
			count++
		}
	}
	return count
}

// HighestReplacement returns the highest resolved index within
// discontinuity numDiscont's first maxBackref slots, or 0 if none are
// resolved. The return value is relative to the discontinuity's base
// (1-based), matching the original's "i - base" result.
//
// Grounded on DecodeBuffer::highestReplacement.
func (b *Buffer) HighestReplacement(numDiscont, maxBackref uint32) uint32 {
	base := numDiscont * b.refWindow
	limit := base + maxBackref
	if limit > uint32(len(b.replacements)) {
		limit = uint32(len(b.replacements))
	}
	for i := limit; i > base; i-- {
		if b.replacements[i-1].IsLiteral() {
			return i - base
		}
	}
	return 0
}

// ApplyReplacement resolves db in place if it is a wildcard with a
// corresponding replacement-table entry, and reports whether the
// replacement was itself a literal. A wildcard whose co-index has no
// table entry at all is left untouched and reported as unresolved.
//
// Grounded on DecodeBuffer::applyReplacement(DecodedByte&).
func (b *Buffer) ApplyReplacement(db *dbyte.DecodedByte) bool {
	if db.IsLiteral() {
		return true
	}
	loc := db.OriginalLocation()
	if loc >= uint32(len(b.replacements)) {
		return false
	}
	*db = b.replacements[loc]
	return db.IsLiteral()
}

// ApplyReplacementAt resolves the which'th byte of the loaded file
// image in place, the same way ApplyReplacement does for a standalone
// DecodedByte.
//
// Grounded on DecodeBuffer::applyReplacement(uint32_t).
func (b *Buffer) ApplyReplacementAt(which uint32) bool {
	if which >= uint32(len(b.filebuffer)) {
		return false
	}
	return b.ApplyReplacement(&b.filebuffer[which])
}

// SetInferredLiterals is the alignment commit step's per-byte loop:
// walking backward from the discontinuity through the post-
// resynchronization literals, it writes each matched literal into the
// replacement table at base+offset+i as an InferredLit copy, or
// copies the original co-index forward for a non-literal position so
// later passes still chase the true source.
//
// Grounded on DecodeBuffer::setInferredLiterals. bytes is the loaded
// file image up to but excluding the discontinuity marker itself, in
// normal forward order (e.g. filebuffer[firstRealByte:discontLoc]);
// walking i=1..len(bytes)-1 reads bytes[len(bytes)-i], reproducing the
// original's bytes[-i] indexing from a pointer parked at the marker.
func (b *Buffer) SetInferredLiterals(whichDiscont uint32, bytes []dbyte.DecodedByte, offset uint32) error {
	if whichDiscont > b.discontinuities || b.replacements == nil {
		return ErrNoReplacementTable
	}
	base := whichDiscont*b.refWindow + offset
	n := uint32(len(bytes))
	for i := uint32(1); i < n && i+offset < b.refWindow; i++ {
		d := bytes[n-i]
		switch {
		case d.IsLiteral():
			b.replacements[base+i].SetInferredByteValue(d.ByteValue())
			b.replacements[base+i].SetConfidence(0xDF)
		case d.IsReference():
			b.replacements[base+i].SetOriginalLocation(d.OriginalLocation())
		}
	}
	return nil
}
