package decode

import (
	"io"
	"log/slog"

	"github.com/ziprecover/ziprec/internal/aligncache"
	"github.com/ziprecover/ziprec/internal/dbyte"
	"github.com/ziprecover/ziprec/internal/tailcache"
	"github.com/ziprecover/ziprec/internal/wildcard"
)

// corruptionBanner is the framed plain-text/HTML message addByte
// emits the instant it writes a DecodedByte whose OriginalLocation is
// the sentinel co-index 0, i.e. the very first byte after a
// resynchronization. Carried over from dbuffer.C's addByte verbatim,
// per SPEC_FULL.md section 4.8.
const corruptionBanner = "\n\n" +
	"*******************************************\n" +
	"***                                     ***\n" +
	"***      Compressed Data Corrupted      ***\n" +
	"***                                     ***\n" +
	"*******************************************\n\n"

// Buffer is the sliding-window decode engine: it accepts literals,
// copies, and discontinuity markers from an external DEFLATE-family
// parser, emits DecodedBytes to an output sink, and accumulates a
// per-discontinuity replacement table for later alignment.
//
// Grounded on original_source/dbuffer.C's DecodeBuffer class; state
// fields mirror its private members with Go-idiomatic types (slices
// instead of raw New/Free pointers, an io.Writer sink instead of a
// FILE*).
type Buffer struct {
	refWindow uint32
	deflate64 bool

	window []dbyte.DecodedByte
	bufPtr uint32

	numBytes        uint64
	discontinuities uint32

	replacements    []dbyte.DecodedByte
	highestReplaced uint32
	wildcardCounts  *wildcard.Counts

	out             io.Writer
	writer          *dbyte.Writer
	format          dbyte.WriteFormat
	unknownChar     byte
	friendlyName    string
	testMode        bool
	showErrors      bool
	prevCorrect     bool

	backing BackingOpener

	in         io.ReadSeeker
	dataStart  int64
	filebuffer []dbyte.DecodedByte

	logger *slog.Logger

	tailCache  *tailcache.Cache
	tailID     string
	generation uint64

	alignCache *aligncache.Cache
}

// BackingFile is what WriteUpdatedByte needs from a reopened backing
// DB file: seekable read-write access plus a Close it can defer.
type BackingFile interface {
	io.ReadWriteSeeker
	io.Closer
}

// BackingOpener reopens a Buffer's backing DB file for an in-place
// single-word patch (WriteUpdatedByte). Tests substitute an in-memory
// BackingFile; production callers open the named file read-write.
type BackingOpener func() (BackingFile, error)

// New returns a Buffer configured for a fresh decode. out receives
// the formatted output stream as bytes are added; it may be nil for
// a dry run producing only statistics and a replacement table.
func New(out io.Writer, format dbyte.WriteFormat, unknownChar byte, friendlyName string, deflate64, testMode bool) *Buffer {
	refWindow := uint32(dbyte.ReferenceWindowDeflate)
	if deflate64 {
		refWindow = dbyte.ReferenceWindowDeflate64
	}
	b := &Buffer{
		refWindow:    refWindow,
		deflate64:    deflate64,
		window:       make([]dbyte.DecodedByte, refWindow),
		out:          out,
		writer:       dbyte.NewWriter(format, unknownChar),
		format:       format,
		unknownChar:  unknownChar,
		friendlyName: friendlyName,
		testMode:     testMode,
		prevCorrect:  true,
		logger:       slog.Default(),
	}
	b.clearReferenceWindow(true)
	b.SetReplacements(nil)
	return b
}

// SetLogger overrides the Buffer's logger (default slog.Default()),
// used for alignment-search tracing.
func (b *Buffer) SetLogger(logger *slog.Logger) { b.logger = logger }

// SetBackingOpener installs the function WriteUpdatedByte uses to
// reopen the backing DB file.
func (b *Buffer) SetBackingOpener(opener BackingOpener) { b.backing = opener }

// SetTailCache installs a tailcache.Cache for CopyBufferTail to consult.
// id identifies this Buffer's stream (typically its input filename)
// across cache entries; it should be unique per backing file.
func (b *Buffer) SetTailCache(cache *tailcache.Cache, id string) {
	b.tailCache = cache
	b.tailID = id
}

// SetAlignCache installs an aligncache.Cache for AlignDiscontinuity to
// consult before rescanning a discontinuity it has already resolved.
func (b *Buffer) SetAlignCache(cache *aligncache.Cache) { b.alignCache = cache }

// ReferenceWindow returns the configured window size (32768 or 65536).
func (b *Buffer) ReferenceWindow() uint32 { return b.refWindow }

// TotalBytes returns the number of DecodedBytes emitted so far.
func (b *Buffer) TotalBytes() uint64 { return b.numBytes }

// Discontinuities returns the number of discontinuities encountered.
func (b *Buffer) Discontinuities() uint32 { return b.discontinuities }

// Offset returns the window's current write cursor.
func (b *Buffer) Offset() uint32 { return b.bufPtr }

// UnknownChar returns the replacement character used for unresolved
// wildcards in text-like output formats.
func (b *Buffer) UnknownChar() byte { return b.unknownChar }

func (b *Buffer) writeOut(d dbyte.DecodedByte) error {
	if b.out == nil {
		return nil
	}
	return b.writer.WriteDecodedByte(b.out, d)
}

// AddByte writes one DecodedByte at the window's write cursor,
// advances it modulo the window size, and emits it to the output
// sink. A DecodedByte whose OriginalLocation is the corruption
// sentinel (co-index 0) triggers the framed corruption banner instead
// of being written as a regular character, for PlainText/HTML sinks.
//
// Grounded on DecodeBuffer::addByte(DecodedByte).
func (b *Buffer) AddByte(d dbyte.DecodedByte) error {
	b.window[b.bufPtr] = d
	var err error
	if b.out != nil {
		if d.OriginalLocation() == 0 && (b.format == dbyte.FormatPlainText || b.format == dbyte.FormatHTML) {
			err = b.writer.WriteMessage(b.out, corruptionBanner)
		} else {
			err = b.writeOut(d)
		}
	}
	b.bufPtr = (b.bufPtr + 1) % b.refWindow
	b.numBytes++
	b.generation++
	return err
}

// AddLiteral writes a plain original literal byte.
//
// Grounded on DecodeBuffer::addByte(unsigned char).
func (b *Buffer) AddLiteral(c byte) error {
	return b.AddByte(dbyte.NewLiteral(c))
}

// AddLiteralConfidence writes a reconstructed literal with the given
// confidence band.
//
// Grounded on DecodeBuffer::addByte(unsigned char, unsigned).
func (b *Buffer) AddLiteralConfidence(c byte, confidence uint) error {
	return b.AddByte(dbyte.NewReconstructed(c, confidence))
}

// AddCopy emits length DecodedBytes by copying from distance bytes
// back in the window, one at a time (so a copy whose distance is
// smaller than its length correctly repeats the pattern it is
// building, e.g. distance=2 length=4 emits the alternating byte the
// original two bytes describe). If a copied slot is itself a
// wildcard, the wildcard's co-index propagates unchanged — AddByte
// just copies the 32-bit word.
//
// Grounded on DecodeBuffer::copyString.
func (b *Buffer) AddCopy(length, distance uint32) error {
	for i := uint32(0); i < length; i++ {
		src := (b.refWindow + b.bufPtr - distance) % b.refWindow
		if err := b.AddByte(b.window[src]); err != nil {
			return err
		}
	}
	return nil
}

// AddDiscontinuity emits a discontinuity marker recording the
// maximum back-reference distance active at the resynchronization
// point (capped by the window size by the caller). If clear, the
// reference window and replacement table gain a fresh W-slot region
// (discontinuities increments); otherwise only the window's
// original-location stamps are rewound, used when the very first
// record in a stream is a discontinuity and there is no prior history
// to invalidate.
//
// Grounded on DecodeBuffer::addDiscontinuityMarker.
func (b *Buffer) AddDiscontinuity(maxBackref uint32, clear bool) error {
	marker := dbyte.NewDiscontinuityMarker(maxBackref)
	err := b.AddByte(marker)
	if clear {
		b.clearReferenceWindow(false)
	} else {
		b.rewindReferenceWindow()
	}
	return err
}

// clearReferenceWindow starts a fresh reference window: on init it
// just zeroes the discontinuity count, otherwise it increments the
// discontinuity count and grows the replacement table by one more
// window's worth of self-referential slots.
//
// Grounded on DecodeBuffer::clearReferenceWindow.
func (b *Buffer) clearReferenceWindow(initial bool) {
	if initial {
		b.discontinuities = 0
	} else {
		b.discontinuities++
		want := uint32(b.discontinuities+1) * b.refWindow
		if want > uint32(len(b.replacements)) {
			b.ExpandReplacements(want - uint32(len(b.replacements)))
		}
	}
	b.rewindReferenceWindow()
}

// rewindReferenceWindow stamps every window slot with a descending
// self-referential location (so an unresolved copy into stale window
// content reads back as "reference to a slot that doesn't exist yet",
// matching the original's sentinel convention) and resets the write
// cursor to zero.
//
// Grounded on DecodeBuffer::rewindReferenceWindow.
func (b *Buffer) rewindReferenceWindow() {
	loc := uint32(b.discontinuities+1) * b.refWindow
	for i := uint32(0); i < b.refWindow; i++ {
		b.window[i].SetOriginalLocation(loc - i)
	}
	b.bufPtr = 0
}

// CopyBufferTail returns the last n literal bytes written (n capped
// at the window size), substituting UnknownChar for any non-literal
// slot. Used to expose recent context to an external guesser.
//
// When a tailcache.Cache is installed (SetTailCache), repeated calls
// for the same write generation and length are served from it instead
// of re-walking the window.
//
// Grounded on DecodeBuffer::copyBufferTail.
func (b *Buffer) CopyBufferTail(n uint32) []byte {
	if n > b.refWindow {
		n = b.refWindow
	}

	var cacheKey tailcache.Key
	if b.tailCache != nil {
		cacheKey = tailcache.Key{Buffer: b.tailID, Generation: b.generation, Length: n}
		if cached, ok := b.tailCache.Get(cacheKey); ok {
			return cached
		}
	}

	result := make([]byte, n)
	pos := b.bufPtr
	for i := n; i > 0; i-- {
		if pos > 0 {
			pos--
		} else {
			pos = b.refWindow - 1
		}
		d := b.window[pos]
		if d.IsLiteral() {
			result[i-1] = d.ByteValue()
		} else {
			result[i-1] = b.unknownChar
		}
	}

	if b.tailCache != nil {
		b.tailCache.Add(cacheKey, result)
	}
	return result
}
