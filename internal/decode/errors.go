// Package decode implements DecodeBuffer: the sliding reference
// window, replacement-table lifecycle, DB-format I/O, discontinuity
// alignment, and replacement replay that together reconstruct
// plaintext from a damaged DEFLATE-family stream.
//
// Grounded on original_source/dbuffer.C, method by method (see the
// doc comment above each exported function for its source method
// name). No companion dbuffer.h was retrieved either, so field names
// and private helper shapes are this package's own; the public
// operations and their observable behavior follow dbuffer.C exactly
// where it is unambiguous, and spec.md's component description (§4.3-
// §4.6) where the original carries ui/language-model-only bookkeeping
// (sentinel padding and co-index reversal in loadBytes) outside this
// package's documented surface.
package decode

import "github.com/cockroachdb/errors"

var (
	// ErrMalformedHeader is returned by OpenInputFile when the
	// signature, offsets, or counts in a DB file's header don't check
	// out. The caller must discard the Buffer.
	ErrMalformedHeader = errors.New("decode: malformed DB file header")

	// ErrNoReplacementTable is returned by ApplyReplacements when it has
	// no input, no output, or an empty replacement table, and by
	// ClearReplacements and SetInferredLiterals when no table has been
	// allocated or the discontinuity index exceeds the count seen.
	ErrNoReplacementTable = errors.New("decode: no replacement table")

	// ErrReplacementOutOfRange is returned by SetReplacement and
	// SetReplacementByte for an index outside the table, or for index
	// 0 (the permanent unresolved sentinel).
	ErrReplacementOutOfRange = errors.New("decode: replacement index out of range")

	// ErrDiscontinuityNotFound is returned by AlignDiscontinuity when
	// the requested discontinuity marker isn't present in the loaded
	// file image.
	ErrDiscontinuityNotFound = errors.New("decode: discontinuity not found")

	// ErrAlignmentFailed is returned by AlignDiscontinuity when no
	// candidate offset clears the minimum overlap or scores positive.
	// Not fatal: replacements for that discontinuity are left
	// untouched and the caller sees wildcards in the output.
	ErrAlignmentFailed = errors.New("decode: alignment failed")

	// ErrNoBackingFile is returned by WriteUpdatedByte when the Buffer
	// was not opened against a named, reopenable backing file.
	ErrNoBackingFile = errors.New("decode: no backing file for in-place update")

	// ErrUnresolvedReplacement is returned by ApplyReplacements (replay)
	// when a wildcard's co-index has no corresponding replacement-table
	// entry at all (out of range, not merely still unresolved).
	// ApplyReplacement reports the same case by returning false.
	ErrUnresolvedReplacement = errors.New("decode: wildcard co-index has no replacement slot")
)
