package decode

import (
	"bytes"
	"testing"

	"github.com/ziprecover/ziprec/internal/dbyte"
)

func newTestBuffer(t *testing.T) *Buffer {
	t.Helper()
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatDB, '?', "test", false, false)
	b.ExpandReplacements(b.ReferenceWindow())
	return b
}

func TestSetReplacementRejectsZeroIndex(t *testing.T) {
	b := newTestBuffer(t)
	if err := b.SetReplacement(0, dbyte.NewLiteral('x')); err == nil {
		t.Fatal("expected an error for co-index 0")
	}
}

func TestSetReplacementByteTracksHighest(t *testing.T) {
	b := newTestBuffer(t)
	if err := b.SetReplacementByte(5, 'a', dbyte.ConfidenceUser); err != nil {
		t.Fatal(err)
	}
	if err := b.SetReplacementByte(3, 'b', dbyte.ConfidenceUser); err != nil {
		t.Fatal(err)
	}
	if b.HighestReplaced() != 5 {
		t.Fatalf("HighestReplaced() = %d, want 5", b.HighestReplaced())
	}
}

func TestClearReplacementsResetsOneWindow(t *testing.T) {
	b := newTestBuffer(t)
	if err := b.SetReplacementByte(5, 'a', dbyte.ConfidenceUser); err != nil {
		t.Fatal(err)
	}
	if err := b.ClearReplacements(0); err != nil {
		t.Fatal(err)
	}
	if b.Replacements()[5].IsLiteral() {
		t.Fatal("expected slot 5 to be unresolved after ClearReplacements")
	}
	if b.Replacements()[5].OriginalLocation() != 5 {
		t.Fatalf("slot 5 originalLocation = %d, want 5 (self-referential)", b.Replacements()[5].OriginalLocation())
	}
}

func TestCountAndHighestReplacement(t *testing.T) {
	b := newTestBuffer(t)
	for _, i := range []uint32{2, 4, 6} {
		if err := b.SetReplacementByte(i, 'z', dbyte.ConfidenceUser); err != nil {
			t.Fatal(err)
		}
	}
	if got := b.CountReplacements(0, 10); got != 3 {
		t.Fatalf("CountReplacements = %d, want 3", got)
	}
	// 1-based relative to the window base: slot 6 reports 7.
	if got := b.HighestReplacement(0, 10); got != 7 {
		t.Fatalf("HighestReplacement = %d, want 7", got)
	}
}

func TestApplyReplacementResolvesWildcard(t *testing.T) {
	b := newTestBuffer(t)
	if err := b.SetReplacementByte(7, 'q', dbyte.ConfidenceUser); err != nil {
		t.Fatal(err)
	}
	var wildcard dbyte.DecodedByte
	wildcard.SetOriginalLocation(7)
	if ok := b.ApplyReplacement(&wildcard); !ok {
		t.Fatal("expected ApplyReplacement to succeed")
	}
	if !wildcard.IsLiteral() || wildcard.ByteValue() != 'q' {
		t.Fatalf("resolved byte = %v, want literal 'q'", wildcard)
	}
}

func TestApplyReplacementLeavesUnresolvedOutOfRange(t *testing.T) {
	b := newTestBuffer(t)
	var wildcard dbyte.DecodedByte
	wildcard.SetOriginalLocation(uint32(len(b.Replacements())) + 10)
	if ok := b.ApplyReplacement(&wildcard); ok {
		t.Fatal("expected ApplyReplacement to fail for an out-of-range co-index")
	}
}

func TestSetInferredLiteralsCopiesRealHistory(t *testing.T) {
	b := newTestBuffer(t)
	// "l" is never consulted: the loop walks i=1..len(history)-1, reading
	// history[len-i], so only the last three bytes are used.
	history := []dbyte.DecodedByte{
		dbyte.NewLiteral('l'), dbyte.NewLiteral('a'), dbyte.NewLiteral('z'),
		dbyte.NewLiteral('y'),
	}
	if err := b.SetInferredLiterals(0, history, 10); err != nil {
		t.Fatal(err)
	}
	// offset=10, base=10: history[-1]="y" lands at 11, [-2]="z" at 12, [-3]="a" at 13.
	want := map[uint32]byte{11: 'y', 12: 'z', 13: 'a'}
	for slot, c := range want {
		got := b.Replacements()[slot]
		if !got.IsLiteral() || got.ByteValue() != c {
			t.Fatalf("replacement[%d] = %v, want literal %q", slot, got, c)
		}
		if !got.IsInferredLiteral() {
			t.Fatalf("replacement[%d] should be tagged InferredLit", slot)
		}
	}
}
