package decode

import (
	"bytes"
	"testing"

	"github.com/ziprecover/ziprec/internal/dbyte"
)

func TestAddLiteralWritesPlainText(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatPlainText, '?', "test", false, false)
	for _, c := range []byte("hi") {
		if err := b.AddLiteral(c); err != nil {
			t.Fatal(err)
		}
	}
	if got := buf.String(); got != "hi" {
		t.Fatalf("output = %q, want %q", got, "hi")
	}
	if b.TotalBytes() != 2 {
		t.Fatalf("TotalBytes() = %d, want 2", b.TotalBytes())
	}
}

func TestAddCopyRepeatsPattern(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatPlainText, '?', "test", false, false)
	for _, c := range []byte("ab") {
		if err := b.AddLiteral(c); err != nil {
			t.Fatal(err)
		}
	}
	// distance 2, length 4: repeats "ab" twice.
	if err := b.AddCopy(4, 2); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "ababab" {
		t.Fatalf("output = %q, want %q", got, "ababab")
	}
}

func TestAddCopyOverlappingSelfReference(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatPlainText, '?', "test", false, false)
	if err := b.AddLiteral('x'); err != nil {
		t.Fatal(err)
	}
	// distance 1, length 5: repeats the single preceding byte.
	if err := b.AddCopy(5, 1); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "xxxxxx" {
		t.Fatalf("output = %q, want %q", got, "xxxxxx")
	}
}

func TestAddByteEmitsCorruptionBannerForPlainText(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatPlainText, '?', "test", false, false)
	var marker dbyte.DecodedByte
	marker.SetOriginalLocation(0) // sentinel that addByte treats as "corruption here"
	if err := b.AddByte(marker); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got == "" {
		t.Fatal("expected a banner to be written, got empty output")
	}
}

func TestAddDiscontinuityIncrementsCountAndGrowsReplacements(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatDB, '?', "test", false, false)
	if err := b.AddLiteral('a'); err != nil {
		t.Fatal(err)
	}
	if err := b.AddDiscontinuity(100, true); err != nil {
		t.Fatal(err)
	}
	if b.Discontinuities() != 1 {
		t.Fatalf("Discontinuities() = %d, want 1", b.Discontinuities())
	}
	if got, want := b.NumReplacements(), 2*b.ReferenceWindow(); got != want {
		t.Fatalf("NumReplacements() = %d, want %d", got, want)
	}
}

func TestCopyBufferTailUsesUnknownCharForWildcards(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, dbyte.FormatPlainText, '?', "test", false, false)
	if err := b.AddLiteral('a'); err != nil {
		t.Fatal(err)
	}
	if err := b.AddLiteral('b'); err != nil {
		t.Fatal(err)
	}
	tail := b.CopyBufferTail(2)
	if string(tail) != "ab" {
		t.Fatalf("CopyBufferTail(2) = %q, want %q", tail, "ab")
	}
	// the slot before 'a' still holds a self-referential wildcard.
	if tail := b.CopyBufferTail(3); string(tail) != "?ab" {
		t.Fatalf("CopyBufferTail(3) = %q, want %q", tail, "?ab")
	}
}
