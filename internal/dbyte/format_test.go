package dbyte

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ziprecover/ziprec/internal/byteio"
)

func TestPlainTextWritesUnknownForWildcard(t *testing.T) {
	w := NewWriter(FormatPlainText, '?')
	var buf bytes.Buffer
	var wildcard DecodedByte
	wildcard.SetOriginalLocation(99)
	if err := w.WriteBuffer(&buf, []DecodedByte{NewLiteral('h'), NewLiteral('i'), wildcard}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "hi?" {
		t.Fatalf("PlainText output = %q, want %q", got, "hi?")
	}
}

func TestHTMLOpensAndClosesTagsOnTypeTransition(t *testing.T) {
	w := NewWriter(FormatHTML, '?')
	var buf bytes.Buffer
	if err := w.WriteHeader(&buf, "", 0, false); err != nil {
		t.Fatal(err)
	}
	buf.Reset()

	literal := NewLiteral('a')
	guessed := NewReconstructed('b', 25) // index 25 -> Guessed
	if err := w.WriteDecodedByte(&buf, literal); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDecodedByte(&buf, guessed); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDecodedByte(&buf, literal); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "<U>") || !strings.Contains(got, "</U>") {
		t.Fatalf("expected <U>/</U> tag pair for a Guessed byte, got %q", got)
	}
	if strings.Index(got, "<U>") > strings.Index(got, "b") {
		t.Fatalf("opening tag must precede the guessed byte: %q", got)
	}
}

func TestHTMLEntityEncoding(t *testing.T) {
	w := NewWriter(FormatHTML, '?')
	var buf bytes.Buffer
	for _, b := range []byte("<&>") {
		if err := w.WriteDecodedByte(&buf, NewLiteral(b)); err != nil {
			t.Fatal(err)
		}
	}
	if got := buf.String(); got != "&lt;&amp;>" {
		t.Fatalf("entity encoding = %q", got)
	}
}

func TestListingAccumulatesAndResetsOnHeader(t *testing.T) {
	w := NewWriter(FormatListing, '?')
	var buf bytes.Buffer
	var wildcard DecodedByte
	wildcard.SetOriginalLocation(7)
	if err := w.WriteBuffer(&buf, []DecodedByte{NewLiteral('a'), wildcard, NewLiteral('b')}); err != nil {
		t.Fatal(err)
	}
	known, total, _ := w.Stats()
	if known != 2 || total != 3 {
		t.Fatalf("Stats() = (%d known, %d total), want (2, 3)", known, total)
	}
	if err := w.WriteHeader(&buf, "", 0, false); err != nil {
		t.Fatal(err)
	}
	known, total, _ = w.Stats()
	if known != 0 || total != 0 {
		t.Fatalf("WriteHeader did not reset Listing totals: (%d, %d)", known, total)
	}
}

func TestListingFooterReportsCompleteness(t *testing.T) {
	w := NewWriter(FormatListing, '?')
	var buf bytes.Buffer
	w.SetOriginalSize(2)
	if err := w.WriteBuffer(&buf, []DecodedByte{NewLiteral('a'), NewLiteral('b')}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFooter(&buf, "out.txt", false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.HasPrefix(got, "+") {
		t.Fatalf("footer for a fully-known stream should start with '+', got %q", got)
	}
}

func TestWriteDBHeaderPatchesDataOffset(t *testing.T) {
	var buf bytes.Buffer
	rw := newSeekableBuffer(&buf)
	if err := WriteDBHeader(rw, ReferenceWindowDeflate); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, []byte(Signature)) {
		t.Fatal("DB header does not start with the expected signature")
	}
	r := bytes.NewReader(raw[len(Signature):])
	offset, err := byteio.ReadUint64(r)
	if err != nil {
		t.Fatal(err)
	}
	if int(offset) != len(raw) {
		t.Fatalf("patched data offset = %d, want %d (end of header)", offset, len(raw))
	}
}

// seekableBuffer adapts a bytes.Buffer to io.WriteSeeker for the test,
// since bytes.Buffer itself doesn't support Seek.
type seekableBuffer struct {
	buf *bytes.Buffer
	pos int64
}

func newSeekableBuffer(buf *bytes.Buffer) *seekableBuffer { return &seekableBuffer{buf: buf} }

func (s *seekableBuffer) Write(p []byte) (int, error) {
	data := s.buf.Bytes()
	if s.pos < int64(len(data)) {
		n := copy(data[s.pos:], p)
		s.pos += int64(n)
		if n < len(p) {
			s.buf.Write(p[n:])
			s.pos += int64(len(p) - n)
		}
		return len(p), nil
	}
	n, err := s.buf.Write(p)
	s.pos += int64(n)
	return n, err
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(s.buf.Len()) + offset
	}
	return s.pos, nil
}
