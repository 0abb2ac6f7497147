package huffman

import "testing"

// TestCanonicalCodesMatchRFC1951Example builds the textbook example
// from RFC 1951 section 3.2.2: symbols A-D with lengths 2,1,3,3 should
// yield codes 10,0,110,111.
func TestCanonicalCodesMatchRFC1951Example(t *testing.T) {
	lt := NewLengthTable()
	lt.AddSymbol(0, 2) // A
	lt.AddSymbol(1, 1) // B
	lt.AddSymbol(2, 3) // C
	lt.AddSymbol(3, 3) // D

	codes := BuildCanonicalCodes(lt)
	want := map[Symbol]string{0: "10", 1: "0", 2: "110", 3: "111"}
	if len(codes) != len(want) {
		t.Fatalf("got %d codes, want %d", len(codes), len(want))
	}
	for _, c := range codes {
		if got := c.Code.String(); got != want[c.Symbol] {
			t.Fatalf("symbol %d code = %q, want %q", c.Symbol, got, want[c.Symbol])
		}
	}
}

func TestBuildTreeRoundTripsDefaultLiterals(t *testing.T) {
	lt := NewLengthTable()
	lt.MakeDefaultLiterals()
	codes := BuildCanonicalCodes(lt)

	tree := BuildTree(lt, 9)
	for _, c := range codes {
		data := packBitsReversed(c.Code)
		cur := NewBitCursor(data)
		sym, ok := tree.NextSymbol(cur)
		if !ok {
			t.Fatalf("symbol %d (code %s) did not decode", c.Symbol, c.Code)
		}
		if sym != c.Symbol {
			t.Fatalf("decoded symbol %d, want %d for code %s", sym, c.Symbol, c.Code)
		}
		if cur.BitPosition() != uint64(c.Code.Length) {
			t.Fatalf("consumed %d bits, want %d for code %s", cur.BitPosition(), c.Code.Length, c.Code)
		}
	}
}

// packBitsReversed lays out a VarBits code into a byte slice the way
// BitCursor.ReadBitsReversed expects to find it: the code's MSB as
// the first bit of the stream.
func packBitsReversed(v VarBits) []byte {
	n := (v.Length + 7) / 8 * 8
	if n == 0 {
		n = 8
	}
	buf := make([]byte, n/8)
	for i := uint(0); i < v.Length; i++ {
		bit := (v.Bits >> (v.Length - 1 - i)) & 1
		if bit == 1 {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return buf
}
