package huffman

// Code pairs a symbol with the canonical Huffman code RFC 1951
// section 3.2.2 assigns it.
type Code struct {
	Symbol Symbol
	Code   VarBits
}

// BuildCanonicalCodes assigns canonical codes to every symbol in lt,
// following RFC 1951's algorithm: count symbols per length, derive the
// first code at each length from the one below it, then hand out
// codes within a length in the order lt holds its symbols (the order
// they were added). The original
// HuffmanLocation/HuffmanTree pairing built codes during a single
// addSymbol pass; this reconstruction (the header describing that
// pairing's exact bit-accounting wasn't recovered, see package doc)
// separates code assignment from tree insertion, which the standard
// algorithm makes safe to do in two passes.
func BuildCanonicalCodes(lt *LengthTable) []Code {
	var maxLen uint
	for length := uint(1); length < maxHuffmanLength; length++ {
		if lt.Count(length) > 0 {
			maxLen = length
		}
	}
	if maxLen == 0 {
		return nil
	}

	nextCode := make([]uint32, maxLen+1)
	var code uint32
	for length := uint(1); length <= maxLen; length++ {
		nextCode[length] = code
		code = (code + uint32(lt.Count(length))) << 1
	}

	var out []Code
	for length := uint(1); length <= maxLen; length++ {
		n := lt.Count(length)
		for offset := uint16(0); offset < n; offset++ {
			sym := lt.SymbolAt(length, offset)
			out = append(out, Code{Symbol: sym, Code: VarBits{Length: length, Bits: nextCode[length]}})
			nextCode[length]++
		}
	}
	return out
}

// BuildTree constructs a decode Tree for lt with the given node width
// and inserts every symbol's canonical code into it.
func BuildTree(lt *LengthTable, width uint) *Tree {
	t := NewTree(width)
	for _, c := range BuildCanonicalCodes(lt) {
		t.AddSymbol(c.Code, c.Symbol)
	}
	return t
}
