package huffman

// LengthTable collects, per code length, the symbols assigned that
// length — the input a canonical Huffman code is built from. Ported
// from original_source/huffman.C's HuffmanLengthTable: m_counts[0]
// tracks how many symbols were explicitly given length zero (unused),
// so a table that turns out to be all-zero-length can be detected.
type LengthTable struct {
	counts  [maxHuffmanLength]uint16
	symbols [maxHuffmanLength][maxSameLength]Symbol
}

// NewLengthTable returns an empty table.
func NewLengthTable() *LengthTable {
	lt := &LengthTable{}
	for length := range lt.symbols {
		for i := range lt.symbols[length] {
			lt.symbols[length][i] = InvalidSymbol
		}
	}
	return lt
}

// AddSymbol records that sym has the given code length. A length of
// zero means sym is unused; it is counted but not placed in any
// level's symbol list.
func (lt *LengthTable) AddSymbol(sym Symbol, length uint) {
	if length == 0 {
		lt.counts[0]++
		return
	}
	lt.symbols[length][lt.counts[length]] = sym
	lt.counts[length]++
}

// Count returns how many symbols were added at the given length (or,
// for length 0, how many zero-length symbols were added).
func (lt *LengthTable) Count(length uint) uint16 {
	if length >= maxHuffmanLength {
		return 0
	}
	return lt.counts[length]
}

// SymbolAt returns the offset'th symbol added at the given length.
func (lt *LengthTable) SymbolAt(length uint, offset uint16) Symbol {
	if length >= maxHuffmanLength || offset >= lt.counts[length] {
		return InvalidSymbol
	}
	return lt.symbols[length][offset]
}

// Symbol returns the symbol at loc's (level, offset) position.
func (lt *LengthTable) Symbol(loc Location) Symbol {
	return lt.SymbolAt(loc.Level(), uint16(loc.Offset()))
}

// MakeDefaultLiterals fills the table with DEFLATE's fixed
// literal/length code lengths (RFC 1951 section 3.2.6): 8 bits for
// symbols 0-143, 9 bits for 144-255, 7 bits for 256-279, and 8 bits
// for 280-287.
func (lt *LengthTable) MakeDefaultLiterals() {
	i := 0
	for ; i <= 143; i++ {
		lt.AddSymbol(Symbol(i), 8)
	}
	for ; i <= 255; i++ {
		lt.AddSymbol(Symbol(i), 9)
	}
	for ; i <= 279; i++ {
		lt.AddSymbol(Symbol(i), 7)
	}
	for ; i <= 287; i++ {
		lt.AddSymbol(Symbol(i), 8)
	}
}

// MakeDefaultDistances fills the table with DEFLATE's fixed distance
// code lengths: 5 bits for symbols 0-31.
func (lt *LengthTable) MakeDefaultDistances() {
	for i := 0; i <= 31; i++ {
		lt.AddSymbol(Symbol(i), 5)
	}
}

// AdvanceLocation moves loc to the next occupied length level once
// its offset runs past the current level's symbol count. It reports
// false once there are no more occupied levels.
func (lt *LengthTable) AdvanceLocation(loc *Location) bool {
	length := loc.Level()
	if loc.Offset() < uint(lt.Count(length)) {
		return true
	}
	length++
	for length < maxHuffmanLength && lt.Count(length) == 0 {
		length++
	}
	if length >= maxHuffmanLength {
		return false
	}
	loc.NewLevel(length)
	return true
}

// Each calls fn once for every (symbol, length) pair in the table, in
// ascending length then ascending insertion order — the order
// canonical Huffman code assignment requires. It stops early if fn
// returns false.
func (lt *LengthTable) Each(fn func(sym Symbol, length uint) bool) {
	var loc Location
	loc.NewLevel(1)
	if lt.Count(1) == 0 && !lt.AdvanceLocation(&loc) {
		return
	}
	for {
		sym := lt.Symbol(loc)
		if sym == InvalidSymbol {
			return
		}
		if !fn(sym, loc.Level()) {
			return
		}
		loc.IncrOffset()
		if !lt.AdvanceLocation(&loc) {
			return
		}
	}
}
