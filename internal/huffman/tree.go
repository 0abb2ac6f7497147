package huffman

// Tree is a node-based Huffman decode table: each node looks up a
// fixed number of stream bits at once (its width) and resolves either
// to a symbol, to a child node covering longer codes, or to nothing.
// This is the shape original_source/huffman.C's HuffmanTree method
// names (addChild/addSymbol/nextSymbol/iterate) describe, chosen over
// a flat chunk table so decoding can resume from an arbitrary node
// when a corrupt prefix forces ZipRec to re-synchronize mid-block.
type Tree struct {
	width  uint
	prefix VarBits

	symbols []Symbol
	lengths []uint
	next    []*Tree
}

// NewTree returns an empty root node with the given lookup width.
func NewTree(width uint) *Tree {
	return newTreeNode(width, VarBits{})
}

func newTreeNode(width uint, prefix VarBits) *Tree {
	size := 1 << width
	t := &Tree{
		width:   width,
		prefix:  prefix,
		symbols: make([]Symbol, size),
		lengths: make([]uint, size),
		next:    make([]*Tree, size),
	}
	for i := range t.symbols {
		t.symbols[i] = InvalidSymbol
	}
	return t
}

// AddSymbol inserts sym under the given canonical code, creating child
// nodes as needed when the code is longer than this node's width. It
// reports false if code is shorter than the prefix already consumed
// to reach this node (a malformed call site bug, not a data error).
func (t *Tree) AddSymbol(code VarBits, sym Symbol) bool {
	if code.Length < t.prefix.Length {
		return false
	}
	remaining := code.Length - t.prefix.Length

	if remaining <= t.width {
		tail := code.Bits & mask(remaining)
		fillBits := t.width - remaining
		base := tail << fillBits
		count := uint32(1) << fillBits
		for i := uint32(0); i < count; i++ {
			idx := base + i
			t.symbols[idx] = sym
			t.lengths[idx] = remaining
			t.next[idx] = nil
		}
		return true
	}

	shift := remaining - t.width
	idx := (code.Bits >> shift) & mask(t.width)
	child := t.next[idx]
	if child == nil {
		childPrefix := VarBits{
			Length: t.prefix.Length + t.width,
			Bits:   t.prefix.Bits<<t.width | idx,
		}
		child = newTreeNode(t.width, childPrefix)
		t.AddChild(idx, child)
	}
	return child.AddSymbol(code, sym)
}

// AddChild installs child at idx directly, clearing any symbol that
// previously occupied the slot.
func (t *Tree) AddChild(idx uint32, child *Tree) {
	t.next[idx] = child
	t.symbols[idx] = InvalidSymbol
}

// NextSymbol decodes one symbol from cur, consuming exactly the bits
// its code uses, or reports false if the bits at cur's position don't
// resolve to a known code (an unpopulated slot in an incomplete tree).
func (t *Tree) NextSymbol(cur *BitCursor) (Symbol, bool) {
	width := t.width
	if rem := cur.BitsRemaining(); rem < uint64(width) {
		width = uint(rem)
		if width == 0 {
			return InvalidSymbol, false
		}
	}
	idx := cur.PeekBitsReversed(width)
	if width < t.width {
		idx <<= t.width - width
	}

	if sym := t.symbols[idx]; sym != InvalidSymbol {
		cur.Advance(t.lengths[idx])
		return sym, true
	}
	if child := t.next[idx]; child != nil {
		cur.Advance(t.width)
		return child.NextSymbol(cur)
	}
	return InvalidSymbol, false
}

// Iterate calls fn once per populated (code, symbol) pair reachable
// from this node, in table order, depth-first into children. It stops
// early if fn returns false.
func (t *Tree) Iterate(fn func(code VarBits, sym Symbol) bool) bool {
	seen := make(map[int]bool)
	for idx, sym := range t.symbols {
		if sym != InvalidSymbol {
			if seen[idx] {
				continue
			}
			code := VarBits{
				Length: t.prefix.Length + t.lengths[idx],
				Bits:   t.prefix.Bits<<t.lengths[idx] | (uint32(idx) >> (t.width - t.lengths[idx])),
			}
			if !fn(code, sym) {
				return false
			}
			fillBits := t.width - t.lengths[idx]
			base := (uint32(idx) >> fillBits) << fillBits
			for i := uint32(0); i < uint32(1)<<fillBits; i++ {
				seen[int(base+i)] = true
			}
			continue
		}
		if child := t.next[idx]; child != nil && !seen[idx] {
			if !child.Iterate(fn) {
				return false
			}
			seen[idx] = true
		}
	}
	return true
}

// Dump renders the tree as "code -> symbol" lines for debugging.
func (t *Tree) Dump() string {
	var buf []byte
	t.Iterate(func(code VarBits, sym Symbol) bool {
		buf = append(buf, code.String()...)
		buf = append(buf, " -> "...)
		buf = appendInt(buf, int(sym))
		buf = append(buf, '\n')
		return true
	})
	return string(buf)
}

func appendInt(buf []byte, v int) []byte {
	if v < 0 {
		buf = append(buf, '-')
		v = -v
	}
	if v >= 10 {
		buf = appendInt(buf, v/10)
	}
	return append(buf, byte('0'+v%10))
}
