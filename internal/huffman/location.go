package huffman

// Location walks a LengthTable one (length-level, offset) step at a
// time, mirroring the original HuffmanLocation used to drive
// addSymbol/advanceLocation during canonical code assignment.
type Location struct {
	level  uint
	offset uint
}

// Level returns the code length the location currently sits at.
func (l Location) Level() uint { return l.level }

// Offset returns the location's position within its current level.
func (l Location) Offset() uint { return l.offset }

// NewLevel moves the location to the start of a new length level.
func (l *Location) NewLevel(level uint) {
	l.level = level
	l.offset = 0
}

// IncrOffset advances within the current level.
func (l *Location) IncrOffset() { l.offset++ }
