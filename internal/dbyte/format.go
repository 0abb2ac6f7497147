package dbyte

import (
	"fmt"
	"io"

	"github.com/ziprecover/ziprec/internal/byteio"
)

// WriteFormat selects how a Writer renders DecodedBytes. Matches
// spec.md section 6's output-format list; the original's WFMT_Buffered
// (an unfinished "//FIXME" stub in dbyte.C) has no host here.
type WriteFormat int

const (
	FormatNone WriteFormat = iota
	FormatPlainText
	FormatDB
	FormatHTML
	FormatListing
)

var openTag = map[ByteType]string{
	Unknown:       "<B>",
	WildGuess:     "<DFN>",
	Guessed:       "<U>",
	Reconstructed: "<I>",
	UserSupplied:  "<EM>",
	InferredLit:   "<S>",
	Literal:       "",
}

var closeTagText = map[ByteType]string{
	Unknown:       "</B>",
	WildGuess:     "</DFN>",
	Guessed:       "</U>",
	Reconstructed: "</I>",
	UserSupplied:  "</EM>",
	InferredLit:   "</S>",
	Literal:       "",
}

// Writer renders a stream of DecodedBytes in one WriteFormat. It
// holds the per-session state the original kept in static class
// members (HTML tag tracking, Listing totals) as ordinary fields
// instead, so that two Writers never interfere with each other.
type Writer struct {
	format      WriteFormat
	unknownChar byte
	usePreTag   bool

	prevType     ByteType
	prevHTMLChar byte

	totalBytes   uint64
	knownBytes   uint64
	originalSize uint64
}

// NewWriter returns a Writer for the given format. unknownChar is the
// placeholder byte used for wildcards in PlainText output; pass 0 to
// get DefaultUnknown.
func NewWriter(format WriteFormat, unknownChar byte) *Writer {
	if unknownChar == 0 {
		unknownChar = DefaultUnknown
	}
	return &Writer{format: format, unknownChar: unknownChar, prevType: Literal}
}

// UsePreTag switches HTML newline rendering to wrap paragraphs in
// <PRE>...</PRE> blocks instead of <br/>/<p/>, mirroring the
// original's USE_PRE_TAG compile-time option as a runtime flag.
func (w *Writer) UsePreTag(use bool) { w.usePreTag = use }

// Stats returns the Listing-format running totals accumulated since
// the last WriteHeader or ClearCounts call.
func (w *Writer) Stats() (known, total, original uint64) {
	return w.knownBytes, w.totalBytes, w.originalSize
}

// AddCounts folds known/total/original into both this Writer's
// session totals and the process-wide globals.
func (w *Writer) AddCounts(known, total, original uint64) {
	w.knownBytes += known
	w.totalBytes += total
	w.originalSize += original
	globalKnownBytes.Add(known)
	globalTotalBytes.Add(total)
	globalOriginalSize.Add(original)
}

// ClearCounts resets this Writer's session totals. Global counters
// are untouched, matching the original's clearCounts/addCounts split.
func (w *Writer) ClearCounts() {
	w.totalBytes = 0
	w.knownBytes = 0
	w.originalSize = 0
}

// SetOriginalSize records the known original size of the stream being
// recovered, for the Listing footer's "complete/incomplete" marker.
func (w *Writer) SetOriginalSize(size uint64) {
	w.originalSize = size
	globalOriginalSize.Add(size)
}

// WriteHeader emits the format's preamble, if any, and resets
// per-session state (HTML tag tracking, Listing totals).
//
// FormatDB requires out to also implement io.Seeker, since the DB
// header reserves a forward-patched byte-count field; every other
// format only needs a plain io.Writer.
func (w *Writer) WriteHeader(out io.Writer, encoding string, referenceWindow uint32, testMode bool) error {
	w.prevType = Literal
	switch w.format {
	case FormatHTML:
		return writeHTMLHeader(out, encoding, testMode)
	case FormatDB:
		seeker, ok := out.(io.WriteSeeker)
		if !ok {
			return fmt.Errorf("dbyte: FormatDB header requires a seekable writer")
		}
		return WriteDBHeader(seeker, referenceWindow)
	case FormatListing:
		w.totalBytes = 0
		w.knownBytes = 0
		return nil
	default:
		return nil
	}
}

// WriteDecodedByte renders a single DecodedByte in this Writer's
// format.
func (w *Writer) WriteDecodedByte(out io.Writer, d DecodedByte) error {
	switch w.format {
	case FormatPlainText:
		b := w.unknownChar
		if d.IsLiteral() {
			b = d.ByteValue()
		}
		_, err := out.Write([]byte{b})
		return err
	case FormatDB:
		return byteio.WriteUint32(out, d.OriginalLocation())
	case FormatHTML:
		bt := d.ByteType()
		if bt != w.prevType {
			if err := w.closeTag(out, w.prevType); err != nil {
				return err
			}
			if err := w.openTag(out, bt); err != nil {
				return err
			}
			w.prevType = bt
		}
		b := w.unknownChar
		if d.IsLiteral() {
			b = d.ByteValue()
		}
		return w.writeHTMLChar(out, b, bt < InferredLit, bt)
	case FormatListing:
		w.totalBytes++
		globalTotalBytes.Add(1)
		if d.IsLiteral() {
			w.knownBytes++
			globalKnownBytes.Add(1)
		}
		return nil
	default:
		return nil
	}
}

// WriteBuffer renders every DecodedByte in buf, stopping at the first
// error.
func (w *Writer) WriteBuffer(out io.Writer, buf []DecodedByte) error {
	for _, d := range buf {
		if err := w.WriteDecodedByte(out, d); err != nil {
			return err
		}
	}
	return nil
}

// WriteMessage renders msg as a run of certain literals, e.g. for the
// corruption banner. It does not affect Listing totals in a way that
// double-counts: each rune goes through WriteDecodedByte like any
// other literal.
func (w *Writer) WriteMessage(out io.Writer, msg string) error {
	for i := 0; i < len(msg); i++ {
		if err := w.WriteDecodedByte(out, NewLiteral(msg[i])); err != nil {
			return err
		}
	}
	return nil
}

// WriteFooter emits the format's closing material: the HTML test-mode
// banner and closing tags, or the Listing summary line.
//
// Listing writes to out directly (the original always wrote its
// summary line to process stdout regardless of the output file in
// use; here the caller decides where "stdout" is by choice of out).
func (w *Writer) WriteFooter(out io.Writer, filename string, testMode bool) error {
	switch w.format {
	case FormatHTML:
		if testMode {
			if _, err := io.WriteString(out, "\n\n\n************** TEST MODE ***************\n"); err != nil {
				return err
			}
		}
		closing := "</BODY></HTML>\n"
		if w.usePreTag {
			closing = "</PRE>" + closing
		}
		_, err := io.WriteString(out, closing)
		return err
	case FormatListing:
		var marker string
		if w.originalSize != 0 {
			if w.originalSize == w.knownBytes {
				marker = "+"
			} else {
				marker = "-"
			}
			if _, err := fmt.Fprintf(out, "%s%10d ", marker, w.originalSize); err != nil {
				return err
			}
		} else if _, err := io.WriteString(out, "        ??? "); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "%10d %10d %s\n", w.knownBytes, w.totalBytes, filename)
		return err
	default:
		return nil
	}
}

func (w *Writer) openTag(out io.Writer, bt ByteType) error {
	tag := openTag[bt]
	if tag == "" {
		return nil
	}
	_, err := io.WriteString(out, tag)
	return err
}

func (w *Writer) closeTag(out io.Writer, bt ByteType) error {
	tag := closeTagText[bt]
	if tag == "" {
		return nil
	}
	_, err := io.WriteString(out, tag)
	return err
}

// writeHTMLChar renders one byte of HTML output, entity-encoding
// '<'/'&', collapsing runs of spaces into &nbsp;, and turning
// newlines into paragraph or line breaks (or <PRE> breaks, under
// UsePreTag) while keeping the current provenance tag open across the
// break. showNewlines additionally renders an explicit ↩/↳ glyph for
// newlines and carriage returns, used for anything less certain than
// an inferred or literal byte.
func (w *Writer) writeHTMLChar(out io.Writer, c byte, showNewlines bool, bt ByteType) error {
	defer func() { w.prevHTMLChar = c }()
	switch c {
	case '<':
		_, err := io.WriteString(out, "&lt;")
		return err
	case '&':
		_, err := io.WriteString(out, "&amp;")
		return err
	case '\t':
		if w.usePreTag {
			break
		}
		_, err := io.WriteString(out, " &nbsp; ")
		return err
	case '\n':
		return w.writeHTMLNewline(out, showNewlines, bt)
	case '\r':
		if showNewlines {
			_, err := io.WriteString(out, "&#x21B3;")
			return err
		}
	case ' ':
		if w.usePreTag {
			break
		}
		if w.prevHTMLChar == ' ' {
			_, err := io.WriteString(out, "&nbsp;")
			return err
		}
		_, err := out.Write([]byte{'\n'})
		return err
	}
	_, err := out.Write([]byte{c})
	return err
}

func (w *Writer) writeHTMLNewline(out io.Writer, showNewlines bool, bt ByteType) error {
	if showNewlines {
		if _, err := io.WriteString(out, "&#x21A9;"); err != nil {
			return err
		}
	}
	if err := w.closeTag(out, bt); err != nil {
		return err
	}
	var brk string
	switch {
	case w.usePreTag && w.prevHTMLChar == '\n' && !showNewlines:
		brk = "</PRE>&nbsp;\n<PRE>"
	case w.usePreTag:
		brk = "</PRE>\n<PRE>"
	case w.prevHTMLChar == '\n' && !showNewlines:
		brk = "<p/>\n"
	default:
		brk = "<br/>\n"
	}
	if _, err := io.WriteString(out, brk); err != nil {
		return err
	}
	return w.openTag(out, bt)
}

func writeHTMLHeader(out io.Writer, encoding string, testMode bool) error {
	_, err := io.WriteString(out, `<HTML><HEAD>
<STYLE>
/* compressed file recovered/reconstructed by ZipRec */
BODY {
  font-family : arial, verdana, sans-serif;
  color : black; background : white; font-weight: bold;
  }
B { text-decoration: none !important ; font-style: normal !important ; font-weight: normal !important ; color : red ; } /* unknown */
DFN { text-decoration: none !important ; font-style: normal !important ; font-weight: normal !important ; color : orange ; background: #FFFF30 ; } /* low confidence */
U { text-decoration: none !important ; font-style: normal !important ; color : #FF0000 ; background: #FFFF80 ; } /* medium confidence */
I { text-decoration: none !important ; font-style: normal !important ; color : #00D000 ; background: #FFFFA0 ; } /* high confidence */
EM { text-decoration: none !important ; font-style: normal !important ; color : #0040F0 ; background: #FFFFD0 ; } /* user-supplied */
S { text-decoration: none !important ; font-style: normal ; font-weight: normal !important ; color : black ; background: #FFFFF0 ; } /* literal copied across a discontinuity */
</STYLE>
`)
	if err != nil {
		return err
	}
	if encoding != "" {
		if _, err := fmt.Fprintf(out, "<META http-equiv=\"content-type\" content=\"text/html; charset=%s\"\n", encoding); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(out, "</HEAD><BODY>\n"); err != nil {
		return err
	}
	if testMode {
		_, err := io.WriteString(out, "********* TEST MODE ************** TEST MODE **********\n")
		return err
	}
	return nil
}

// WriteDBHeader writes the DB container's fixed-size header: magic,
// a forward-patched byte offset/count for the DecodedByte stream, the
// reference-window size, and zeroed descriptors for the replacement
// table and packet-descriptor block that finalizeDB (internal/decode)
// patches in once their contents are known.
//
// out must support Seek: after reserving the header, WriteDBHeader
// seeks back to patch the just-computed data offset into the offset
// field reserved for it, then returns the cursor to the end of the
// header, ready for the caller to start appending DecodedBytes.
func WriteDBHeader(out io.WriteSeeker, referenceWindow uint32) error {
	if _, err := io.WriteString(out, Signature); err != nil {
		return err
	}
	// dummy offset and byte count for the DecodedByte stream, patched
	// below and by FinalizeDB respectively.
	if err := byteio.WriteUint64(out, 0); err != nil {
		return err
	}
	if err := byteio.WriteUint64(out, 0); err != nil {
		return err
	}
	if err := byteio.WriteUint32(out, referenceWindow); err != nil {
		return err
	}
	if err := byteio.WriteUint16(out, BytesPerDecodedByte); err != nil {
		return err
	}
	if err := byteio.WriteUint16(out, 0); err != nil { // dummy discontinuity count
		return err
	}
	// dummy offset/count/highest for the replacement table.
	if err := byteio.WriteUint64(out, 0); err != nil {
		return err
	}
	if err := byteio.WriteUint32(out, 0); err != nil {
		return err
	}
	if err := byteio.WriteUint32(out, 0); err != nil {
		return err
	}
	// dummy offset/count for the packet-descriptor block.
	if err := byteio.WriteUint64(out, 0); err != nil {
		return err
	}
	if err := byteio.WriteUint32(out, 0); err != nil {
		return err
	}
	// padding reserved for future header fields.
	if err := byteio.WriteUint32(out, 0); err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		if err := byteio.WriteUint64(out, 0); err != nil {
			return err
		}
	}
	dataOffset, err := out.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := out.Seek(int64(len(Signature)), io.SeekStart); err != nil {
		return err
	}
	if err := byteio.WriteUint64(out, uint64(dataOffset)); err != nil {
		return err
	}
	_, err = out.Seek(dataOffset, io.SeekStart)
	return err
}
