// Package packet holds the DEFLATE packet-descriptor records a DB
// container may carry after its replacement table. DecodeBuffer never
// interprets their contents: OpenInputFile reads them off disk without
// keeping them, and FinalizeDB always writes an empty descriptor list.
// Descriptor is therefore an opaque byte blob rather than a parsed
// struct.
//
// Grounded on original_source/dbuffer.C's treatment of
// DeflatePacketDesc: constructed polymorphically from a FILE*,
// written back with write(), traversed as a linked list via next()/
// setNext(), but never inspected field-by-field by DecodeBuffer.
package packet

import (
	"io"

	"github.com/ziprecover/ziprec/internal/byteio"
)

// Descriptor is one packet record: a length-prefixed blob of raw
// bytes whose structure belongs to whatever packet scanner produced
// it, not to ZipRec's decode engine.
type Descriptor struct {
	Data []byte
}

// ReadDescriptor reads one length-prefixed descriptor from r.
func ReadDescriptor(r io.Reader) (Descriptor, error) {
	length, err := byteio.ReadUint32(r)
	if err != nil {
		return Descriptor{}, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Data: buf}, nil
}

// Write appends the descriptor to w as a length-prefixed blob.
func (d Descriptor) Write(w io.Writer) error {
	if err := byteio.WriteUint32(w, uint32(len(d.Data))); err != nil {
		return err
	}
	_, err := w.Write(d.Data)
	return err
}

// ReadList reads count descriptors from r in order, the layout
// finalizeDB's packet block uses.
func ReadList(r io.Reader, count uint32) ([]Descriptor, error) {
	list := make([]Descriptor, 0, count)
	for i := uint32(0); i < count; i++ {
		d, err := ReadDescriptor(r)
		if err != nil {
			return list, err
		}
		list = append(list, d)
	}
	return list, nil
}

// WriteList writes every descriptor in list to w in order.
func WriteList(w io.Writer, list []Descriptor) error {
	for _, d := range list {
		if err := d.Write(w); err != nil {
			return err
		}
	}
	return nil
}
