// Package byteio implements the fixed-width big-endian integer I/O
// the DB container format (see internal/decode) is built out of.
//
// Every DB field is big-endian regardless of host byte order, so
// unlike internal/zip in the teacher repo (which reads LittleEndian
// ZIP headers with encoding/binary directly) this package wraps
// encoding/binary.BigEndian in a handful of read/write helpers that
// report a short read or write as an error instead of a partial
// result, matching the original C++ byteio.C's all-or-nothing
// contract.
package byteio

import (
	"encoding/binary"
	"io"
)

// ReadUint16 reads a big-endian 16-bit value.
func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint24 reads a big-endian 24-bit value into the low 24 bits of
// a uint32. encoding/binary has no native 3-byte primitive, so the
// shift/mask sequence mirrors the original read24().
func ReadUint24(r io.Reader) (uint32, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
}

// ReadUint32 reads a big-endian 32-bit value.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint64 reads a big-endian 64-bit value.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// WriteUint16 writes a big-endian 16-bit value.
func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint24 writes the low 24 bits of v, big-endian.
func WriteUint24(w io.Writer, v uint32) error {
	buf := [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}
	_, err := w.Write(buf[:])
	return err
}

// WriteUint32 writes a big-endian 32-bit value.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint64 writes a big-endian 64-bit value.
func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
