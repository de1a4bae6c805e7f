// Package ioprim implements the byte-I/O primitives every container
// parser in this module needs: big/little-endian fixed-width reads over
// a seekable stream, plus the
// specialised codecs (EBML VINT, ID3v2 synchsafe integers,
// unsynchronisation, ISO-BMFF size headers) the container parsers share.
package ioprim

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cesargomez89/mediatags/internal/model"
)

// Reader wraps an io.ReadSeeker with fixed-width, bounds-checked reads.
// It never partially consumes a multi-byte field: a short read always
// yields ErrIoError with the number of bytes actually wanted.
type Reader struct {
	r io.ReadSeeker
}

// NewReader wraps r.
func NewReader(r io.ReadSeeker) *Reader { return &Reader{r: r} }

// Unwrap returns the underlying stream, e.g. to hand to io.CopyN.
func (rd *Reader) Unwrap() io.ReadSeeker { return rd.r }

// Seek repositions the stream.
func (rd *Reader) Seek(offset int64, whence int) (int64, error) {
	pos, err := rd.r.Seek(offset, whence)
	if err != nil {
		return 0, model.IoErrorf("ioprim.Reader.Seek", err, "seek to %d failed", offset)
	}
	return pos, nil
}

// Pos returns the current stream position.
func (rd *Reader) Pos() (int64, error) {
	return rd.Seek(0, io.SeekCurrent)
}

// ReadFull reads exactly len(buf) bytes.
func (rd *Reader) ReadFull(buf []byte) error {
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return model.IoErrorf("ioprim.Reader.ReadFull", err, "short read: wanted %d bytes", len(buf))
	}
	return nil
}

// ReadBytes reads and returns n bytes.
func (rd *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := rd.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// U8 reads one byte.
func (rd *Reader) U8() (uint8, error) {
	var b [1]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// BU16 reads a big-endian uint16.
func (rd *Reader) BU16() (uint16, error) {
	var b [2]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// LU16 reads a little-endian uint16.
func (rd *Reader) LU16() (uint16, error) {
	var b [2]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// BU24 reads a big-endian 24-bit unsigned integer (common in ID3v2.2
// frame sizes and FLAC metadata-block lengths).
func (rd *Reader) BU24() (uint32, error) {
	var b [3]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// BU32 reads a big-endian uint32.
func (rd *Reader) BU32() (uint32, error) {
	var b [4]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// LU32 reads a little-endian uint32.
func (rd *Reader) LU32() (uint32, error) {
	var b [4]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// BU64 reads a big-endian uint64.
func (rd *Reader) BU64() (uint64, error) {
	var b [8]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// LU64 reads a little-endian uint64.
func (rd *Reader) LU64() (uint64, error) {
	var b [8]byte
	if err := rd.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// BF32 reads a big-endian IEEE 754 single-precision float.
func (rd *Reader) BF32() (float32, error) {
	v, err := rd.BU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// BF64 reads a big-endian IEEE 754 double-precision float.
func (rd *Reader) BF64() (float64, error) {
	v, err := rd.BU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// FixedString reads n bytes and returns them as a string verbatim
// (ASCII fourCCs and magic signatures; no encoding conversion).
func (rd *Reader) FixedString(n int) (string, error) {
	b, err := rd.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
