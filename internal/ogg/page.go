// Package ogg implements RFC 3533 page reassembly and packet iteration:
// the 27-byte page header, segment table, and codec detection from the
// first packet of each logical stream. Grounded on pion/webrtc's
// pkg/media/oggreader/oggreader.go (OggHeader/OggPageHeader shapes,
// ParseOpusHead), the only Ogg reader among the retrieved reference
// repos.
package ogg

import (
	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Page header flag bits.
const (
	FlagContinued = 1 << 0
	FlagBOS       = 1 << 1 // beginning of logical stream
	FlagEOS       = 1 << 2 // end of logical stream
)

// PageHeader is one parsed 27-byte-plus-segment-table Ogg page header.
type PageHeader struct {
	Flags          byte
	GranulePos     int64
	SerialNumber   uint32
	PageSequence   uint32
	CRC            uint32
	SegmentTable   []byte // one length byte per segment, 0..255
	HeaderLen      int64  // 27 + len(SegmentTable)
}

// PayloadLen returns the total payload length described by the segment
// table.
func (h PageHeader) PayloadLen() int {
	n := 0
	for _, s := range h.SegmentTable {
		n += int(s)
	}
	return n
}

// ReadPageHeader parses one page header at the reader's current
// position. When no more pages remain it returns the reader's short-read
// error, a model.Error of KindIoError.
func ReadPageHeader(rd *ioprim.Reader) (PageHeader, error) {
	magic, err := rd.FixedString(4)
	if err != nil {
		return PageHeader{}, err
	}
	if magic != constants.MagicOggS {
		return PageHeader{}, model.InvalidDataf("ogg.ReadPageHeader", "missing OggS magic")
	}
	version, err := rd.U8()
	if err != nil {
		return PageHeader{}, err
	}
	if version != 0 {
		return PageHeader{}, model.NewError(model.KindUnsupportedVersion, "ogg.ReadPageHeader", "unsupported Ogg stream structure version", nil)
	}
	flags, err := rd.U8()
	if err != nil {
		return PageHeader{}, err
	}
	granuleRaw, err := rd.LU64()
	if err != nil {
		return PageHeader{}, err
	}
	serial, err := rd.LU32()
	if err != nil {
		return PageHeader{}, err
	}
	seq, err := rd.LU32()
	if err != nil {
		return PageHeader{}, err
	}
	crc, err := rd.LU32()
	if err != nil {
		return PageHeader{}, err
	}
	segCount, err := rd.U8()
	if err != nil {
		return PageHeader{}, err
	}
	segTable, err := rd.ReadBytes(int(segCount))
	if err != nil {
		return PageHeader{}, err
	}
	return PageHeader{
		Flags:        flags,
		GranulePos:   int64(granuleRaw),
		SerialNumber: serial,
		PageSequence: seq,
		CRC:          crc,
		SegmentTable: segTable,
		HeaderLen:    int64(constants.OggPageHeaderSize) + int64(segCount),
	}, nil
}

// WritePageHeader serialises h (with CRC already computed by the
// caller over the full page) into w.
func WritePageHeader(w *ioprim.Writer, h PageHeader) {
	w.FixedString(constants.MagicOggS)
	w.U8(0)
	w.U8(h.Flags)
	w.LU64(uint64(h.GranulePos))
	w.LU32(h.SerialNumber)
	w.LU32(h.PageSequence)
	w.LU32(h.CRC)
	w.U8(byte(len(h.SegmentTable)))
	w.Write(h.SegmentTable)
}

// EncodePage serialises h and payload into one complete page, computing
// the CRC over the result (the CRC field itself is zeroed before the
// computation per RFC 3533 §6, then patched into the output).
func EncodePage(h PageHeader, payload []byte) []byte {
	h.CRC = 0
	w := ioprim.NewWriter()
	WritePageHeader(w, h)
	w.Write(payload)
	buf := w.Bytes()
	crc := Checksum(buf)
	buf[22] = byte(crc)
	buf[23] = byte(crc >> 8)
	buf[24] = byte(crc >> 16)
	buf[25] = byte(crc >> 24)
	return buf
}

// SegmentTableFor splits a payload of payloadLen bytes into an Ogg
// segment table (each entry 0..255; a final run of exactly 255 is
// followed by an explicit terminator whenever payloadLen is itself a
// multiple of 255, matching RFC 3533's lacing rule).
func SegmentTableFor(payloadLen int) []byte {
	var table []byte
	for payloadLen >= 255 {
		table = append(table, 255)
		payloadLen -= 255
	}
	table = append(table, byte(payloadLen))
	return table
}
