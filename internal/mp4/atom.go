// Package mp4 implements the ISO-BMFF atom tree and iTunes-style
// metadata: 32/64-bit size headers, the moov/trak/udta/meta/ilst
// parent chain, `ilst` tag-field extraction, and track
// technical-parameter parsing from stsd/mdhd/hdlr. Grounded on
// other_examples/80a23f58_idiomatic-mp4__mp4.go.go (Atom struct shape,
// isContainer/isItunesMetaDataContainer) and
// other_examples/3ea652b5_moshee-sound__mp4-atom.go.go (the per-atom
// parent/container-type table).
package mp4

import (
	"encoding/binary"
	"io"

	"github.com/cesargomez89/mediatags/internal/model"
)

// containerAtoms lists the FourCCs whose payload is itself a sequence
// of child atoms rather than opaque data.
var containerAtoms = map[string]bool{
	"moov": true, "trak": true, "mdia": true, "minf": true, "stbl": true,
	"udta": true, "edts": true, "mvex": true, "moof": true, "traf": true,
	"mfra": true, "dinf": true,
}

// itunesMetaContainers additionally includes "meta" (which, unlike
// other container atoms, carries a 4-byte version/flags field before
// its children per the full-box convention) and "ilst" (whose children
// are themselves containers holding a `data` atom, or `----` holding
// `mean`/`name`/`data`).
var itunesMetaContainers = map[string]bool{
	"meta": true, "ilst": true, "----": true,
}

// HeaderReader adapts ISO-BMFF atom headers to element.HeaderReader.
type HeaderReader struct{}

// ReadHeader implements element.HeaderReader for MP4 atoms: a 32-bit size, a 4-byte FourCC, and,
// when size==1, a 64-bit extended size immediately after the FourCC.
// size==0 means "until end of container" and is resolved against
// maxSize.
func (HeaderReader) ReadHeader(r io.ReadSeeker, offset, maxSize int64) (id uint64, headerLen, totalLen int64, isParent bool, err error) {
	if maxSize < 8 {
		return 0, 0, 0, false, io.EOF
	}
	if _, err = r.Seek(offset, io.SeekStart); err != nil {
		return 0, 0, 0, false, model.IoErrorf("mp4.ReadHeader", err, "seek to atom at %d", offset)
	}
	var hdr [8]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, 0, 0, false, io.EOF
		}
		return 0, 0, 0, false, model.IoErrorf("mp4.ReadHeader", err, "read atom header at %d", offset)
	}
	size32 := binary.BigEndian.Uint32(hdr[0:4])
	fourcc := string(hdr[4:8])
	headerLen = 8

	var total int64
	switch size32 {
	case 0:
		total = maxSize
	case 1:
		var ext [8]byte
		if _, err = io.ReadFull(r, ext[:]); err != nil {
			return 0, 0, 0, false, model.IoErrorf("mp4.ReadHeader", err, "read extended size at %d", offset)
		}
		total = int64(binary.BigEndian.Uint64(ext[:]))
		headerLen = 16
	default:
		total = int64(size32)
	}
	// "meta" is a full box: a 4-byte version/flags field sits between
	// its header and its first child, unlike every other container atom
	// this library reads. "stsd" is also a full box, but its extra
	// 4-byte entry_count sits after version/flags and before the first
	// sample entry, so it skips 8 bytes rather than 4.
	switch fourcc {
	case "meta":
		headerLen += 4
	case "stsd":
		headerLen += 8
	}
	if total < headerLen {
		return 0, 0, 0, false, model.InvalidDataf("mp4.ReadHeader", "atom %q declares size %d smaller than its header", fourcc, total)
	}

	fourccID := fourCCToID(fourcc)
	parent := containerAtoms[fourcc] || itunesMetaContainers[fourcc]
	return fourccID, headerLen, total, parent, nil
}

// fourCCToID packs a 4-byte FourCC into a uint64 for element.Node's
// format-agnostic ID field.
func fourCCToID(fourcc string) uint64 {
	var id uint64
	for i := 0; i < 4 && i < len(fourcc); i++ {
		id = id<<8 | uint64(fourcc[i])
	}
	return id
}

// IDToFourCC is the inverse of fourCCToID.
func IDToFourCC(id uint64) string {
	b := [4]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	return string(b[:])
}

