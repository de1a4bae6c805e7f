// Package id3v2 implements the ID3v2.2/2.3/2.4 frame format: header
// parsing, synchsafe/fixed frame sizes, unsynchronisation, text-encoding
// dispatch, and a v2.2-to-v2.4 upgrade path for frames with no v2.4
// equivalent. Field naming follows the FieldTitle/FieldArtist/...
// constants and COMM/USLT handling
// cesargomez89-navidrums/internal/tagging/tagging.go drives through
// bogem/id3v2, reimplemented here at the byte level (see DESIGN.md).
package id3v2

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Header flag bits (byte 5 of the ID3v2 header).
const (
	FlagUnsynchronisation = 1 << 7
	FlagExtendedHeader    = 1 << 6
	FlagExperimental      = 1 << 5
	FlagFooterPresent     = 1 << 4 // v2.4 only
)

// Header is the parsed 10-byte ID3v2 header.
type Header struct {
	MajorVersion    int // 2, 3, or 4
	MinorVersion    int
	Flags           byte
	Size            uint32 // synchsafe-decoded size of the tag body, excluding the 10-byte header
	ExtendedHeaderLen uint32
}

func (h Header) Unsynchronised() bool  { return h.Flags&FlagUnsynchronisation != 0 }
func (h Header) HasExtendedHeader() bool { return h.Flags&FlagExtendedHeader != 0 }

// ReadHeader parses the 10-byte ID3v2 header at the stream's current
// position (must be offset 0 of the file , if present,
// skips over the extended header, leaving the stream positioned at the
// first frame.
func ReadHeader(rd *ioprim.Reader) (Header, error) {
	magic, err := rd.FixedString(3)
	if err != nil {
		return Header{}, err
	}
	if magic != constants.MagicID3 {
		return Header{}, model.NewError(model.KindInvalidData, "id3v2.ReadHeader", "missing ID3 magic", nil)
	}
	major, err := rd.U8()
	if err != nil {
		return Header{}, err
	}
	minor, err := rd.U8()
	if err != nil {
		return Header{}, err
	}
	flags, err := rd.U8()
	if err != nil {
		return Header{}, err
	}
	if major < 2 || major > 4 {
		return Header{}, model.NewError(model.KindUnsupportedVersion, "id3v2.ReadHeader", "unsupported ID3v2 major version", nil)
	}
	var sizeBytes [4]byte
	raw, err := rd.ReadBytes(4)
	if err != nil {
		return Header{}, err
	}
	copy(sizeBytes[:], raw)
	size, err := ioprim.ReadSynchsafe32(sizeBytes)
	if err != nil {
		return Header{}, err
	}

	h := Header{MajorVersion: int(major), MinorVersion: int(minor), Flags: flags, Size: size}

	if h.HasExtendedHeader() {
		extLen, err := readExtendedHeaderLen(rd, h.MajorVersion)
		if err != nil {
			return Header{}, err
		}
		h.ExtendedHeaderLen = extLen
		if _, err := rd.Seek(int64(extLen), io.SeekCurrent); err != nil {
			return Header{}, err
		}
	}
	return h, nil
}

func readExtendedHeaderLen(rd *ioprim.Reader, major int) (uint32, error) {
	if major == 4 {
		var b [4]byte
		raw, err := rd.ReadBytes(4)
		if err != nil {
			return 0, err
		}
		copy(b[:], raw)
		size, err := ioprim.ReadSynchsafe32(b)
		if err != nil {
			return 0, err
		}
		// v2.4 extended header size includes itself; the remaining
		// bytes to skip are size-4.
		if size < 4 {
			return 0, model.InvalidDataf("id3v2.readExtendedHeaderLen", "extended header size %d too small", size)
		}
		return size - 4, nil
	}
	// v2.3: plain 32-bit big-endian size, not counting the size field
	// itself.
	size, err := rd.BU32()
	if err != nil {
		return 0, err
	}
	return size, nil
}

// WriteHeader serialises a 10-byte ID3v2 header for bodyLen bytes of
// frame data (post-unsynchronisation if FlagUnsynchronisation is set).
func WriteHeader(w *ioprim.Writer, major, minor int, flags byte, bodyLen uint32) error {
	if bodyLen > ioprim.MaxSynchsafe32 {
		return model.InvalidDataf("id3v2.WriteHeader", "tag body %d exceeds synchsafe maximum", bodyLen)
	}
	w.FixedString(constants.MagicID3)
	w.U8(byte(major))
	w.U8(byte(minor))
	w.U8(flags)
	sz := ioprim.WriteSynchsafe32(bodyLen)
	w.Write(sz[:])
	return nil
}
