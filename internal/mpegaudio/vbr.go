package mpegaudio

import (
	"bytes"

	"github.com/cesargomez89/mediatags/internal/ioprim"
)

// VBRInfo is the optional Xing/Info/VBRI side-data carried in the first
// frame of a VBR-encoded stream.
type VBRInfo struct {
	Kind        string // "Xing", "Info", or "VBRI"
	FrameCount  uint32
	ByteCount   uint32
	HasTOC      bool
	TOC         [100]byte
	QualityIndicator uint32
}

// xingOffset returns the byte offset (from the start of the frame
// header) where the Xing/Info tag begins, which depends on MPEG version
// and channel mode (mono side-info is shorter than stereo).
func xingOffset(h Header) int {
	mono := h.ChannelMode == ChannelMono
	if h.MPEGVersion == Version1 {
		if mono {
			return 4 + 17
		}
		return 4 + 32
	}
	if mono {
		return 4 + 9
	}
	return 4 + 17
}

// ParseXing reads a Xing/Info tag from frame, a buffer containing at
// least the full first frame starting at its sync word.
func ParseXing(frame []byte, h Header) (*VBRInfo, error) {
	off := xingOffset(h)
	if off+8 > len(frame) {
		return nil, nil
	}
	tag := string(frame[off : off+4])
	if tag != "Xing" && tag != "Info" {
		return nil, nil
	}
	rd := ioprim.NewReader(bytes.NewReader(frame[off+4:]))
	flags, err := rd.BU32()
	if err != nil {
		return nil, err
	}
	info := &VBRInfo{Kind: tag}
	if flags&0x1 != 0 {
		info.FrameCount, err = rd.BU32()
		if err != nil {
			return nil, err
		}
	}
	if flags&0x2 != 0 {
		info.ByteCount, err = rd.BU32()
		if err != nil {
			return nil, err
		}
	}
	if flags&0x4 != 0 {
		tocBytes, err := rd.ReadBytes(100)
		if err != nil {
			return nil, err
		}
		copy(info.TOC[:], tocBytes)
		info.HasTOC = true
	}
	if flags&0x8 != 0 {
		info.QualityIndicator, err = rd.BU32()
		if err != nil {
			return nil, err
		}
	}
	return info, nil
}

// ParseVBRI reads a Fraunhofer VBRI tag, which always sits at a fixed
// offset of 32 bytes after the frame header (unlike Xing, which varies
// by channel mode).
func ParseVBRI(frame []byte) (*VBRInfo, error) {
	const off = 4 + 32
	if off+26 > len(frame) {
		return nil, nil
	}
	if string(frame[off:off+4]) != "VBRI" {
		return nil, nil
	}
	rd := ioprim.NewReader(bytes.NewReader(frame[off+4:]))
	if _, err := rd.BU16(); err != nil { // version
		return nil, err
	}
	if _, err := rd.BU16(); err != nil { // delay
		return nil, err
	}
	if _, err := rd.BU16(); err != nil { // quality
		return nil, err
	}
	byteCount, err := rd.BU32()
	if err != nil {
		return nil, err
	}
	frameCount, err := rd.BU32()
	if err != nil {
		return nil, err
	}
	return &VBRInfo{Kind: "VBRI", FrameCount: frameCount, ByteCount: byteCount}, nil
}

