package ogg

import (
	"bytes"

	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Codec identifies the payload codec carried by a logical Ogg stream,
// detected from its first packet.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecVorbis
	CodecOpus
	CodecFLAC
)

func (c Codec) String() string {
	switch c {
	case CodecVorbis:
		return "vorbis"
	case CodecOpus:
		return "opus"
	case CodecFLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// DetectCodec inspects the first packet of a logical stream.
func DetectCodec(firstPacket []byte) Codec {
	switch {
	case bytes.HasPrefix(firstPacket, []byte(constants.MagicVorbis)):
		return CodecVorbis
	case bytes.HasPrefix(firstPacket, []byte(constants.MagicOpusHd)):
		return CodecOpus
	case len(firstPacket) >= 5 && firstPacket[0] == 0x7F && string(firstPacket[1:5]) == "FLAC":
		return CodecFLAC
	default:
		return CodecUnknown
	}
}

// OpusHead is the parsed fixed header of an Opus identification packet.
type OpusHead struct {
	Version        uint8
	ChannelCount   uint8
	PreSkip        uint16
	InputSampleRate uint32
	OutputGain     int16
	ChannelMapping uint8
}

// ParseOpusHead decodes an "OpusHead" packet (grounded on pion/webrtc's
// ParseOpusHead in other_examples/, the closest corpus analogue).
func ParseOpusHead(packet []byte) (OpusHead, error) {
	if len(packet) < 19 || string(packet[:8]) != constants.MagicOpusHd {
		return OpusHead{}, model.InvalidDataf("ogg.ParseOpusHead", "missing OpusHead magic")
	}
	return OpusHead{
		Version:         packet[8],
		ChannelCount:    packet[9],
		PreSkip:         uint16(packet[10]) | uint16(packet[11])<<8,
		InputSampleRate: uint32(packet[12]) | uint32(packet[13])<<8 | uint32(packet[14])<<16 | uint32(packet[15])<<24,
		OutputGain:      int16(uint16(packet[16]) | uint16(packet[17])<<8),
		ChannelMapping:  packet[18],
	}, nil
}

// MetadataPacketIndex returns the index (within a logical stream) of
// the packet carrying comment metadata for codec: always packet 1
// (the second packet) across Vorbis, Opus, and FLAC-in-Ogg.
const MetadataPacketIndex = 1
