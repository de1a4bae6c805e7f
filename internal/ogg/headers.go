package ogg

import (
	"github.com/cesargomez89/mediatags/internal/flac"
	"github.com/cesargomez89/mediatags/internal/model"
)

// headerPacketCount returns how many leading packets of a logical
// stream are header packets.
func headerPacketCount(codec Codec, firstPacket []byte) int {
	switch codec {
	case CodecVorbis:
		return 3 // identification, comment, setup
	case CodecOpus:
		return 2 // OpusHead, OpusTags
	case CodecFLAC:
		if len(firstPacket) >= 9 {
			n := int(firstPacket[7])<<8 | int(firstPacket[8])
			return n + 1 // the ident packet plus n native FLAC metadata packets
		}
		return 2
	default:
		return 2
	}
}

// identToTrack builds a model.Track from codec's identification packet.
func identToTrack(codec Codec, packet []byte) (*model.Track, error) {
	switch codec {
	case CodecVorbis:
		return vorbisIdentToTrack(packet)
	case CodecOpus:
		head, err := ParseOpusHead(packet)
		if err != nil {
			return nil, err
		}
		return &model.Track{
			Media:      model.MediaAudio,
			Format:     model.FormatDescriptor{Family: model.CodecOpus},
			Channels:   int(head.ChannelCount),
			SampleRate: 48000, // Opus always decodes at 48kHz regardless of InputSampleRate
		}, nil
	case CodecFLAC:
		return flacIdentToTrack(packet)
	default:
		return &model.Track{Media: model.MediaAudio}, nil
	}
}

func vorbisIdentToTrack(packet []byte) (*model.Track, error) {
	if len(packet) < 30 || packet[0] != 1 {
		return nil, model.InvalidDataf("ogg.vorbisIdentToTrack", "malformed Vorbis identification packet")
	}
	channels := int(packet[11])
	sampleRate := int(packet[12]) | int(packet[13])<<8 | int(packet[14])<<16 | int(packet[15])<<24
	bitrateNominal := int(int32(uint32(packet[20]) | uint32(packet[21])<<8 | uint32(packet[22])<<16 | uint32(packet[23])<<24))
	return &model.Track{
		Media:      model.MediaAudio,
		Format:     model.FormatDescriptor{Family: model.CodecVorbis},
		Channels:   channels,
		SampleRate: sampleRate,
		Bitrate:    bitrateNominal,
	}, nil
}

func flacIdentToTrack(packet []byte) (*model.Track, error) {
	if len(packet) < 17+34 || string(packet[9:13]) != "fLaC" {
		return nil, model.InvalidDataf("ogg.flacIdentToTrack", "malformed FLAC-in-Ogg identification packet")
	}
	si, err := flac.ParseStreamInfo(packet[17 : 17+34])
	if err != nil {
		return nil, err
	}
	return flac.ToTrack(si), nil
}

// stripCommentHeader splits a comment packet into its fixed
// codec-specific prefix (preserved verbatim), the Vorbis-comment body,
// and a reconstruction function that reassembles a full comment packet
// from a new body.
func stripCommentHeader(codec Codec, packet []byte) (body []byte, rebuild func([]byte) []byte, err error) {
	switch codec {
	case CodecVorbis:
		if len(packet) < 8 || packet[0] != 3 || string(packet[1:7]) != "vorbis" {
			return nil, nil, model.InvalidDataf("ogg.stripCommentHeader", "malformed Vorbis comment packet")
		}
		body = packet[7 : len(packet)-1]
		rebuild = func(newBody []byte) []byte {
			out := append([]byte{3}, []byte("vorbis")...)
			out = append(out, newBody...)
			return append(out, 1)
		}
		return body, rebuild, nil
	case CodecOpus:
		if len(packet) < 8 || string(packet[:8]) != "OpusTags" {
			return nil, nil, model.InvalidDataf("ogg.stripCommentHeader", "malformed OpusTags packet")
		}
		body = packet[8:]
		rebuild = func(newBody []byte) []byte {
			return append([]byte("OpusTags"), newBody...)
		}
		return body, rebuild, nil
	case CodecFLAC:
		if len(packet) < 4 {
			return nil, nil, model.InvalidDataf("ogg.stripCommentHeader", "malformed FLAC-in-Ogg comment packet")
		}
		last := packet[0]&0x80 != 0
		body = packet[4:]
		rebuild = func(newBody []byte) []byte {
			hdr := byte(4) // VORBIS_COMMENT block type
			if last {
				hdr |= 0x80
			}
			out := []byte{hdr, byte(len(newBody) >> 16), byte(len(newBody) >> 8), byte(len(newBody))}
			return append(out, newBody...)
		}
		return body, rebuild, nil
	default:
		return nil, nil, model.InvalidDataf("ogg.stripCommentHeader", "unknown codec, no comment packet convention")
	}
}
