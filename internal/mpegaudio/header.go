// Package mpegaudio parses MPEG audio frame headers: sync word,
// version/layer/bitrate/sample-rate/padding/channel-mode bits, frame
// size and sample-count formulas, and the Xing/Info/VBRI side-data that
// follows the first frame header in VBR-encoded streams. Neither
// mewkiz/flac nor bogem/id3v2 (the libraries
// cesargomez89-navidrums/internal/tagging/tagging.go relies on for
// FLAC/MP3) exposes raw MPEG frame parsing, so this package is written
// directly from the MPEG-1/2 Audio header layout.
package mpegaudio

import "github.com/cesargomez89/mediatags/internal/model"

// Version identifies the MPEG audio version.
type Version int

const (
	VersionUnknown Version = iota
	Version2_5
	Version2
	Version1
)

// Layer identifies the MPEG audio layer.
type Layer int

const (
	LayerUnknown Layer = iota
	LayerIII
	LayerII
	LayerI
)

// ChannelMode identifies the channel configuration.
type ChannelMode int

const (
	ChannelStereo ChannelMode = iota
	ChannelJointStereo
	ChannelDualChannel
	ChannelMono
)

// Header is a parsed MPEG audio frame header.
type Header struct {
	MPEGVersion  Version
	Layer        Layer
	BitrateKbps  int
	SampleRate   int
	Padding      bool
	ChannelMode  ChannelMode
	FrameLenBytes int
	SamplesPerFrame int
}

// bitrateTableV1 (MPEG1) and bitrateTableV2 (MPEG2/2.5) are indexed
// [layer][index] in kbps; index 0 is "free", 15 is invalid.
var bitrateTableV1 = [3][16]int{
	{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, -1}, // layer I
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, -1},    // layer II
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1},     // layer III
}
var bitrateTableV2 = [3][16]int{
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, -1}, // layer I
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},      // layer II
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},      // layer III
}

// sampleRateTable[version][index]; index 3 is reserved.
// MPEG-2 index 0 is fixed to 22050 Hz 
// (the redesigned/intended semantics, not the source's typo'd branch).
var sampleRateTable = map[Version][3]int{
	Version1:   {44100, 48000, 32000},
	Version2:   {22050, 24000, 16000},
	Version2_5: {11025, 12000, 8000},
}

// ParseHeader decodes a 4-byte MPEG audio frame header starting with
// the 11-bit sync word. Returns model.InvalidData if the
// sync word is absent or the bitrate index is 1111.
func ParseHeader(b [4]byte) (Header, error) {
	if b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return Header{}, model.InvalidDataf("mpegaudio.ParseHeader", "missing 11-bit sync word")
	}
	versionBits := (b[1] >> 3) & 0x3
	layerBits := (b[1] >> 1) & 0x3
	var version Version
	switch versionBits {
	case 0:
		version = Version2_5
	case 2:
		version = Version2
	case 3:
		version = Version1
	default:
		return Header{}, model.InvalidDataf("mpegaudio.ParseHeader", "reserved MPEG version bits")
	}
	var layer Layer
	switch layerBits {
	case 1:
		layer = LayerIII
	case 2:
		layer = LayerII
	case 3:
		layer = LayerI
	default:
		return Header{}, model.InvalidDataf("mpegaudio.ParseHeader", "reserved layer bits")
	}

	bitrateIdx := (b[2] >> 4) & 0xF
	if bitrateIdx == 0xF {
		return Header{}, model.InvalidDataf("mpegaudio.ParseHeader", "invalid bitrate index 1111")
	}
	var layerIdx int
	switch layer {
	case LayerI:
		layerIdx = 0
	case LayerII:
		layerIdx = 1
	default:
		layerIdx = 2
	}
	var bitrate int
	if version == Version1 {
		bitrate = bitrateTableV1[layerIdx][bitrateIdx]
	} else {
		bitrate = bitrateTableV2[layerIdx][bitrateIdx]
	}
	if bitrate < 0 {
		return Header{}, model.InvalidDataf("mpegaudio.ParseHeader", "reserved bitrate index")
	}

	sampleRateIdx := (b[2] >> 2) & 0x3
	if sampleRateIdx == 3 {
		return Header{}, model.InvalidDataf("mpegaudio.ParseHeader", "reserved sample-rate index")
	}
	sampleRate := sampleRateTable[version][sampleRateIdx]

	padding := (b[2]>>1)&0x1 != 0
	channelModeBits := (b[3] >> 6) & 0x3
	var mode ChannelMode
	switch channelModeBits {
	case 0:
		mode = ChannelStereo
	case 1:
		mode = ChannelJointStereo
	case 2:
		mode = ChannelDualChannel
	case 3:
		mode = ChannelMono
	}

	h := Header{
		MPEGVersion: version, Layer: layer, BitrateKbps: bitrate,
		SampleRate: sampleRate, Padding: padding, ChannelMode: mode,
	}
	h.FrameLenBytes = frameLength(h)
	h.SamplesPerFrame = samplesPerFrame(h)
	return h, nil
}

func frameLength(h Header) int {
	pad := 0
	if h.Padding {
		pad = 1
	}
	if h.SampleRate == 0 {
		return 0
	}
	if h.Layer == LayerI {
		return (12*h.BitrateKbps*1000/h.SampleRate + pad) * 4
	}
	return 144*h.BitrateKbps*1000/h.SampleRate + pad
}

func samplesPerFrame(h Header) int {
	switch h.Layer {
	case LayerI:
		return 384
	case LayerII:
		return 1152
	case LayerIII:
		if h.MPEGVersion == Version1 {
			return 1152
		}
		return 576
	default:
		return 0
	}
}
