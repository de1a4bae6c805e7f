package mpegaudio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// A 128kbps, 44100Hz, MPEG1 Layer III, stereo, no-padding frame header.
func mpeg1L3StereoHeader() [4]byte {
	// 11111111 111 11 01 1001 00 00 00
	// sync(11)=0xFFE, version=11(MPEG1), layer=01(LayerIII), protection bit=1 (no CRC)
	// bitrate idx 1001=9 -> 128kbps, samplerate idx 00 -> 44100, pad 0
	// channel mode 00 (stereo)
	return [4]byte{0xFF, 0xFB, 0x90, 0x00}
}

func TestParseHeaderMPEG1LayerIII(t *testing.T) {
	h, err := ParseHeader(mpeg1L3StereoHeader())
	require.NoError(t, err)
	require.Equal(t, Version1, h.MPEGVersion)
	require.Equal(t, LayerIII, h.Layer)
	require.Equal(t, 128, h.BitrateKbps)
	require.Equal(t, 44100, h.SampleRate)
	require.Equal(t, ChannelStereo, h.ChannelMode)
	require.Equal(t, 1152, h.SamplesPerFrame)
	require.Equal(t, 417, h.FrameLenBytes)
}

func TestParseHeaderRejectsBadSync(t *testing.T) {
	_, err := ParseHeader([4]byte{0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestParseHeaderRejectsInvalidBitrateIndex(t *testing.T) {
	_, err := ParseHeader([4]byte{0xFF, 0xFB, 0xF0, 0x00})
	require.Error(t, err)
}

func TestMPEG2SampleRateIndexZero(t *testing.T) {
	// MPEG2 (version bits 10), layer III, bitrate idx 0001(8kbps V2),
	// samplerate idx 00 -> spec's redesigned semantics: 22050 Hz.
	h, err := ParseHeader([4]byte{0xFF, 0xF3, 0x10, 0x00})
	require.NoError(t, err)
	require.Equal(t, Version2, h.MPEGVersion)
	require.Equal(t, 22050, h.SampleRate)
}

func TestFrameLengthLayerI(t *testing.T) {
	h := Header{Layer: LayerI, BitrateKbps: 384, SampleRate: 48000, Padding: true}
	require.Equal(t, (12*384*1000/48000+1)*4, frameLength(h))
}
