package adts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	// profile=1(AAC LC encoded as 01), sampleRateIdx=4(44100),
	// channelCfg=2, protection absent, frameLength set to 100.
	frame := []byte{
		0xFF, 0xF1, // sync + protection absent
		0x50,                       // profile(01)<<6 | sampleRateIdx(0100)<<2 | private(0) | chan msb(0)
		0x80 | byte(100>>11),       // chan cfg remaining bits | frame length high bits
		byte((100 >> 3) & 0xFF),    // frame length middle bits
		byte((100 & 0x7) << 5),     // frame length low bits
		0x00,
	}
	h, err := ParseHeader(frame)
	require.NoError(t, err)
	require.Equal(t, 44100, h.SampleRate)
	require.True(t, h.ProtectionAbsent)
	require.Equal(t, 7, h.HeaderSize())
}

func TestParseHeaderRejectsBadSync(t *testing.T) {
	_, err := ParseHeader(make([]byte, 7))
	require.Error(t, err)
}

func TestParseHeaderTooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, 3))
	require.Error(t, err)
}
