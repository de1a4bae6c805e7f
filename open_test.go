package mediatags

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/flac"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

func buildMinimalFLAC(t *testing.T) []byte {
	t.Helper()
	si := flac.StreamInfo{MinBlockSize: 4096, MaxBlockSize: 4096, SampleRate: 44100, ChannelCount: 2, BitsPerSample: 16}
	block := flac.Block{Type: 0, Last: true, Payload: flac.EncodeStreamInfo(si)}
	w := ioprim.NewWriter()
	w.Write([]byte("fLaC"))
	require.NoError(t, flac.WriteChain(w, []flac.Block{block}))
	w.Write([]byte{0xFF, 0xF8, 0x00, 0x00}) // placeholder audio bytes
	return w.Bytes()
}

func buildMinimalWAV(t *testing.T) []byte {
	t.Helper()
	w := ioprim.NewWriter()
	w.FixedString("RIFF")
	w.LU32(0)
	w.FixedString("WAVE")
	w.FixedString("fmt ")
	w.LU32(16)
	w.LU16(1)
	w.LU16(2)
	w.LU32(44100)
	w.LU32(44100 * 4)
	w.LU16(4)
	w.LU16(16)
	w.FixedString("data")
	w.LU32(8)
	w.Write(make([]byte, 8))
	return w.Bytes()
}

func TestOpenDispatchesByMagic(t *testing.T) {
	t.Run("flac", func(t *testing.T) {
		c, err := Open(bytes.NewReader(buildMinimalFLAC(t)), nil, nil)
		require.NoError(t, err)
		require.Equal(t, model.FormatFLAC, c.Format)
	})
	t.Run("wav", func(t *testing.T) {
		c, err := Open(bytes.NewReader(buildMinimalWAV(t)), nil, nil)
		require.NoError(t, err)
		require.Equal(t, model.FormatWAV, c.Format)
	})
	t.Run("unrecognised", func(t *testing.T) {
		_, err := Open(bytes.NewReader([]byte("not a media file, just text")), nil, nil)
		require.Error(t, err)
		var merr *model.Error
		require.ErrorAs(t, err, &merr)
		require.Equal(t, model.KindInvalidData, merr.Kind)
	})
}

func TestHasAt(t *testing.T) {
	require.True(t, hasAt([]byte("RIFFxxxxWAVE"), 8, "WAVE"))
	require.False(t, hasAt([]byte("RIFF"), 8, "WAVE"))
	require.False(t, hasAt([]byte("XIFFxxxxWAVE"), 0, "RIFF"))
}

func TestLooksLikeADTSVsMPEGSync(t *testing.T) {
	// MPEG-1 Layer III, no protection: layer bits (01) rule out ADTS.
	require.True(t, looksLikeMPEGSync([]byte{0xFF, 0xFB, 0x90, 0x00}))
	require.False(t, looksLikeADTS([]byte{0xFF, 0xFB, 0x90, 0x00}))
	// ADTS: layer bits always 00.
	require.True(t, looksLikeADTS([]byte{0xFF, 0xF1, 0x00, 0x00}))
	require.False(t, looksLikeMPEGSync([]byte{0xFF, 0xF1, 0x00, 0x00}))
}
