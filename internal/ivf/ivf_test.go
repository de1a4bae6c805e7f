package ivf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/ioprim"
)

func buildHeader(t *testing.T) []byte {
	t.Helper()
	w := ioprim.NewWriter()
	w.FixedString("DKIF")
	w.LU16(0)
	w.LU16(32)
	w.FixedString("VP90")
	w.LU16(1920)
	w.LU16(1080)
	w.LU32(1)
	w.LU32(30)
	w.LU32(300)
	w.LU32(0)
	return w.Bytes()
}

func TestReadHeader(t *testing.T) {
	raw := buildHeader(t)
	rd := ioprim.NewReader(bytes.NewReader(raw))
	h, err := ReadHeader(rd)
	require.NoError(t, err)
	require.Equal(t, "VP90", h.CodecFourCC)
	require.Equal(t, uint16(1920), h.Width)
	require.Equal(t, uint32(300), h.FrameCount)
}

func TestToTrackComputesFPS(t *testing.T) {
	raw := buildHeader(t)
	rd := ioprim.NewReader(bytes.NewReader(raw))
	h, err := ReadHeader(rd)
	require.NoError(t, err)
	track := ToTrack(h)
	require.Equal(t, float64(30), track.FPS)
}

func TestReadHeaderBadMagic(t *testing.T) {
	rd := ioprim.NewReader(bytes.NewReader(make([]byte, 32)))
	_, err := ReadHeader(rd)
	require.Error(t, err)
}
