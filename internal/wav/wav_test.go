package wav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/ioprim"
)

func buildMinimalWAV(t *testing.T, dataLen int) []byte {
	t.Helper()
	w := ioprim.NewWriter()
	w.FixedString("RIFF")
	w.LU32(0) // overall size, not validated by Read
	w.FixedString("WAVE")

	w.FixedString("fmt ")
	w.LU32(16)
	w.LU16(1)     // PCM
	w.LU16(2)     // channels
	w.LU32(44100) // sample rate
	w.LU32(44100 * 2 * 2)
	w.LU16(4) // block align
	w.LU16(16)

	w.FixedString("data")
	w.LU32(uint32(dataLen))
	w.Write(make([]byte, dataLen))
	return w.Bytes()
}

func TestReadMinimalWAV(t *testing.T) {
	raw := buildMinimalWAV(t, 4*1000)
	rd := ioprim.NewReader(bytes.NewReader(raw))
	info, err := Read(rd)
	require.NoError(t, err)
	require.Equal(t, uint16(2), info.Fmt.Channels)
	require.Equal(t, uint32(44100), info.Fmt.SampleRate)
	require.Equal(t, uint64(1000), info.TotalSamples)
}

func TestReadMissingRIFFMagic(t *testing.T) {
	rd := ioprim.NewReader(bytes.NewReader(make([]byte, 20)))
	_, err := Read(rd)
	require.Error(t, err)
}

func TestToTrack(t *testing.T) {
	raw := buildMinimalWAV(t, 4*1000)
	rd := ioprim.NewReader(bytes.NewReader(raw))
	info, err := Read(rd)
	require.NoError(t, err)
	track := ToTrack(info)
	require.Equal(t, 44100, track.SampleRate)
	require.Equal(t, 2, track.Channels)
}
