package ogg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

func buildPage(t *testing.T, serial, seq uint32, granule int64, flags byte, payload []byte) []byte {
	t.Helper()
	w := ioprim.NewWriter()
	segTable := SegmentTableFor(len(payload))
	WritePageHeader(w, PageHeader{
		Flags: flags, GranulePos: granule, SerialNumber: serial, PageSequence: seq,
		SegmentTable: segTable,
	})
	w.Write(payload)
	return w.Bytes()
}

func TestChecksumStable(t *testing.T) {
	a := Checksum([]byte("hello world"))
	b := Checksum([]byte("hello world"))
	require.Equal(t, a, b)
	require.NotEqual(t, a, Checksum([]byte("hello worlD")))
}

func TestSegmentTableForExactMultiple(t *testing.T) {
	table := SegmentTableFor(255)
	require.Equal(t, []byte{255, 0}, table)

	table = SegmentTableFor(10)
	require.Equal(t, []byte{10}, table)
}

func TestReadPageHeaderRoundTrip(t *testing.T) {
	raw := buildPage(t, 42, 0, 0, FlagBOS, []byte("hello"))
	rd := ioprim.NewReader(bytes.NewReader(raw))
	h, err := ReadPageHeader(rd)
	require.NoError(t, err)
	require.Equal(t, uint32(42), h.SerialNumber)
	require.Equal(t, FlagBOS, h.Flags)
	require.Equal(t, 5, h.PayloadLen())
}

func TestPacketIteratorSinglePage(t *testing.T) {
	raw := buildPage(t, 1, 0, 0, FlagBOS, []byte("\x01vorbispacketbytes"))
	var diag model.Diagnostics
	it := NewIterator(ioprim.NewReader(bytes.NewReader(raw)), &diag, 1<<20)
	p, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, p.IsFirst)
	require.Equal(t, uint32(1), p.SerialNumber)

	_, ok, err = it.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPacketIteratorSpansPages(t *testing.T) {
	part1 := bytes.Repeat([]byte{0xAB}, 255)
	part2 := []byte{0xCD, 0xCD}
	w := ioprim.NewWriter()
	WritePageHeader(w, PageHeader{Flags: FlagBOS, SerialNumber: 7, PageSequence: 0, SegmentTable: []byte{255}})
	w.Write(part1)
	WritePageHeader(w, PageHeader{Flags: FlagEOS, SerialNumber: 7, PageSequence: 1, SegmentTable: []byte{2}})
	w.Write(part2)

	var diag model.Diagnostics
	it := NewIterator(ioprim.NewReader(bytes.NewReader(w.Bytes())), &diag, 1<<20)
	p, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, p.Data, 257)
	require.True(t, p.IsLast)
}

func TestDetectCodec(t *testing.T) {
	require.Equal(t, CodecVorbis, DetectCodec([]byte("\x01vorbis...")))
	require.Equal(t, CodecOpus, DetectCodec([]byte("OpusHead...")))
	require.Equal(t, CodecUnknown, DetectCodec([]byte("garbage")))
}

func TestParseOpusHead(t *testing.T) {
	packet := append([]byte("OpusHead"), 1, 2, 0x38, 0x01, 0x80, 0xBB, 0x00, 0x00, 0x00, 0x00, 0x00)
	h, err := ParseOpusHead(packet)
	require.NoError(t, err)
	require.Equal(t, uint8(1), h.Version)
	require.Equal(t, uint8(2), h.ChannelCount)
	require.Equal(t, uint32(48000), h.InputSampleRate)
}
