package mp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// buildMinimalMP4 assembles an ftyp/moov/mdat stream with one audio
// trak (stsd mp4a, stco with two chunk offsets pointing into mdat) and
// an iTunes-style udta/meta/ilst chain holding a single ©nam item.
func buildMinimalMP4(t *testing.T, title string) []byte {
	t.Helper()

	ftypPayload := append([]byte("M4A "), 0, 0, 0, 0) // major_brand + minor_version
	ftypPayload = append(ftypPayload, []byte("M4A mp42")...)
	ftypBytes := atomBytes("ftyp", ftypPayload)

	tkhdPayload := make([]byte, 0, 20)
	tkhdPayload = append(tkhdPayload, 0, 0, 0, 0x07) // version 0, flags enabled|inMovie|inPreview
	tkhdPayload = append(tkhdPayload, 0, 0, 0, 0)    // creation_time
	tkhdPayload = append(tkhdPayload, 0, 0, 0, 0)    // modification_time
	tkhdPayload = append(tkhdPayload, 0, 0, 0, 1)    // track_id
	tkhdPayload = append(tkhdPayload, 0, 0, 0, 0)    // reserved
	tkhdBytes := atomBytes("tkhd", tkhdPayload)

	mdhdPayload := make([]byte, 0, 24)
	mdhdPayload = append(mdhdPayload, 0, 0, 0, 0) // version 0, flags
	mdhdPayload = append(mdhdPayload, 0, 0, 0, 0) // creation_time
	mdhdPayload = append(mdhdPayload, 0, 0, 0, 0) // modification_time
	mdhdPayload = append(mdhdPayload, 0, 0, 0xAC, 0x44) // timescale 44100
	mdhdPayload = append(mdhdPayload, 0, 0, 0, 0) // duration
	mdhdPayload = append(mdhdPayload, 0x55, 0xC4) // language
	mdhdPayload = append(mdhdPayload, 0, 0)       // pre_defined
	mdhdBytes := atomBytes("mdhd", mdhdPayload)

	hdlrPayload := make([]byte, 0, 25)
	hdlrPayload = append(hdlrPayload, 0, 0, 0, 0)       // version/flags
	hdlrPayload = append(hdlrPayload, 0, 0, 0, 0)       // pre_defined
	hdlrPayload = append(hdlrPayload, 's', 'o', 'u', 'n')
	hdlrPayload = append(hdlrPayload, make([]byte, 12)...)
	hdlrPayload = append(hdlrPayload, 0)
	hdlrBytes := atomBytes("hdlr", hdlrPayload)

	mp4aPayload := make([]byte, 0, 28)
	mp4aPayload = append(mp4aPayload, make([]byte, 6)...) // reserved
	mp4aPayload = append(mp4aPayload, 0, 1)                // data_reference_index
	mp4aPayload = append(mp4aPayload, make([]byte, 8)...)  // reserved[2]
	mp4aPayload = append(mp4aPayload, 0, 2)                // channels
	mp4aPayload = append(mp4aPayload, 0, 16)               // sample size
	mp4aPayload = append(mp4aPayload, 0, 0, 0, 0)          // pre_defined + reserved
	mp4aPayload = append(mp4aPayload, 0xAC, 0x44, 0, 0)    // sample rate, fixed-point 16.16
	mp4aBytes := atomBytes("mp4a", mp4aPayload)

	stsdW := ioprim.NewWriter()
	stsdW.BU32(0) // version/flags
	stsdW.BU32(1) // entry_count
	stsdW.Write(mp4aBytes)
	stsdBytes := atomBytes("stsd", stsdW.Bytes())

	stcoW := ioprim.NewWriter()
	stcoW.BU32(0) // version/flags
	stcoW.BU32(2) // entry_count
	stcoW.BU32(0) // chunk 1 offset, placeholder patched below
	stcoW.BU32(0) // chunk 2 offset, placeholder patched below
	stcoBytes := atomBytes("stco", stcoW.Bytes())

	stblBytes := atomBytes("stbl", concatBytes(stsdBytes, stcoBytes))
	minfBytes := atomBytes("minf", stblBytes)
	mdiaBytes := atomBytes("mdia", concatBytes(mdhdBytes, hdlrBytes, minfBytes))
	trakBytes := atomBytes("trak", concatBytes(tkhdBytes, mdiaBytes))

	titleData := encodeDataAtom2(dataTypeUTF8, []byte(title))
	namItem := atomBytes("\xa9nam", titleData)
	ilstBytes := atomBytes("ilst", namItem)

	metaW := ioprim.NewWriter()
	metaW.BU32(0) // meta full-box version/flags
	metaW.Write(defaultHdlrAtom())
	metaW.Write(ilstBytes)
	metaBytes := atomBytes("meta", metaW.Bytes())
	udtaBytes := atomBytes("udta", metaBytes)

	moovBytes := atomBytes("moov", concatBytes(trakBytes, udtaBytes))

	mdatPayload := bytes.Repeat([]byte{0xAB}, 600)
	mdatBytes := atomBytes("mdat", mdatPayload)

	mdatStart := int64(len(ftypBytes)) + int64(len(moovBytes)) + 8
	patchStcoOffsets(t, moovBytes, mdatStart, mdatStart+300)

	full := concatBytes(ftypBytes, moovBytes, mdatBytes)
	return full
}

// patchStcoOffsets locates the stco atom's two entries inside buf
// (built with zero placeholders) and writes the real offsets in place.
func patchStcoOffsets(t *testing.T, buf []byte, off1, off2 int64) {
	t.Helper()
	idx := bytes.Index(buf, []byte("stco"))
	require.GreaterOrEqual(t, idx, 4)
	entriesStart := idx + 4 + 8 // past fourcc, version/flags, entry_count
	putBU32(buf[entriesStart:entriesStart+4], uint32(off1))
	putBU32(buf[entriesStart+4:entriesStart+8], uint32(off2))
}

func putBU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func concatBytes(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// encodeDataAtom2 mirrors encodeDataAtom for use outside a *ioprim.Writer chain.
func encodeDataAtom2(typ uint32, payload []byte) []byte {
	w := ioprim.NewWriter()
	encodeDataAtom(w, typ, payload)
	return w.Bytes()
}

func TestParseMinimalMP4(t *testing.T) {
	raw := buildMinimalMP4(t, "Old Title")
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), int64(len(raw)), &diag, nil)
	require.NoError(t, err)
	require.Len(t, c.Tracks, 1)
	require.Equal(t, model.MediaAudio, c.Tracks[0].Media)
	require.Equal(t, 2, c.Tracks[0].Channels)
	require.Len(t, c.Tags, 1)
	f, ok := c.Tags[0].Field("\xa9nam")
	require.True(t, ok)
	require.Equal(t, "Old Title", f.Value.First())
}

func TestApplyChangesPatchesStcoOnFullRewrite(t *testing.T) {
	raw := buildMinimalMP4(t, "Old Title")
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), int64(len(raw)), &diag, nil)
	require.NoError(t, err)

	longTitle := "A Much Longer Replacement Title That Forces The moov Atom To Grow Past Its Original ilst Span"
	c.Tags[0].SetField(model.TagField{ID: "\xa9nam", Value: model.TextValue(longTitle)})

	var out bytes.Buffer
	_, err = c.ApplyChanges(&out, nil)
	require.NoError(t, err)

	rewritten := out.Bytes()
	var diag2 model.Diagnostics
	c2, err := Parse(bytes.NewReader(rewritten), int64(len(rewritten)), &diag2, nil)
	require.NoError(t, err)
	f, ok := c2.Tags[0].Field("\xa9nam")
	require.True(t, ok)
	require.Equal(t, longTitle, f.Value.First())

	mdatIdx := bytes.Index(rewritten, []byte("mdat"))
	require.GreaterOrEqual(t, mdatIdx, 4)
	newMdatStart := int64(mdatIdx - 4 + 8)

	stcoIdx := bytes.Index(rewritten, []byte("stco"))
	require.GreaterOrEqual(t, stcoIdx, 4)
	entriesStart := stcoIdx + 4 + 8
	off1 := int64(beUint32(rewritten[entriesStart : entriesStart+4]))
	off2 := int64(beUint32(rewritten[entriesStart+4 : entriesStart+8]))
	require.Equal(t, newMdatStart, off1)
	require.Equal(t, newMdatStart+300, off2)
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
