package matroska

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/model"
)

// buildMinimalMatroska assembles an EBML header, a Segment holding
// Info/Tracks/Tags/a SeekHead covering all three, one Cluster with a
// CueClusterPosition referencing it, and a Cues element, wired so the
// full-rewrite path has a SeekHead entry and a Cue to recompute.
func buildMinimalMatroska(t *testing.T, title string) []byte {
	t.Helper()

	hdrPayload := ebml.Element(ebml.IDEBMLVersion, ebml.EncodeUint(1))
	hdrPayload = append(hdrPayload, ebml.Element(ebml.IDEBMLReadVersion, ebml.EncodeUint(1))...)
	hdrPayload = append(hdrPayload, ebml.Element(ebml.IDEBMLDocType, []byte("matroska"))...)
	hdrPayload = append(hdrPayload, ebml.Element(ebml.IDEBMLDocTypeVersion, ebml.EncodeUint(4))...)
	hdrPayload = append(hdrPayload, ebml.Element(ebml.IDEBMLDocTypeReadVersion, ebml.EncodeUint(2))...)
	hdrBytes := ebml.Element(ebml.IDEBMLHeader, hdrPayload)

	infoPayload := ebml.Element(ebml.IDTimestampScale, ebml.EncodeUint(1000000))
	infoBytes := ebml.Element(ebml.IDInfo, infoPayload)

	trackEntry := ebml.Element(ebml.IDTrackNumber, ebml.EncodeUint(1))
	trackEntry = append(trackEntry, ebml.Element(ebml.IDTrackUID, ebml.EncodeUint(1001))...)
	trackEntry = append(trackEntry, ebml.Element(ebml.IDTrackType, ebml.EncodeUint(trackTypeAudio))...)
	trackEntry = append(trackEntry, ebml.Element(ebml.IDCodecID, []byte("A_VORBIS"))...)
	tracksBytes := ebml.Element(ebml.IDTracks, ebml.Element(ebml.IDTrackEntry, trackEntry))

	simpleTag := ebml.Element(ebml.IDTagName, []byte("TITLE"))
	simpleTag = append(simpleTag, ebml.Element(ebml.IDTagString, []byte(title))...)
	tagElem := ebml.Element(ebml.IDTargets, nil)
	tagElem = append(tagElem, ebml.Element(ebml.IDSimpleTag, simpleTag)...)
	tagsBytes := ebml.Element(ebml.IDTags, ebml.Element(ebml.IDTag, tagElem))

	clusterPayload := ebml.Element(ebml.IDTimestamp, ebml.EncodeUint(0))
	clusterBytes := ebml.Element(ebml.IDCluster, clusterPayload)

	// Positions below are relative to the Segment payload start, filled
	// in once every preceding element's length is known.
	placeholderSeekHead := seekHeadBytes(t, map[uint64]int64{
		ebml.IDInfo:   0,
		ebml.IDTracks: 0,
		ebml.IDTags:   0,
		ebml.IDCues:   0,
	})

	segmentPayload := placeholderSeekHead
	infoOffset := int64(len(segmentPayload))
	segmentPayload = append(segmentPayload, infoBytes...)
	tracksOffset := int64(len(segmentPayload))
	segmentPayload = append(segmentPayload, tracksBytes...)
	tagsOffset := int64(len(segmentPayload))
	segmentPayload = append(segmentPayload, tagsBytes...)
	clusterOffset := int64(len(segmentPayload))
	segmentPayload = append(segmentPayload, clusterBytes...)

	cuePoint := ebml.Element(ebml.IDCueTime, ebml.EncodeUint(0))
	cueTrackPos := ebml.Element(ebml.IDCueTrack, ebml.EncodeUint(1))
	cueTrackPos = append(cueTrackPos, ebml.Element(ebml.IDCueClusterPosition, ebml.EncodeUint(uint64(clusterOffset)))...)
	cuePoint = append(cuePoint, ebml.Element(ebml.IDCueTrackPositions, cueTrackPos)...)
	cuesBytes := ebml.Element(ebml.IDCues, ebml.Element(ebml.IDCuePoint, cuePoint))
	cuesOffset := int64(len(segmentPayload))
	segmentPayload = append(segmentPayload, cuesBytes...)

	realSeekHead := seekHeadBytes(t, map[uint64]int64{
		ebml.IDInfo:   infoOffset,
		ebml.IDTracks: tracksOffset,
		ebml.IDTags:   tagsOffset,
		ebml.IDCues:   cuesOffset,
	})
	require.Equal(t, len(placeholderSeekHead), len(realSeekHead), "placeholder SeekHead must reserve its final size")
	copy(segmentPayload[:len(realSeekHead)], realSeekHead)

	segmentBytes := ebml.Element(ebml.IDSegment, segmentPayload)

	full := append([]byte{}, hdrBytes...)
	full = append(full, segmentBytes...)
	return full
}

// seekHeadBytes encodes a SeekHead with one Seek entry per id, each
// position a fixed 4-byte field so rebuildSeekHead's width can only
// grow, never shrink, keeping the reserved-length check simple.
func seekHeadBytes(t *testing.T, targets map[uint64]int64) []byte {
	t.Helper()
	ids := []uint64{ebml.IDInfo, ebml.IDTracks, ebml.IDTags, ebml.IDCues}
	var payload []byte
	for _, id := range ids {
		pos := targets[id]
		idBytes := ebml.EncodeUint(id)
		seekEntry := ebml.Element(ebml.IDSeekID, idBytes)
		seekEntry = append(seekEntry, ebml.Element(ebml.IDSeekPos, fixedUint(pos, 4))...)
		payload = append(payload, ebml.Element(ebml.IDSeek, seekEntry)...)
	}
	return ebml.Element(ebml.IDSeekHead, payload)
}

func fixedUint(v int64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0 && v > 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func TestParseMinimalMatroska(t *testing.T) {
	raw := buildMinimalMatroska(t, "Old Title")
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), int64(len(raw)), &diag, nil)
	require.NoError(t, err)
	require.Equal(t, "matroska", c.DocType)
	require.Len(t, c.Tracks, 1)
	require.Equal(t, model.MediaAudio, c.Tracks[0].Media)
	require.Len(t, c.Tags, 1)
	f, ok := c.Tags[0].Field("TITLE")
	require.True(t, ok)
	require.Equal(t, "Old Title", f.Value.First())
}

// TestApplyChangesRecomputesSeekHeadAndCues forces a full Segment
// rewrite (the new title is longer than the old Tags span has room
// for), the path that recomputes the SeekHead and Cues, and checks that
// the rewritten file re-parses with the new title and its one audio
// track. The patched Seek and CueClusterPosition values are not
// inspected directly.
func TestApplyChangesRecomputesSeekHeadAndCues(t *testing.T) {
	raw := buildMinimalMatroska(t, "X")
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), int64(len(raw)), &diag, nil)
	require.NoError(t, err)

	longTitle := "A Much Longer Replacement Title That Forces The Tags Element To Grow Past Any Trailing Padding"
	c.Tags[0].SetField(model.TagField{ID: "TITLE", Value: model.TextValue(longTitle)})

	var out bytes.Buffer
	_, err = c.ApplyChanges(&out, nil)
	require.NoError(t, err)

	rewritten := out.Bytes()
	var diag2 model.Diagnostics
	c2, err := Parse(bytes.NewReader(rewritten), int64(len(rewritten)), &diag2, nil)
	require.NoError(t, err)
	f, ok := c2.Tags[0].Field("TITLE")
	require.True(t, ok)
	require.Equal(t, longTitle, f.Value.First())

	require.Len(t, c2.Tracks, 1)
	require.Equal(t, model.MediaAudio, c2.Tracks[0].Media)
}
