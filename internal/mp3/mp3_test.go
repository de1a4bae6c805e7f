package mp3

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/id3v1"
	"github.com/cesargomez89/mediatags/internal/id3v2"
	"github.com/cesargomez89/mediatags/internal/model"
)

// mpeg1L3StereoFrame is a 128kbps, 44100Hz, MPEG1 Layer III, stereo,
// no-padding frame: sync 0xFFE, version MPEG1, layer III, bitrate idx
// 9 (128kbps), samplerate idx 0 (44100), no padding, stereo.
func mpeg1L3StereoFrame() []byte {
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x00
	for i := 4; i < len(frame); i++ {
		frame[i] = 0xAA
	}
	return frame
}

func buildMinimalMP3(t *testing.T, title string, withID3v1 bool) []byte {
	t.Helper()

	tag := &model.Tag{Format: model.TagFormatID3v2, Target: model.FileTarget}
	tag.SetField(model.TagField{ID: "TIT2", Value: model.TextValue(title)})
	var diag model.Diagnostics
	id3v2Bytes, err := id3v2.Write(tag, 3, 0, false, &diag)
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.Write(id3v2Bytes)
	buf.Write(mpeg1L3StereoFrame())
	buf.Write(mpeg1L3StereoFrame())

	if withID3v1 {
		v1 := &model.Tag{Format: model.TagFormatID3v1}
		v1.SetField(model.TagField{ID: id3v1.FieldTitle, Value: model.TextValue("Old V1 Title")})
		v1Bytes, err := id3v1.Write(v1)
		require.NoError(t, err)
		buf.Write(v1Bytes)
	}
	return buf.Bytes()
}

func TestParseMinimalMP3(t *testing.T) {
	raw := buildMinimalMP3(t, "Old Title", true)
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), &diag, nil)
	require.NoError(t, err)

	require.Len(t, c.Tracks, 1)
	require.Equal(t, model.MediaAudio, c.Tracks[0].Media)
	require.Equal(t, 44100, c.Tracks[0].SampleRate)
	require.Equal(t, 2, c.Tracks[0].Channels)
	require.Equal(t, 128000, c.Tracks[0].Bitrate)

	var v2Tag, v1Tag *model.Tag
	for _, tg := range c.Tags {
		switch tg.Format {
		case model.TagFormatID3v2:
			v2Tag = tg
		case model.TagFormatID3v1:
			v1Tag = tg
		}
	}
	require.NotNil(t, v2Tag)
	f, ok := v2Tag.Field("TIT2")
	require.True(t, ok)
	require.Equal(t, "Old Title", f.Value.First())

	require.NotNil(t, v1Tag)
	v1f, ok := v1Tag.Field(id3v1.FieldTitle)
	require.True(t, ok)
	require.Equal(t, "Old V1 Title", v1f.Value.First())
}

// TestApplyChangesRewritesTagsAndCopiesFramesVerbatim checks that
// editing both the ID3v2 and ID3v1 tags leaves the MPEG audio frames
// byte-for-byte unchanged in between.
func TestApplyChangesRewritesTagsAndCopiesFramesVerbatim(t *testing.T) {
	raw := buildMinimalMP3(t, "Old Title", true)
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), &diag, nil)
	require.NoError(t, err)

	for _, tg := range c.Tags {
		switch tg.Format {
		case model.TagFormatID3v2:
			tg.SetField(model.TagField{ID: "TIT2", Value: model.TextValue("New Title")})
		case model.TagFormatID3v1:
			tg.SetField(model.TagField{ID: id3v1.FieldTitle, Value: model.TextValue("New V1 Title")})
		}
	}

	var out bytes.Buffer
	_, err = c.ApplyChanges(&out, nil)
	require.NoError(t, err)

	rewritten := out.Bytes()
	frame := mpeg1L3StereoFrame()
	require.True(t, bytes.Contains(rewritten, frame), "audio frame bytes must survive the rewrite unchanged")

	var diag2 model.Diagnostics
	c2, err := Parse(bytes.NewReader(rewritten), &diag2, nil)
	require.NoError(t, err)

	var v2Tag, v1Tag *model.Tag
	for _, tg := range c2.Tags {
		switch tg.Format {
		case model.TagFormatID3v2:
			v2Tag = tg
		case model.TagFormatID3v1:
			v1Tag = tg
		}
	}
	require.NotNil(t, v2Tag)
	f, ok := v2Tag.Field("TIT2")
	require.True(t, ok)
	require.Equal(t, "New Title", f.Value.First())

	require.NotNil(t, v1Tag)
	v1f, ok := v1Tag.Field(id3v1.FieldTitle)
	require.True(t, ok)
	require.Equal(t, "New V1 Title", v1f.Value.First())
}

func TestParseMP3WithoutID3v1Trailer(t *testing.T) {
	raw := buildMinimalMP3(t, "No Trailer", false)
	var diag model.Diagnostics
	c, err := Parse(bytes.NewReader(raw), &diag, nil)
	require.NoError(t, err)
	require.Len(t, c.Tracks, 1)

	for _, tg := range c.Tags {
		require.NotEqual(t, model.TagFormatID3v1, tg.Format)
	}
}
