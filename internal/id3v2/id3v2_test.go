package id3v2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/model"
)

func TestWriteReadRoundTripV3(t *testing.T) {
	tag := &model.Tag{Format: model.TagFormatID3v2, Target: model.FileTarget}
	tag.SetField(model.TagField{ID: "TIT2", Value: model.TagValue{Kind: model.ValueText, Text: []string{"Hi"}, TextEncoding: model.EncodingUTF8}})
	tag.SetField(model.TagField{ID: "TPE1", Value: model.TagValue{Kind: model.ValueText, Text: []string{"Artist"}, TextEncoding: model.EncodingUTF8}})

	var diag model.Diagnostics
	raw, err := Write(tag, 3, 255, false, &diag)
	require.NoError(t, err)
	require.Equal(t, "ID3", string(raw[:3]))

	parsed, header, err := Read(raw, &diag)
	require.NoError(t, err)
	require.Equal(t, 3, header.MajorVersion)

	title, ok := parsed.Field("TIT2")
	require.True(t, ok)
	require.Equal(t, "Hi", title.Value.First())

	artist, ok := parsed.Field("TPE1")
	require.True(t, ok)
	require.Equal(t, "Artist", artist.Value.First())
}

func TestSynchsafeSizeBound(t *testing.T) {
	tag := &model.Tag{Format: model.TagFormatID3v2}
	tag.SetField(model.TagField{ID: "TIT2", Value: model.TagValue{Kind: model.ValueText, Text: []string{"Hi"}, TextEncoding: model.EncodingUTF8}})

	var diag model.Diagnostics
	raw, err := Write(tag, 3, 128, false, &diag)
	require.NoError(t, err)

	for _, b := range raw[6:10] {
		require.Zero(t, b&0x80, "synchsafe byte must have MSB clear")
	}
}

func TestCommentLanguageRoundTrip(t *testing.T) {
	tag := &model.Tag{Format: model.TagFormatID3v2}
	tag.Fields = append(tag.Fields, model.TagField{
		ID: "COMM", Language: "eng", SubID: "short",
		Value: model.TagValue{Kind: model.ValueText, Text: []string{"a comment"}, TextEncoding: model.EncodingUTF8},
	})

	var diag model.Diagnostics
	raw, err := Write(tag, 4, 0, false, &diag)
	require.NoError(t, err)

	parsed, _, err := Read(raw, &diag)
	require.NoError(t, err)
	c, ok := parsed.Field("COMM")
	require.True(t, ok)
	require.Equal(t, "eng", c.Language)
	require.Equal(t, "short", c.SubID)
	require.Equal(t, "a comment", c.Value.First())
}

func TestV22FrameIDMapping(t *testing.T) {
	id, ok := CanonicalID("TT2")
	require.True(t, ok)
	require.Equal(t, "TIT2", id)

	require.Equal(t, "TT2", ToVersionID("TIT2", 2))
	require.Equal(t, "TIT2", ToVersionID("TIT2", 3))
}

func TestLossyFrameDroppedOnUpgrade(t *testing.T) {
	require.True(t, IsLossyOnUpgrade("EQU"))
	require.True(t, IsLossyOnUpgrade("RVA"))
	require.False(t, IsLossyOnUpgrade("TIT2"))
}

func TestPictureRoundTrip(t *testing.T) {
	tag := &model.Tag{Format: model.TagFormatID3v2}
	tag.Fields = append(tag.Fields, model.TagField{ID: "APIC", Value: model.PictureTagValue(model.Picture{
		MimeType: "image/jpeg", Description: "cover", TypeCode: 3, Data: []byte{0xFF, 0xD8, 0xFF, 0x00},
	})})

	var diag model.Diagnostics
	raw, err := Write(tag, 3, 0, false, &diag)
	require.NoError(t, err)

	parsed, _, err := Read(raw, &diag)
	require.NoError(t, err)
	f, ok := parsed.Field("APIC")
	require.True(t, ok)
	require.Equal(t, "image/jpeg", f.Value.PictureValue.MimeType)
	require.Equal(t, byte(3), f.Value.PictureValue.TypeCode)
	require.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0x00}, f.Value.PictureValue.Data)
}

func TestUnsupportedMajorVersionRejected(t *testing.T) {
	raw := []byte("ID3\x05\x00\x00\x00\x00\x00\x00")
	var diag model.Diagnostics
	_, _, err := Read(raw, &diag)
	require.Error(t, err)
}
