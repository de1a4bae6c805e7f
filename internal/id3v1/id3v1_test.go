package id3v1

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/model"
)

func buildTrailer(t *testing.T, title, artist, album, year, comment string, track, genre byte) []byte {
	t.Helper()
	buf := make([]byte, 128)
	copy(buf, "TAG")
	copy(buf[3:33], title)
	copy(buf[33:63], artist)
	copy(buf[63:93], album)
	copy(buf[93:97], year)
	copy(buf[97:125], comment)
	if track != 0 {
		buf[125] = 0x00
		buf[126] = track
	}
	buf[127] = genre
	return buf
}

func TestReadV1(t *testing.T) {
	raw := buildTrailer(t, "Air", "Bach", "Suites", "1985", "Nice", 0, 17)
	r := bytes.NewReader(append([]byte("junkjunk"), raw...))
	tag, err := Read(r, int64(r.Len()))
	require.NoError(t, err)
	require.Equal(t, model.TagFormatID3v1, tag.Format)

	title, ok := tag.Field(FieldTitle)
	require.True(t, ok)
	require.Equal(t, "Air", title.Value.First())

	artist, ok := tag.Field(FieldArtist)
	require.True(t, ok)
	require.Equal(t, "Bach", artist.Value.First())

	genre, ok := tag.Field(FieldGenre)
	require.True(t, ok)
	require.Equal(t, 17, genre.Value.GenreValue.Code)
	require.Equal(t, "Rock", genre.Value.GenreValue.Text)

	_, hasTrack := tag.Field(FieldTrack)
	require.False(t, hasTrack)
}

func TestReadV11WithTrack(t *testing.T) {
	raw := buildTrailer(t, "Title", "Artist", "Album", "2001", "hi", 5, 0)
	r := bytes.NewReader(raw)
	tag, err := Read(r, int64(len(raw)))
	require.NoError(t, err)

	track, ok := tag.Field(FieldTrack)
	require.True(t, ok)
	require.Equal(t, int64(5), track.Value.Int)
}

func TestReadTooShort(t *testing.T) {
	r := bytes.NewReader(make([]byte, 10))
	_, err := Read(r, 10)
	require.Error(t, err)
	require.True(t, isKind(err, model.KindNoDataFound))
}

func TestReadNoMagic(t *testing.T) {
	r := bytes.NewReader(make([]byte, 128))
	_, err := Read(r, 128)
	require.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	tag := &model.Tag{Format: model.TagFormatID3v1, Target: model.FileTarget}
	tag.SetField(model.TagField{ID: FieldTitle, Value: model.TagValue{Kind: model.ValueText, Text: []string{"Hello"}, TextEncoding: model.EncodingLatin1}})
	tag.SetField(model.TagField{ID: FieldArtist, Value: model.TagValue{Kind: model.ValueText, Text: []string{"World"}, TextEncoding: model.EncodingLatin1}})
	tag.SetField(model.TagField{ID: FieldTrack, Value: model.IntValue(3)})
	tag.SetField(model.TagField{ID: FieldGenre, Value: model.TagValue{Kind: model.ValueGenre, GenreValue: model.Genre{Code: 9, Text: "Metal"}}})

	raw, err := Write(tag)
	require.NoError(t, err)
	require.Len(t, raw, 128)
	require.Equal(t, "TAG", string(raw[:3]))

	roundTripped, err := Read(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	title, _ := roundTripped.Field(FieldTitle)
	require.Equal(t, "Hello", title.Value.First())
	track, ok := roundTripped.Field(FieldTrack)
	require.True(t, ok)
	require.Equal(t, int64(3), track.Value.Int)
}

func isKind(err error, k model.Kind) bool {
	me, ok := err.(*model.Error)
	return ok && me.Kind == k
}
