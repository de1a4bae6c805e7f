package vorbiscomment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	block := &Block{
		Vendor: "mediatags 1.0",
		Comments: []Comment{
			{Key: "ARTIST", Value: "Bach"},
			{Key: "TITLE", Value: "Air"},
		},
	}
	raw := Encode(block)
	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "mediatags 1.0", decoded.Vendor)
	require.Len(t, decoded.Comments, 2)
	require.Equal(t, "ARTIST", decoded.Comments[0].Key)
	require.Equal(t, "Bach", decoded.Comments[0].Value)
}

func TestDecodeSkipsMalformedEntry(t *testing.T) {
	w := encodeRawForTest("vendor", []string{"NOEQUALSHERE", "ARTIST=Bach"})
	decoded, err := Decode(w)
	require.NoError(t, err)
	require.Len(t, decoded.Comments, 1)
	require.Equal(t, "ARTIST", decoded.Comments[0].Key)
}

func TestToTagGroupsMultiValue(t *testing.T) {
	block := &Block{Comments: []Comment{
		{Key: "ARTIST", Value: "Bach"},
		{Key: "ARTIST", Value: "Glenn Gould"},
		{Key: "TITLE", Value: "Air"},
	}}
	tag := ToTag(block)
	f, ok := tag.Field("ARTIST")
	require.True(t, ok)
	require.Equal(t, []string{"Bach", "Glenn Gould"}, f.Value.Text)
}

func TestFromTagFlattens(t *testing.T) {
	tag := &model.Tag{}
	tag.Fields = append(tag.Fields, model.TagField{ID: "artist", Value: model.TextValues([]string{"A", "B"})})
	block := FromTag(tag, "v1")
	require.Len(t, block.Comments, 2)
	require.Equal(t, "ARTIST", block.Comments[0].Key)
}

// encodeRawForTest hand-rolls the wire layout since the malformed-entry
// test needs a raw entry with no '=' at all, which Encode/Comment can't
// express.
func encodeRawForTest(vendor string, entries []string) []byte {
	buf := make([]byte, 0, 64)
	put32 := func(v uint32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	put32(uint32(len(vendor)))
	buf = append(buf, vendor...)
	put32(uint32(len(entries)))
	for _, e := range entries {
		put32(uint32(len(e)))
		buf = append(buf, e...)
	}
	return buf
}
