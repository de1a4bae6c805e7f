package flac

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/vorbiscomment"
)

func TestStreamInfoRoundTrip(t *testing.T) {
	si := StreamInfo{
		MinBlockSize: 4096, MaxBlockSize: 4096,
		MinFrameSize: 100, MaxFrameSize: 200,
		SampleRate: 44100, ChannelCount: 2, BitsPerSample: 16,
		TotalSamples: 123456,
	}
	encoded := EncodeStreamInfo(si)
	require.Len(t, encoded, 34)

	decoded, err := ParseStreamInfo(encoded)
	require.NoError(t, err)
	require.Equal(t, si.SampleRate, decoded.SampleRate)
	require.Equal(t, si.ChannelCount, decoded.ChannelCount)
	require.Equal(t, si.BitsPerSample, decoded.BitsPerSample)
	require.Equal(t, si.TotalSamples, decoded.TotalSamples)
}

func TestReadWriteChainPreservesLastFlag(t *testing.T) {
	blocks := []Block{
		{Type: TypeStreamInfo, Payload: EncodeStreamInfo(StreamInfo{SampleRate: 44100, ChannelCount: 2, BitsPerSample: 16})},
		{Type: TypePadding, Payload: make([]byte, 100)},
	}
	w := ioprim.NewWriter()
	require.NoError(t, WriteChain(w, blocks))

	var diag model.Diagnostics
	rd := ioprim.NewReader(bytes.NewReader(w.Bytes()))
	parsed, err := ReadChain(rd, &diag)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	require.True(t, parsed[1].Last)
	require.False(t, parsed[0].Last)
}

func TestPictureInsertedBeforePadding(t *testing.T) {
	blocks := []Block{
		{Type: TypeStreamInfo, Payload: EncodeStreamInfo(StreamInfo{SampleRate: 44100, ChannelCount: 2, BitsPerSample: 16})},
		{Type: TypePadding, Payload: make([]byte, 50)},
	}
	tag := &model.Tag{}
	tag.Fields = append(tag.Fields, model.TagField{ID: "PICTURE", Value: model.PictureTagValue(model.Picture{
		MimeType: "image/jpeg", TypeCode: 3, Data: bytes.Repeat([]byte{0x01}, 2048),
	})})

	result := ApplyTag(blocks, tag, "mediatags")
	var pictureIdx, paddingIdx = -1, -1
	for i, b := range result {
		if b.Type == TypePicture {
			pictureIdx = i
		}
		if b.Type == TypePadding {
			paddingIdx = i
		}
	}
	require.NotEqual(t, -1, pictureIdx)
	require.NotEqual(t, -1, paddingIdx)
	require.Less(t, pictureIdx, paddingIdx)
}

func TestToTagDecodesVorbisComment(t *testing.T) {
	vc := &vorbiscomment.Block{Vendor: "mediatags", Comments: []vorbiscomment.Comment{{Key: "ARTIST", Value: "Bach"}}}
	blocks := []Block{{Type: TypeVorbisComment, Payload: vorbiscomment.Encode(vc)}}
	var diag model.Diagnostics
	tag, err := ToTag(blocks, &diag)
	require.NoError(t, err)
	f, ok := tag.Field("ARTIST")
	require.True(t, ok)
	require.Equal(t, "Bach", f.Value.First())
}

func TestStreamInfoTruncated(t *testing.T) {
	_, err := ParseStreamInfo(make([]byte, 10))
	require.Error(t, err)
}
