// Package id3v1 reads and writes the fixed 128-byte ID3v1 trailer: a
// "TAG"-prefixed struct of fixed-width Latin-1 fields at the very end of
// an MP3 stream. Written in the same fixed-width, offset-driven style
// cesargomez89-navidrums/internal/tagging/tagging.go uses for its other
// vendor-specific fixed-size blocks, applied here to ID3v1's own field
// layout.
package id3v1

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/textenc"
)

const (
	titleOffset   = 3
	titleLen      = 30
	artistOffset  = 33
	artistLen     = 30
	albumOffset   = 63
	albumLen      = 30
	yearOffset    = 93
	yearLen       = 4
	commentOffset = 97
	// ID3v1.1 reuses the last two comment bytes for a zero byte marker
	// plus a track number when present (comment byte 28 == 0x00).
	commentLenV1  = 30
	commentLenV11 = 28
	trackMarker   = 125
	trackOffset   = 126
	genreOffset   = 127
)

// Frame field IDs, chosen to line up with the ID3v2 frame ids the caller
// will already recognise.
const (
	FieldTitle   = "TIT2"
	FieldArtist  = "TPE1"
	FieldAlbum   = "TALB"
	FieldYear    = "TYER"
	FieldComment = "COMM"
	FieldTrack   = "TRCK"
	FieldGenre   = "TCON"
)

// Read locates and parses the trailing ID3v1 tag in stream, whose total
// size is streamLen. Returns model.ErrNoDataFound if the file is
// shorter than 128 bytes or the trailer lacks the "TAG" magic.
func Read(stream io.ReadSeeker, streamLen int64) (*model.Tag, error) {
	if streamLen < constants.ID3v1TagSize {
		return nil, model.NewError(model.KindNoDataFound, "id3v1.Read", "file too short for an ID3v1 trailer", nil)
	}
	buf := make([]byte, constants.ID3v1TagSize)
	if _, err := stream.Seek(streamLen-constants.ID3v1TagSize, io.SeekStart); err != nil {
		return nil, model.IoErrorf("id3v1.Read", err, "seek to trailer")
	}
	if _, err := io.ReadFull(stream, buf); err != nil {
		return nil, model.IoErrorf("id3v1.Read", err, "read trailer")
	}
	if string(buf[:3]) != constants.MagicID3v1 {
		return nil, model.NewError(model.KindNoDataFound, "id3v1.Read", "no ID3v1 magic at expected offset", nil)
	}
	return parse(buf), nil
}

func parse(buf []byte) *model.Tag {
	tag := &model.Tag{Format: model.TagFormatID3v1, Target: model.FileTarget}

	addText := func(id string, b []byte) {
		s := trimPadded(b)
		if s == "" {
			return
		}
		tag.SetField(model.TagField{ID: id, Value: model.TagValue{
			Kind: model.ValueText, Text: []string{s}, TextEncoding: model.EncodingLatin1,
		}})
	}
	addText(FieldTitle, buf[titleOffset:titleOffset+titleLen])
	addText(FieldArtist, buf[artistOffset:artistOffset+artistLen])
	addText(FieldAlbum, buf[albumOffset:albumOffset+albumLen])
	addText(FieldYear, buf[yearOffset:yearOffset+yearLen])

	// ID3v1.1: byte 125 of the tag (the comment field's last-but-one
	// byte) is zero and byte 126 holds a binary track number.
	isV11 := buf[trackMarker] == 0x00 && buf[trackOffset] != 0x00
	commentLen := commentLenV1
	if isV11 {
		commentLen = commentLenV11
	}
	addText(FieldComment, buf[commentOffset:commentOffset+commentLen])
	if isV11 {
		tag.SetField(model.TagField{ID: FieldTrack, Value: model.IntValue(int64(buf[trackOffset]))})
	}

	genreCode := int(buf[genreOffset])
	genreText := genreName(genreCode)
	if genreCode != 0xFF {
		tag.SetField(model.TagField{ID: FieldGenre, Value: model.TagValue{
			Kind:       model.ValueGenre,
			GenreValue: model.Genre{Code: genreCode, Text: genreText},
		}})
	}
	return tag
}

func trimPadded(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0x00 || b[end-1] == ' ') {
		end--
	}
	return textenc.DecodeLatin1(b[:end])
}

// Write serialises tag as a 128-byte ID3v1(.1) trailer. Writes ID3v1.1
// (with a binary track number) when TRCK is present and fits a single
// byte, otherwise falls back to the plain ID3v1 30-byte comment.
func Write(tag *model.Tag) ([]byte, error) {
	buf := make([]byte, constants.ID3v1TagSize)
	copy(buf, constants.MagicID3v1)

	putField := func(id string, offset, width int) error {
		f, ok := tag.Field(id)
		if !ok || f.Value.Kind != model.ValueText {
			return nil
		}
		enc, err := textenc.EncodeLatin1(f.Value.First())
		if err != nil {
			return model.NewError(model.KindInvalidData, "id3v1.Write", "field "+id+" not representable in Latin-1", err)
		}
		n := copy(buf[offset:offset+width], enc)
		_ = n
		return nil
	}
	if err := putField(FieldTitle, titleOffset, titleLen); err != nil {
		return nil, err
	}
	if err := putField(FieldArtist, artistOffset, artistLen); err != nil {
		return nil, err
	}
	if err := putField(FieldAlbum, albumOffset, albumLen); err != nil {
		return nil, err
	}
	if err := putField(FieldYear, yearOffset, yearLen); err != nil {
		return nil, err
	}

	trackField, hasTrack := tag.Field(FieldTrack)
	commentWidth := commentLenV1
	if hasTrack && trackField.Value.Kind == model.ValueInteger && trackField.Value.Int >= 0 && trackField.Value.Int <= 255 {
		commentWidth = commentLenV11
	}
	if err := putField(FieldComment, commentOffset, commentWidth); err != nil {
		return nil, err
	}
	if commentWidth == commentLenV11 {
		buf[trackOffset] = byte(trackField.Value.Int)
	}

	genre := 0xFF
	if f, ok := tag.Field(FieldGenre); ok && f.Value.Kind == model.ValueGenre {
		if f.Value.GenreValue.Code >= 0 && f.Value.GenreValue.Code <= 255 {
			genre = f.Value.GenreValue.Code
		}
	}
	buf[genreOffset] = byte(genre)
	return buf, nil
}
