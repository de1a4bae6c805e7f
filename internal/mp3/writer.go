package mp3

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/id3v1"
	"github.com/cesargomez89/mediatags/internal/id3v2"
	"github.com/cesargomez89/mediatags/internal/model"
)

// ApplyChanges implements model.Backing for MP3: the ID3v2 header (if
// any tag remains) is rewritten and padded to its old total length
// when it still fits, the audio frames stream through byte-for-byte
// unchanged, and the ID3v1 trailer (if any tag remains) is rewritten
// at the very end. No offset patching is needed anywhere in between.
func (b *backing) ApplyChanges(c *model.Container, src model.ReadSeeker, dst io.Writer, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	diag := &model.Diagnostics{}
	progress = model.EnsureProgress(progress)

	log := b.log.WithOperation("applyChanges")
	log.Debug("applying changes to MP3/MPEG audio stream")

	var id3v2Tag, id3v1Tag *model.Tag
	for _, t := range c.Tags {
		switch t.Format {
		case model.TagFormatID3v2:
			id3v2Tag = t
		case model.TagFormatID3v1:
			id3v1Tag = t
		}
	}

	var newID3v2Bytes []byte
	if id3v2Tag != nil {
		major := b.id3v2Header.MajorVersion
		if major == 0 {
			major = 3
		}
		var err error
		newID3v2Bytes, err = id3v2.Write(id3v2Tag, major, int(b.id3v2End), b.id3v2Header.Unsynchronised(), diag)
		if err != nil {
			return nil, err
		}
	}
	progress.Report(10, "mp3: writing ID3v2 tag")
	if len(newID3v2Bytes) > 0 {
		if _, err := dst.Write(newID3v2Bytes); err != nil {
			return nil, model.IoErrorf("mp3.ApplyChanges", err, "write ID3v2 tag")
		}
	}

	audioEnd := b.streamLen
	if b.id3v1Present {
		audioEnd -= constants.ID3v1TagSize
	}
	if _, err := src.Seek(b.id3v2End, io.SeekStart); err != nil {
		return nil, model.IoErrorf("mp3.ApplyChanges", err, "seek to audio data")
	}
	progress.Report(40, "mp3: copying audio frames")
	if _, err := io.CopyN(dst, src, audioEnd-b.id3v2End); err != nil {
		return nil, model.IoErrorf("mp3.ApplyChanges", err, "copy audio frames")
	}

	if id3v1Tag != nil {
		progress.Report(90, "mp3: writing ID3v1 trailer")
		v1Bytes, err := id3v1.Write(id3v1Tag)
		if err != nil {
			return nil, err
		}
		if _, err := dst.Write(v1Bytes); err != nil {
			return nil, model.IoErrorf("mp3.ApplyChanges", err, "write ID3v1 trailer")
		}
	}

	progress.Report(100, "mp3: rewrite complete")
	diag.Info("mp3.ApplyChanges", "ID3v2 header and/or ID3v1 trailer rewritten, audio frames copied verbatim")
	return diag, nil
}
