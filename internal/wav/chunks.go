package wav

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// chunkSpan is one top-level RIFF chunk: idStart is the byte offset of
// its 4-byte id, headerLen is always 8 (id + LU32 size), and totalLen
// includes the even-padding byte RIFF requires after an odd-sized
// payload.
type chunkSpan struct {
	ID        string
	IDStart   int64
	HeaderLen int64
	TotalLen  int64
}

func (c chunkSpan) End() int64 { return c.IDStart + c.TotalLen }

// scanTopLevelChunks walks every chunk directly under the RIFF form,
// stopping at EOF (RIFF streams have no declared "last chunk" marker,
// unlike FLAC/EBML).
func scanTopLevelChunks(rd *ioprim.Reader) ([]chunkSpan, error) {
	magic, err := rd.FixedString(4)
	if err != nil {
		return nil, err
	}
	if magic != "RIFF" {
		return nil, model.InvalidDataf("wav.scanTopLevelChunks", "missing RIFF magic")
	}
	if _, err := rd.LU32(); err != nil {
		return nil, err
	}
	if _, err := rd.FixedString(4); err != nil { // "WAVE"
		return nil, err
	}

	var spans []chunkSpan
	for {
		idStart, err := rd.Pos()
		if err != nil {
			return nil, err
		}
		id, err := rd.FixedString(4)
		if err != nil {
			break // EOF: RIFF streams end without a terminator chunk
		}
		size, err := rd.LU32()
		if err != nil {
			return nil, err
		}
		pos, err := rd.Pos()
		if err != nil {
			return nil, err
		}
		pad := int64(size & 1)
		total := 8 + int64(size) + pad
		spans = append(spans, chunkSpan{ID: id, IDStart: idStart, HeaderLen: 8, TotalLen: total})
		if _, err := rd.Seek(pos+int64(size)+pad, io.SeekStart); err != nil {
			break
		}
	}
	return spans, nil
}
