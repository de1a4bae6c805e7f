package wav

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// ApplyChanges implements model.Backing for RIFF/WAVE: it prefers
// absorbing a resized LIST/INFO chunk into the old LIST chunk's span
// plus any immediately trailing JUNK padding chunk (in-place); failing
// that, it rebuilds the whole chunk sequence and patches the RIFF
// header's overall-size field, the only file-level offset RIFF carries
// (unlike MP4/Matroska, no chunk references another chunk's absolute
// position).
func (b *backing) ApplyChanges(c *model.Container, src model.ReadSeeker, dst io.Writer, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	diag := &model.Diagnostics{}
	progress = model.EnsureProgress(progress)

	log := b.log.WithOperation("applyChanges")
	log.Debug("applying changes to RIFF/WAVE stream")

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, model.IoErrorf("wav.ApplyChanges", err, "rewind")
	}
	spans, err := scanTopLevelChunks(ioprim.NewReader(src))
	if err != nil {
		return nil, err
	}

	var tag *model.Tag
	for _, t := range c.Tags {
		if t.Target.Scope == model.TargetFile && t.Format == model.TagFormatRIFFInfo {
			tag = t
			break
		}
	}
	newListBytes := encodeListInfo(tag)

	listIdx := -1
	for i, s := range spans {
		if s.ID != "LIST" {
			continue
		}
		payload, err := readChunkPayload(src, s)
		if err == nil && len(payload) >= 4 && string(payload[:4]) == "INFO" {
			listIdx = i
			break
		}
	}

	if listIdx >= 0 {
		old := spans[listIdx]
		oldSpan := old.TotalLen
		if listIdx+1 < len(spans) && spans[listIdx+1].ID == "JUNK" {
			oldSpan += spans[listIdx+1].TotalLen
		}
		if int64(len(newListBytes)) <= oldSpan {
			progress.Report(10, "wav: in-place LIST rewrite")
			if err := writeInPlaceWav(src, dst, old.IDStart, oldSpan, newListBytes, diag); err != nil {
				return nil, err
			}
			progress.Report(100, "wav: in-place LIST rewrite complete")
			diag.Info("wav.ApplyChanges", "LIST/INFO rewritten in place, absorbing %d bytes of padding", oldSpan-int64(len(newListBytes)))
			return diag, nil
		}
	}

	progress.Report(10, "wav: full rewrite")
	if err := writeFullRewriteWav(src, dst, spans, listIdx, newListBytes); err != nil {
		return nil, err
	}
	progress.Report(100, "wav: full rewrite complete")
	diag.Info("wav.ApplyChanges", "chunk sequence fully rewritten")
	return diag, nil
}

func writeInPlaceWav(src io.ReadSeeker, dst io.Writer, spanStart, spanLen int64, newElem []byte, diag *model.Diagnostics) error {
	if err := copySpanWav(src, dst, 0, spanStart); err != nil {
		return err
	}
	if len(newElem) > 0 {
		if _, err := dst.Write(newElem); err != nil {
			return model.IoErrorf("wav.writeInPlaceWav", err, "write replacement LIST chunk")
		}
	}
	remainder := spanLen - int64(len(newElem))
	if remainder > 0 {
		pad := junkChunk(remainder)
		if pad == nil {
			diag.Warn("wav.writeInPlaceWav", "remainder %d too small to pad with a JUNK chunk", remainder)
		} else if _, err := dst.Write(pad); err != nil {
			return model.IoErrorf("wav.writeInPlaceWav", err, "write JUNK padding")
		}
	}
	if _, err := src.Seek(spanStart+spanLen, io.SeekStart); err != nil {
		return model.IoErrorf("wav.writeInPlaceWav", err, "seek past replaced span")
	}
	if _, err := io.Copy(dst, src); err != nil {
		return model.IoErrorf("wav.writeInPlaceWav", err, "copy remainder of file")
	}
	return nil
}

func copySpanWav(src io.ReadSeeker, dst io.Writer, start, length int64) error {
	if length == 0 {
		return nil
	}
	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return model.IoErrorf("wav.copySpanWav", err, "seek to %d", start)
	}
	if _, err := io.CopyN(dst, src, length); err != nil {
		return model.IoErrorf("wav.copySpanWav", err, "copy %d bytes from %d", length, start)
	}
	return nil
}

func readAllChunkBytes(src io.ReadSeeker, s chunkSpan) ([]byte, error) {
	buf := make([]byte, s.TotalLen)
	if _, err := src.Seek(s.IDStart, io.SeekStart); err != nil {
		return nil, model.IoErrorf("wav.readAllChunkBytes", err, "seek to %d", s.IDStart)
	}
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, model.IoErrorf("wav.readAllChunkBytes", err, "read %d bytes", s.TotalLen)
	}
	return buf, nil
}

func junkChunk(totalLen int64) []byte {
	if totalLen < 8 {
		return nil
	}
	w := ioprim.NewWriter()
	w.FixedString("JUNK")
	w.LU32(uint32(totalLen - 8))
	w.Write(make([]byte, totalLen-8))
	return w.Bytes()
}

// writeFullRewriteWav rebuilds the entire chunk sequence, replacing (or
// inserting) the LIST/INFO chunk, and recomputes the RIFF header's
// overall-size field.
func writeFullRewriteWav(src io.ReadSeeker, dst io.Writer, spans []chunkSpan, listIdx int, newListBytes []byte) error {
	var outChunks [][]byte
	inserted := false
	skipNext := false
	for i, s := range spans {
		if skipNext {
			skipNext = false
			continue
		}
		if i == listIdx {
			if len(newListBytes) > 0 {
				outChunks = append(outChunks, newListBytes)
			}
			inserted = true
			if i+1 < len(spans) && spans[i+1].ID == "JUNK" {
				skipNext = true
			}
			continue
		}
		raw, err := readAllChunkBytes(src, s)
		if err != nil {
			return err
		}
		outChunks = append(outChunks, raw)
		if s.ID == "fmt " && !inserted && listIdx < 0 && len(newListBytes) > 0 {
			outChunks = append(outChunks, newListBytes)
			inserted = true
		}
	}
	if !inserted && len(newListBytes) > 0 {
		outChunks = append(outChunks, newListBytes)
	}

	total := int64(4) // "WAVE"
	for _, c := range outChunks {
		total += int64(len(c))
	}
	if total > 0xFFFFFFFF {
		return model.NewError(model.KindBadTagOffset, "wav.writeFullRewriteWav", "resulting RIFF size exceeds 32 bits", nil)
	}

	w := ioprim.NewWriter()
	w.FixedString("RIFF")
	w.LU32(uint32(total))
	w.FixedString("WAVE")
	if _, err := dst.Write(w.Bytes()); err != nil {
		return model.IoErrorf("wav.writeFullRewriteWav", err, "write RIFF header")
	}
	for _, c := range outChunks {
		if _, err := dst.Write(c); err != nil {
			return model.IoErrorf("wav.writeFullRewriteWav", err, "write chunk")
		}
	}
	return nil
}
