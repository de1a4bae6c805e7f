package ogg

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/vorbiscomment"
)

// ApplyChanges implements model.Backing for Ogg. Editing a comment
// packet is never a byte-for-byte in-place operation the way a trailing
// free/JUNK span absorbs a resized atom elsewhere: Ogg packets and
// pages don't align, so any size change re-paginates the whole header
// region. When the new header region happens to span the same number
// of pages as the old one, only that region is rewritten and the rest
// of the file streams through unchanged; when the page count changes,
// every later page of the primary serial number needs its sequence
// number and CRC recomputed (its payload is untouched).
func (b *backing) ApplyChanges(c *model.Container, src model.ReadSeeker, dst io.Writer, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	diag := &model.Diagnostics{}
	progress = model.EnsureProgress(progress)

	log := b.log.WithOperation("applyChanges")
	log.Debug("applying changes to Ogg stream")

	if b.rebuildComment == nil {
		return nil, model.NewError(model.KindInvalidData, "ogg.ApplyChanges", "no editable comment packet was found while reading this stream", nil)
	}

	var tag *model.Tag
	for _, t := range c.Tags {
		if t.Target.Scope == model.TargetFile {
			tag = t
			break
		}
	}
	if tag == nil {
		tag = &model.Tag{Format: model.TagFormatVorbisComment, Target: model.FileTarget}
	}
	vendor := tag.Version
	if vendor == "" {
		vendor = defaultOggVendor
	}
	block := vorbiscomment.FromTag(tag, vendor)
	newCommentPacket := b.rebuildComment(vorbiscomment.Encode(block))

	newHeaderPackets := make([][]byte, len(b.headerPackets))
	copy(newHeaderPackets, b.headerPackets)
	newHeaderPackets[b.commentIdx] = newCommentPacket

	newHeaderBytes, newHeaderPageCount := paginate(newHeaderPackets, b.primarySerial, b.firstSeq, true)

	progress.Report(10, "ogg: writing header pages")
	if _, err := dst.Write(newHeaderBytes); err != nil {
		return nil, model.IoErrorf("ogg.ApplyChanges", err, "write header pages")
	}

	if _, err := src.Seek(b.headerRegionEnd, io.SeekStart); err != nil {
		return nil, model.IoErrorf("ogg.ApplyChanges", err, "seek past header region")
	}

	if newHeaderPageCount == b.headerPageCount {
		progress.Report(50, "ogg: copying remaining pages")
		if _, err := io.Copy(dst, src); err != nil {
			return nil, model.IoErrorf("ogg.ApplyChanges", err, "copy remaining pages")
		}
		progress.Report(100, "ogg: rewrite complete")
		diag.Info("ogg.ApplyChanges", "header region repaginated in place, %d page(s) unchanged in count", newHeaderPageCount)
		return diag, nil
	}

	delta := int64(newHeaderPageCount) - int64(b.headerPageCount)
	progress.Report(50, "ogg: renumbering trailing pages")
	rd := ioprim.NewReader(src)
	for {
		header, err := ReadPageHeader(rd)
		if err != nil {
			if me, ok := err.(*model.Error); ok && me.Kind == model.KindIoError {
				break
			}
			return nil, err
		}
		payload, err := rd.ReadBytes(header.PayloadLen())
		if err != nil {
			return nil, err
		}
		if header.SerialNumber == b.primarySerial {
			header.PageSequence = uint32(int64(header.PageSequence) + delta)
			if _, err := dst.Write(EncodePage(header, payload)); err != nil {
				return nil, model.IoErrorf("ogg.ApplyChanges", err, "write renumbered page")
			}
			continue
		}
		w := ioprim.NewWriter()
		WritePageHeader(w, header)
		w.Write(payload)
		if _, err := dst.Write(w.Bytes()); err != nil {
			return nil, model.IoErrorf("ogg.ApplyChanges", err, "write passthrough page")
		}
	}

	progress.Report(100, "ogg: rewrite complete")
	diag.Info("ogg.ApplyChanges", "header region grew from %d to %d page(s); trailing pages of serial %d renumbered", b.headerPageCount, newHeaderPageCount, b.primarySerial)
	return diag, nil
}

const defaultOggVendor = "mediatags"

// maxPagePayload is the largest payload (255 segments of 255 bytes)
// that fits in one page's segment table.
const maxPagePayload = 255 * 255

// paginate lays out packets as a sequence of complete Ogg pages for
// serial, one packet (or, when a packet exceeds maxPagePayload, one
// run of full-page continuation chunks) at a time, and reports how
// many pages it produced.
func paginate(packets [][]byte, serial uint32, startSeq uint32, firstBOS bool) ([]byte, int) {
	var out []byte
	seq := startSeq
	pageCount := 0
	for i, pkt := range packets {
		data := pkt
		firstPageOfPacket := true
		for {
			chunk, continues := nextChunk(data)
			flags := byte(0)
			if i == 0 && firstPageOfPacket && firstBOS {
				flags |= FlagBOS
			}
			if !firstPageOfPacket {
				flags |= FlagContinued
			}
			header := PageHeader{
				Flags:        flags,
				SerialNumber: serial,
				PageSequence: seq,
				SegmentTable: buildSegTable(len(chunk), continues),
			}
			out = append(out, EncodePage(header, chunk)...)
			seq++
			pageCount++
			data = data[len(chunk):]
			firstPageOfPacket = false
			if !continues {
				break
			}
		}
	}
	return out, pageCount
}

// nextChunk returns the next page-sized slice of data and whether the
// packet continues past it. It backs off by one segment's worth of
// bytes at the exact maxPagePayload boundary so a terminal page never
// needs a 256th (zero-length terminator) segment table entry.
func nextChunk(data []byte) (chunk []byte, continues bool) {
	switch {
	case len(data) < maxPagePayload:
		return data, false
	case len(data) == maxPagePayload:
		return data[:maxPagePayload-255], true
	default:
		return data[:maxPagePayload], true
	}
}

// buildSegTable lays out a segment table for a chunk known to be
// chunkLen bytes; continues chunks are always an exact multiple of 255
// (guaranteed by nextChunk) so the table ends on a full 255 with no
// terminator, signalling "packet continues on the next page".
func buildSegTable(chunkLen int, continues bool) []byte {
	var table []byte
	n := chunkLen
	for n >= 255 {
		table = append(table, 255)
		n -= 255
	}
	if !continues {
		table = append(table, byte(n))
	}
	return table
}
