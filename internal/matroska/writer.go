package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// ApplyChanges implements model.Backing for Matroska/WebM:
// it prefers absorbing the new Tags element into the span of the old
// Tags element plus any immediately trailing Void element (in-place);
// failing that, it performs a full Segment rewrite with SeekHead
// recomputed last.
func (b *backing) ApplyChanges(c *model.Container, src model.ReadSeeker, dst io.Writer, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	diag := &model.Diagnostics{}
	progress = model.EnsureProgress(progress)
	log := b.log.WithOperation("applyChanges")
	log.Debug("applying changes to EBML stream")

	seg := b.arena.Get(b.segmentIdx)
	children, err := b.arena.Children(src, b.segmentIdx)
	if err != nil {
		return nil, err
	}

	tagsNodeIdx, hasTags := int32(-1), false
	voidAfterTagsIdx, hasVoidAfter := int32(-1), false
	for i, idx := range children {
		n := b.arena.Get(idx)
		if n.ID == ebml.IDTags {
			tagsNodeIdx, hasTags = idx, true
			if i+1 < len(children) {
				next := b.arena.Get(children[i+1])
				if next.ID == ebml.IDVoid {
					voidAfterTagsIdx, hasVoidAfter = children[i+1], true
				}
			}
			break
		}
	}

	newTagsElem := encodeTagsElement(c.Tags)

	if hasTags {
		tagsNode := b.arena.Get(tagsNodeIdx)
		oldSpan := tagsNode.TotalLen
		if hasVoidAfter {
			oldSpan += b.arena.Get(voidAfterTagsIdx).TotalLen
		}
		if int64(len(newTagsElem)) <= oldSpan {
			progress.Report(10, "matroska: in-place Tags rewrite")
			if err := b.writeInPlace(src, dst, tagsNode.Start, oldSpan, newTagsElem, diag); err != nil {
				return nil, err
			}
			progress.Report(100, "matroska: in-place Tags rewrite complete")
			diag.Info("matroska.ApplyChanges", "Tags rewritten in place, absorbing %d bytes of padding", oldSpan-int64(len(newTagsElem)))
			return diag, nil
		}
	}

	progress.Report(10, "matroska: full segment rewrite")
	if err := b.writeFullRewrite(src, dst, seg, children, tagsNodeIdx, hasTags, voidAfterTagsIdx, hasVoidAfter, newTagsElem, diag, progress); err != nil {
		return nil, err
	}
	progress.Report(100, "matroska: full segment rewrite complete")
	diag.Info("matroska.ApplyChanges", "Segment fully rewritten; Tags element moved or resized beyond available padding")
	return diag, nil
}

// encodeTagsElement builds a complete Tags element (id+size+payload).
func encodeTagsElement(tags []*model.Tag) []byte {
	return ebml.Element(ebml.IDTags, encodeTags(tags))
}

// writeInPlace streams the whole file to dst unchanged except that the
// byte span [spanStart, spanStart+spanLen) is replaced with newElem
// followed by a Void element padding out to spanLen, if any bytes
// remain.
func (b *backing) writeInPlace(src io.ReadSeeker, dst io.Writer, spanStart, spanLen int64, newElem []byte, diag *model.Diagnostics) error {
	if err := copySpan(src, dst, 0, spanStart); err != nil {
		return err
	}
	if _, err := dst.Write(newElem); err != nil {
		return model.IoErrorf("matroska.writeInPlace", err, "write replacement element")
	}
	remainder := spanLen - int64(len(newElem))
	if remainder > 0 {
		void := ebml.VoidElement(remainder)
		if void == nil {
			diag.Warn("matroska.writeInPlace", "remainder %d too small to pad with Void; leaving a size mismatch diagnostic only", remainder)
		} else if _, err := dst.Write(void); err != nil {
			return model.IoErrorf("matroska.writeInPlace", err, "write Void padding")
		}
	}
	if _, err := src.Seek(spanStart+spanLen, io.SeekStart); err != nil {
		return model.IoErrorf("matroska.writeInPlace", err, "seek past replaced span")
	}
	_, err := io.Copy(dst, src)
	if err != nil {
		return model.IoErrorf("matroska.writeInPlace", err, "copy remainder of file")
	}
	return nil
}

// copySpan copies [start, start+length) from src to dst verbatim.
func copySpan(src io.ReadSeeker, dst io.Writer, start, length int64) error {
	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return model.IoErrorf("matroska.copySpan", err, "seek to %d", start)
	}
	if _, err := io.CopyN(dst, src, length); err != nil {
		return model.IoErrorf("matroska.copySpan", err, "copy %d bytes from %d", length, start)
	}
	return nil
}

// writeFullRewrite performs the general Segment rewrite: everything
// before the Segment (the EBML header) is copied verbatim, then every
// top-level child is re-emitted in order (Tags replaced, reserved-width
// placeholders left where SeekHead and Cues sit), and finally
// SeekHead's Seek entries and Cues' CueClusterPosition entries are
// patched with the offsets computed along the way, since both record
// positions relative to the Segment that shift whenever a preceding
// element's size changes.
func (b *backing) writeFullRewrite(src io.ReadSeeker, dst io.Writer, seg element.Node, children []int32, tagsNodeIdx int32, hasTags bool, voidAfterTagsIdx int32, hasVoidAfter bool, newTagsElem []byte, diag *model.Diagnostics, progress model.ProgressFeedback) error {
	if err := copySpan(src, dst, 0, seg.Start); err != nil {
		return err
	}

	var seekHeadIdx int32 = -1
	var cuesIdx int32 = -1
	type blob struct {
		id    uint64
		bytes []byte // nil for the SeekHead/Cues placeholders, filled in after offsets are known
		node  element.Node
	}
	var blobs []blob
	skip := map[int32]bool{}
	if hasVoidAfter {
		skip[voidAfterTagsIdx] = true
	}
	for _, idx := range children {
		if skip[idx] {
			continue
		}
		n := b.arena.Get(idx)
		switch {
		case n.ID == ebml.IDSeekHead:
			seekHeadIdx = idx
			blobs = append(blobs, blob{id: n.ID, bytes: nil, node: n})
		case n.ID == ebml.IDCues:
			cuesIdx = idx
			blobs = append(blobs, blob{id: n.ID, bytes: nil, node: n})
		case hasTags && idx == tagsNodeIdx:
			blobs = append(blobs, blob{id: ebml.IDTags, bytes: newTagsElem})
			if void := ebml.VoidElement(b.opts.PaddingReserve); void != nil {
				blobs = append(blobs, blob{id: ebml.IDVoid, bytes: void})
			}
		default:
			raw, err := copyNodeBytes(src, n)
			if err != nil {
				return err
			}
			blobs = append(blobs, blob{id: n.ID, bytes: raw, node: n})
		}
	}
	if !hasTags {
		blobs = append(blobs, blob{id: ebml.IDTags, bytes: newTagsElem})
		if void := ebml.VoidElement(b.opts.PaddingReserve); void != nil {
			blobs = append(blobs, blob{id: ebml.IDVoid, bytes: void})
		}
	}

	// oldClusterOffset is the first Cluster's original position relative
	// to the Segment payload start, read directly off the original
	// children rather than reconstructed from blobs (Clusters are never
	// rewritten, so their relative order and the Void elements this
	// rewrite drops don't need separate bookkeeping here).
	oldClusterOffset := seg.End() - b.segmentStart
	for _, idx := range children {
		n := b.arena.Get(idx)
		if n.ID == ebml.IDCluster {
			oldClusterOffset = n.Start - b.segmentStart
			break
		}
	}

	// Pass 1: compute offsets (relative to the first byte after the
	// Segment header, SeekHead's and Cues' reference point), and the
	// byte delta between the rewritten prefix and the original one up
	// to the first Cluster. Every Cluster is copied verbatim and they
	// all shift by the same delta, since nothing moves in between them.
	offsets := make(map[uint64]int64)
	var running int64
	var seekHeadLen int64
	var cuesLen int64
	clusterDelta := -oldClusterOffset
	sawCluster := false
	for _, bl := range blobs {
		if !sawCluster && bl.id == ebml.IDCluster {
			clusterDelta = running - oldClusterOffset
			sawCluster = true
		}
		if bl.bytes == nil { // SeekHead/Cues placeholder: length preserved from the original
			if bl.id == ebml.IDSeekHead {
				seekHeadLen = bl.node.TotalLen
			} else {
				cuesLen = bl.node.TotalLen
			}
			offsets[bl.id] = running
			running += bl.node.TotalLen
			continue
		}
		offsets[bl.id] = running
		running += int64(len(bl.bytes))
	}
	if !sawCluster {
		clusterDelta = running - oldClusterOffset
	}

	var seekHeadBytes []byte
	if seekHeadIdx != -1 {
		var err error
		seekHeadBytes, err = b.rebuildSeekHead(src, seekHeadIdx, offsets, seekHeadLen, diag)
		if err != nil {
			return err
		}
	}

	var cuesBytes []byte
	if cuesIdx != -1 {
		var err error
		cuesBytes, err = b.rebuildCues(src, cuesIdx, clusterDelta, cuesLen, diag)
		if err != nil {
			return err
		}
	}

	// Pass 2: emit.
	if err := writeSegmentHeader(dst); err != nil {
		return err
	}
	step := 0
	for _, bl := range blobs {
		step++
		progress.Report(10+80*step/max1(len(blobs)), "matroska: writing top-level element")
		if progress.Cancelled() {
			return model.NewError(model.KindOperationAborted, "matroska.writeFullRewrite", "cancelled", nil)
		}
		if bl.bytes == nil {
			var out []byte
			if bl.id == ebml.IDSeekHead {
				out = seekHeadBytes
			} else {
				out = cuesBytes
			}
			if _, err := dst.Write(out); err != nil {
				return model.IoErrorf("matroska.writeFullRewrite", err, "write top-level element")
			}
			continue
		}
		if _, err := dst.Write(bl.bytes); err != nil {
			return model.IoErrorf("matroska.writeFullRewrite", err, "write top-level element")
		}
	}
	return nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// copyNodeBytes reads n's full span (header + payload) from src.
func copyNodeBytes(src io.ReadSeeker, n element.Node) ([]byte, error) {
	rd := ioprim.NewReader(src)
	if _, err := rd.Seek(n.Start, io.SeekStart); err != nil {
		return nil, err
	}
	return rd.ReadBytes(int(n.TotalLen))
}

// writeSegmentHeader emits the Segment id with an unknown-size VINT.
// Matroska muxers almost always write Segment with unknown size since
// Cluster data (which this library never touches) is appended after
// it indefinitely; keeping that convention on rewrite means the byte
// range after the top-level elements handled here stays valid.
func writeSegmentHeader(dst io.Writer) error {
	w := ioprim.NewWriter()
	ioprim.WriteVINTID(w, ebml.IDSegment, 4)
	// 8-byte unknown-size VINT: marker 0x01 followed by seven 0xFF
	// bytes is the de facto standard unknown-length encoding.
	w.U8(0x01)
	for i := 0; i < 7; i++ {
		w.U8(0xFF)
	}
	_, err := dst.Write(w.Bytes())
	if err != nil {
		return model.IoErrorf("matroska.writeSegmentHeader", err, "write Segment header")
	}
	return nil
}

// rebuildSeekHead re-encodes a SeekHead's Seek entries with updated
// positions, preserving each entry's target id and VINT width so the
// element's total encoded length matches seekHeadLen (the length
// reserved for it during pass 1).
func (b *backing) rebuildSeekHead(src io.ReadSeeker, seekHeadIdx int32, offsets map[uint64]int64, seekHeadLen int64, diag *model.Diagnostics) ([]byte, error) {
	entries, err := b.arena.Children(src, seekHeadIdx)
	if err != nil {
		return nil, err
	}
	w := ioprim.NewWriter()
	for _, idx := range entries {
		n := b.arena.Get(idx)
		if n.ID != ebml.IDSeek {
			continue
		}
		idBytes, posBytes, err := b.readSeekEntry(src, idx)
		if err != nil {
			diag.Warn("matroska.rebuildSeekHead", "malformed Seek entry: %v", err)
			continue
		}
		targetID := ebml.DecodeUint(idBytes)
		newPos, ok := offsets[targetID]
		if !ok {
			continue // target element no longer present; drop the stale Seek entry
		}
		posWidth := len(posBytes)
		ew := ioprim.NewWriter()
		ebml.EncodeElement(ew, ebml.IDSeekID, idBytes)
		needed := ioprim.VINTSizeLength(uint64(newPos))
		if needed > posWidth {
			posWidth = needed
			diag.Info("matroska.rebuildSeekHead", "Seek entry for element %x widened to fit new offset %d", targetID, newPos)
		}
		ebml.EncodeElement(ew, ebml.IDSeekPos, encodeUintFixed(uint64(newPos), posWidth))
		ebml.EncodeElement(w, ebml.IDSeek, ew.Bytes())
	}
	out := ebml.Element(ebml.IDSeekHead, w.Bytes())
	if int64(len(out)) != seekHeadLen {
		diag.Warn("matroska.rebuildSeekHead", "SeekHead size changed from %d to %d bytes; top-level offsets after it were recomputed for the original reserved length", seekHeadLen, len(out))
	}
	return out, nil
}

// encodeUintFixed encodes v as a big-endian unsigned integer padded
// with leading zero bytes to exactly width bytes.
func encodeUintFixed(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0 && v > 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// rebuildCues re-encodes a Cues element, shifting every
// CueClusterPosition entry by delta (how far the first Cluster moved
// relative to the Segment payload start) and copying every other field
// verbatim.
func (b *backing) rebuildCues(src io.ReadSeeker, cuesIdx int32, delta int64, cuesLen int64, diag *model.Diagnostics) ([]byte, error) {
	points, err := b.arena.Children(src, cuesIdx)
	if err != nil {
		return nil, err
	}
	w := ioprim.NewWriter()
	for _, idx := range points {
		n := b.arena.Get(idx)
		if n.ID != ebml.IDCuePoint {
			raw, err := copyNodeBytes(src, n)
			if err != nil {
				return nil, err
			}
			w.Write(raw)
			continue
		}
		point, err := b.rebuildCuePoint(src, idx, delta, diag)
		if err != nil {
			return nil, err
		}
		w.Write(point)
	}
	out := ebml.Element(ebml.IDCues, w.Bytes())
	if int64(len(out)) != cuesLen {
		diag.Warn("matroska.rebuildCues", "Cues size changed from %d to %d bytes; top-level offsets after it were recomputed for the original reserved length", cuesLen, len(out))
	}
	return out, nil
}

func (b *backing) rebuildCuePoint(src io.ReadSeeker, pointIdx int32, delta int64, diag *model.Diagnostics) ([]byte, error) {
	children, err := b.arena.Children(src, pointIdx)
	if err != nil {
		return nil, err
	}
	w := ioprim.NewWriter()
	for _, idx := range children {
		n := b.arena.Get(idx)
		if n.ID != ebml.IDCueTrackPositions {
			raw, err := copyNodeBytes(src, n)
			if err != nil {
				return nil, err
			}
			w.Write(raw)
			continue
		}
		pos, err := b.rebuildCueTrackPositions(src, idx, delta, diag)
		if err != nil {
			return nil, err
		}
		w.Write(pos)
	}
	return ebml.Element(ebml.IDCuePoint, w.Bytes()), nil
}

func (b *backing) rebuildCueTrackPositions(src io.ReadSeeker, idx int32, delta int64, diag *model.Diagnostics) ([]byte, error) {
	children, err := b.arena.Children(src, idx)
	if err != nil {
		return nil, err
	}
	w := ioprim.NewWriter()
	for _, cIdx := range children {
		n := b.arena.Get(cIdx)
		if n.ID != ebml.IDCueClusterPosition {
			raw, err := copyNodeBytes(src, n)
			if err != nil {
				return nil, err
			}
			w.Write(raw)
			continue
		}
		payload, err := readLeafPayload(src, n)
		if err != nil {
			return nil, err
		}
		newPos := int64(ebml.DecodeUint(payload)) + delta
		if newPos < 0 {
			return nil, model.NewError(model.KindBadTagOffset, "matroska.rebuildCueTrackPositions", "cluster position cannot be represented after rewrite", nil)
		}
		width := len(payload)
		if needed := ioprim.VINTSizeLength(uint64(newPos)); needed > width {
			width = needed
			diag.Info("matroska.rebuildCueTrackPositions", "CueClusterPosition widened to fit new offset %d", newPos)
		}
		ebml.EncodeElement(w, ebml.IDCueClusterPosition, encodeUintFixed(uint64(newPos), width))
	}
	return ebml.Element(ebml.IDCueTrackPositions, w.Bytes()), nil
}
