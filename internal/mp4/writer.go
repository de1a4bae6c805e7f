package mp4

import (
	"encoding/binary"
	"io"

	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/model"
)

// ApplyChanges implements model.Backing for ISO-BMFF: it
// prefers absorbing the new ilst element into the span of the old ilst
// element plus any immediately trailing free/skip atom (in-place);
// failing that, it rebuilds moov and patches every stco/co64 chunk
// offset that pointed past the old moov by the resulting size delta
// (spec's concrete scenario of moov relocation before mdat).
func (b *backing) ApplyChanges(c *model.Container, src model.ReadSeeker, dst io.Writer, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	diag := &model.Diagnostics{}
	progress = model.EnsureProgress(progress)
	log := b.log.WithOperation("applyChanges")
	log.Debug("applying changes to ISO-BMFF stream")

	udtaIdx, hasUdta, err := b.arena.ChildByID(src, b.moovIdx, idUdta)
	if err != nil {
		return nil, err
	}
	var metaIdx int32
	hasMeta := false
	if hasUdta {
		metaIdx, hasMeta, err = b.arena.ChildByID(src, udtaIdx, idMeta)
		if err != nil {
			return nil, err
		}
	}
	var ilstIdx int32
	hasIlst := false
	if hasMeta {
		ilstIdx, hasIlst, err = b.arena.ChildByID(src, metaIdx, idIlst)
		if err != nil {
			return nil, err
		}
	}

	newIlstBytes := atomBytes("ilst", encodeIlst(c.Tags))

	if hasIlst {
		ilstNode := b.arena.Get(ilstIdx)
		oldSpan := ilstNode.TotalLen
		metaChildren, err := b.arena.Children(src, metaIdx)
		if err != nil {
			return nil, err
		}
		for i, idx := range metaChildren {
			if idx != ilstIdx {
				continue
			}
			if i+1 < len(metaChildren) {
				next := b.arena.Get(metaChildren[i+1])
				if next.ID == idFree || next.ID == idSkip {
					oldSpan += next.TotalLen
				}
			}
			break
		}
		if int64(len(newIlstBytes)) <= oldSpan {
			progress.Report(10, "mp4: in-place ilst rewrite")
			if err := b.writeInPlace(src, dst, ilstNode.Start, oldSpan, newIlstBytes, diag); err != nil {
				return nil, err
			}
			progress.Report(100, "mp4: in-place ilst rewrite complete")
			diag.Info("mp4.ApplyChanges", "ilst rewritten in place, absorbing %d bytes of padding", oldSpan-int64(len(newIlstBytes)))
			return diag, nil
		}
	}

	progress.Report(10, "mp4: full moov rewrite")
	if err := b.writeFullRewrite(src, dst, newIlstBytes, udtaIdx, hasUdta, metaIdx, hasMeta, diag, progress); err != nil {
		return nil, err
	}
	progress.Report(100, "mp4: full moov rewrite complete")
	diag.Info("mp4.ApplyChanges", "moov fully rewritten; ilst moved or resized beyond available padding")
	return diag, nil
}

func (b *backing) writeInPlace(src io.ReadSeeker, dst io.Writer, spanStart, spanLen int64, newElem []byte, diag *model.Diagnostics) error {
	if err := copySpan(src, dst, 0, spanStart); err != nil {
		return err
	}
	if _, err := dst.Write(newElem); err != nil {
		return model.IoErrorf("mp4.writeInPlace", err, "write replacement element")
	}
	remainder := spanLen - int64(len(newElem))
	if remainder > 0 {
		pad := freeAtom(remainder)
		if pad == nil {
			diag.Warn("mp4.writeInPlace", "remainder %d too small to pad with a free atom", remainder)
		} else if _, err := dst.Write(pad); err != nil {
			return model.IoErrorf("mp4.writeInPlace", err, "write free padding")
		}
	}
	if _, err := src.Seek(spanStart+spanLen, io.SeekStart); err != nil {
		return model.IoErrorf("mp4.writeInPlace", err, "seek past replaced span")
	}
	if _, err := io.Copy(dst, src); err != nil {
		return model.IoErrorf("mp4.writeInPlace", err, "copy remainder of file")
	}
	return nil
}

func copySpan(src io.ReadSeeker, dst io.Writer, start, length int64) error {
	if _, err := src.Seek(start, io.SeekStart); err != nil {
		return model.IoErrorf("mp4.copySpan", err, "seek to %d", start)
	}
	if _, err := io.CopyN(dst, src, length); err != nil {
		return model.IoErrorf("mp4.copySpan", err, "copy %d bytes from %d", length, start)
	}
	return nil
}

func copyNodeBytes(src io.ReadSeeker, n element.Node) ([]byte, error) {
	buf := make([]byte, n.TotalLen)
	if _, err := src.Seek(n.Start, io.SeekStart); err != nil {
		return nil, model.IoErrorf("mp4.copyNodeBytes", err, "seek to %d", n.Start)
	}
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, model.IoErrorf("mp4.copyNodeBytes", err, "read %d bytes at %d", n.TotalLen, n.Start)
	}
	return buf, nil
}

func defaultHdlrAtom() []byte {
	payload := make([]byte, 0, 25)
	payload = append(payload, 0, 0, 0, 0) // version/flags
	payload = append(payload, 0, 0, 0, 0) // pre_defined
	payload = append(payload, 'm', 'd', 'i', 'r')
	payload = append(payload, make([]byte, 12)...) // reserved
	payload = append(payload, 0)                   // empty null-terminated name
	return atomBytes("hdlr", payload)
}

// rebuildMetaPayload copies meta's children verbatim except ilst, which
// is replaced (or appended, if absent). A brand-new meta gets a minimal
// "mdir" handler, the convention every iTunes-style muxer writes.
func (b *backing) rebuildMetaPayload(r io.ReadSeeker, metaIdx int32, hasMeta bool, newIlstBytes []byte) ([]byte, error) {
	reserve := freeAtom(b.opts.PaddingReserve)
	if !hasMeta {
		payload := []byte{0, 0, 0, 0}
		payload = append(payload, defaultHdlrAtom()...)
		payload = append(payload, newIlstBytes...)
		payload = append(payload, reserve...)
		return payload, nil
	}
	children, err := b.arena.Children(r, metaIdx)
	if err != nil {
		return nil, err
	}
	payload := []byte{0, 0, 0, 0}
	placed := false
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case idIlst:
			payload = append(payload, newIlstBytes...)
			placed = true
		case idFree, idSkip:
			// dropped: the in-place path already absorbs padding via
			// ilst's own trailing free sibling; a full rewrite starts
			// clean rather than carrying stale padding forward.
		default:
			raw, err := copyNodeBytes(r, n)
			if err != nil {
				return nil, err
			}
			payload = append(payload, raw...)
		}
	}
	if !placed {
		payload = append(payload, newIlstBytes...)
	}
	payload = append(payload, reserve...)
	return payload, nil
}

// rebuildUdtaPayload copies udta's children verbatim except meta, which
// is replaced (or appended, if absent).
func (b *backing) rebuildUdtaPayload(r io.ReadSeeker, udtaIdx int32, hasUdta bool, newMetaBytes []byte) ([]byte, error) {
	if !hasUdta {
		return newMetaBytes, nil
	}
	children, err := b.arena.Children(r, udtaIdx)
	if err != nil {
		return nil, err
	}
	var payload []byte
	placed := false
	for _, idx := range children {
		n := b.arena.Get(idx)
		if n.ID == idMeta {
			payload = append(payload, newMetaBytes...)
			placed = true
			continue
		}
		raw, err := copyNodeBytes(r, n)
		if err != nil {
			return nil, err
		}
		payload = append(payload, raw...)
	}
	if !placed {
		payload = append(payload, newMetaBytes...)
	}
	return payload, nil
}

// writeFullRewrite rebuilds moov (with the new udta/meta/ilst chain
// spliced in) and streams it in place of the original, patching every
// trak's stco/co64 chunk offsets that referenced data past the old
// moov by the resulting size delta.
func (b *backing) writeFullRewrite(src io.ReadSeeker, dst io.Writer, newIlstBytes []byte, udtaIdx int32, hasUdta bool, metaIdx int32, hasMeta bool, diag *model.Diagnostics, progress model.ProgressFeedback) error {
	moovNode := b.arena.Get(b.moovIdx)

	newMetaPayload, err := b.rebuildMetaPayload(src, metaIdx, hasMeta, newIlstBytes)
	if err != nil {
		return err
	}
	newMetaBytes := atomBytes("meta", newMetaPayload)

	newUdtaPayload, err := b.rebuildUdtaPayload(src, udtaIdx, hasUdta, newMetaBytes)
	if err != nil {
		return err
	}
	newUdtaBytes := atomBytes("udta", newUdtaPayload)

	var oldUdtaLen int64
	if hasUdta {
		oldUdtaLen = b.arena.Get(udtaIdx).TotalLen
	}
	delta := int64(len(newUdtaBytes)) - oldUdtaLen

	newMoovPayload, err := b.rebuildMoovPayload(src, newUdtaBytes, hasUdta, delta, moovNode.End(), diag, progress)
	if err != nil {
		return err
	}
	newMoovBytes := atomBytes("moov", newMoovPayload)

	if err := copySpan(src, dst, 0, moovNode.Start); err != nil {
		return err
	}
	if _, err := dst.Write(newMoovBytes); err != nil {
		return model.IoErrorf("mp4.writeFullRewrite", err, "write moov")
	}
	if _, err := src.Seek(moovNode.End(), io.SeekStart); err != nil {
		return model.IoErrorf("mp4.writeFullRewrite", err, "seek past old moov")
	}
	if _, err := io.Copy(dst, src); err != nil {
		return model.IoErrorf("mp4.writeFullRewrite", err, "copy remainder of file")
	}
	return nil
}

// rebuildMoovPayload copies moov's children verbatim except udta
// (replaced/appended) and trak (verbatim, but with chunk offsets
// patched when delta != 0).
func (b *backing) rebuildMoovPayload(r io.ReadSeeker, newUdtaBytes []byte, hasUdta bool, delta, moovEnd int64, diag *model.Diagnostics, progress model.ProgressFeedback) ([]byte, error) {
	children, err := b.arena.Children(r, b.moovIdx)
	if err != nil {
		return nil, err
	}
	var payload []byte
	placedUdta := false
	for i, idx := range children {
		progress.Report(10+70*(i+1)/max1(len(children)), "mp4: rebuilding moov")
		if progress.Cancelled() {
			return nil, model.NewError(model.KindOperationAborted, "mp4.rebuildMoovPayload", "cancelled", nil)
		}
		n := b.arena.Get(idx)
		switch n.ID {
		case idUdta:
			payload = append(payload, newUdtaBytes...)
			placedUdta = true
		case idTrak:
			raw, err := copyNodeBytes(r, n)
			if err != nil {
				return nil, err
			}
			if delta != 0 {
				if err := b.patchChunkOffsets(r, idx, n, raw, delta, moovEnd); err != nil {
					return nil, err
				}
			}
			payload = append(payload, raw...)
		default:
			raw, err := copyNodeBytes(r, n)
			if err != nil {
				return nil, err
			}
			payload = append(payload, raw...)
		}
	}
	if !placedUdta {
		payload = append(payload, newUdtaBytes...)
	}
	return payload, nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// patchChunkOffsets rewrites trakBuf (a verbatim copy of trakNode's
// bytes) in place, adding delta to every stco/co64 entry that pointed
// at or past moovEnd (spec's "offsets past the resized region move by
// the same delta" rewrite rule).
func (b *backing) patchChunkOffsets(r io.ReadSeeker, trakIdx int32, trakNode element.Node, trakBuf []byte, delta, moovEnd int64) error {
	mdiaIdx, ok, err := b.arena.ChildByID(r, trakIdx, idMdia)
	if err != nil || !ok {
		return err
	}
	minfIdx, ok, err := b.arena.ChildByID(r, mdiaIdx, idMinf)
	if err != nil || !ok {
		return err
	}
	stblIdx, ok, err := b.arena.ChildByID(r, minfIdx, idStbl)
	if err != nil || !ok {
		return err
	}
	if stcoIdx, ok, err := b.arena.ChildByID(r, stblIdx, idStco); err != nil {
		return err
	} else if ok {
		if err := patchStco(b.arena.Get(stcoIdx), trakNode.Start, trakBuf, delta, moovEnd); err != nil {
			return err
		}
	}
	if co64Idx, ok, err := b.arena.ChildByID(r, stblIdx, idCo64); err != nil {
		return err
	} else if ok {
		if err := patchCo64(b.arena.Get(co64Idx), trakNode.Start, trakBuf, delta, moovEnd); err != nil {
			return err
		}
	}
	return nil
}

func patchStco(n element.Node, trakStart int64, buf []byte, delta, moovEnd int64) error {
	local := int(n.Start - trakStart + n.HeaderLen)
	if local+8 > len(buf) {
		return model.TruncatedDataf("mp4.patchStco", "stco at %d exceeds trak span", n.Start)
	}
	count := int(binary.BigEndian.Uint32(buf[local+4 : local+8]))
	entries := local + 8
	for i := 0; i < count; i++ {
		pos := entries + i*4
		if pos+4 > len(buf) {
			return model.TruncatedDataf("mp4.patchStco", "stco entry %d exceeds trak span", i)
		}
		val := int64(binary.BigEndian.Uint32(buf[pos : pos+4]))
		if val < moovEnd {
			continue
		}
		newVal := val + delta
		if newVal < 0 || newVal > 0xFFFFFFFF {
			return model.NewError(model.KindBadTagOffset, "mp4.patchStco", "chunk offset cannot be represented after rewrite", nil)
		}
		binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(newVal))
	}
	return nil
}

func patchCo64(n element.Node, trakStart int64, buf []byte, delta, moovEnd int64) error {
	local := int(n.Start - trakStart + n.HeaderLen)
	if local+8 > len(buf) {
		return model.TruncatedDataf("mp4.patchCo64", "co64 at %d exceeds trak span", n.Start)
	}
	count := int(binary.BigEndian.Uint32(buf[local+4 : local+8]))
	entries := local + 8
	for i := 0; i < count; i++ {
		pos := entries + i*8
		if pos+8 > len(buf) {
			return model.TruncatedDataf("mp4.patchCo64", "co64 entry %d exceeds trak span", i)
		}
		val := int64(binary.BigEndian.Uint64(buf[pos : pos+8]))
		if val < moovEnd {
			continue
		}
		newVal := val + delta
		if newVal < 0 {
			return model.NewError(model.KindBadTagOffset, "mp4.patchCo64", "chunk offset cannot be represented after rewrite", nil)
		}
		binary.BigEndian.PutUint64(buf[pos:pos+8], uint64(newVal))
	}
	return nil
}
