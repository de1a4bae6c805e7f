package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/logger"
	"github.com/cesargomez89/mediatags/internal/model"
)

// backing implements model.Backing for Matroska/WebM containers.
type backing struct {
	arena        *element.Arena
	segmentIdx   int32 // arena index of the Segment element
	segmentStart int64 // absolute offset of the first byte after the Segment header
	timestampScale uint64
	opts         *config.Options
	log          *logger.Logger
}

// Parse opens a Matroska/WebM stream of size streamLen and returns the
// uniform Container. opts may be nil; config.Load's defaults are used
// in that case.
func Parse(r io.ReadSeeker, streamLen int64, diag *model.Diagnostics, opts *config.Options) (*model.Container, error) {
	if opts == nil {
		opts = config.Load()
	}
	log := opts.NewLogger().WithComponent("matroska").WithOperation("parse")
	log.Debug("parsing EBML stream", "streamLen", streamLen)

	arena := element.NewArena(ebml.HeaderReader{}, diag, opts.MaxElementDepth, opts.MaxElementSize)
	rootIdx := arena.NewRoot(0, streamLen)

	hdrIdx, found, err := arena.ChildByID(r, rootIdx, ebml.IDEBMLHeader)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.InvalidDataf("matroska.Parse", "missing EBML header")
	}
	hdr, err := readHeader(r, arena, hdrIdx)
	if err != nil {
		return nil, err
	}
	if hdr.DocType != "matroska" && hdr.DocType != "webm" {
		return nil, model.NewError(model.KindUnsupportedVersion, "matroska.Parse", "DocType "+hdr.DocType+" is not matroska or webm", nil)
	}
	if hdr.DocTypeVersion > 4 {
		diag.Warn("matroska.Parse", "DocTypeVersion %d is newer than this library was validated against", hdr.DocTypeVersion)
	}

	segIdx, found, err := arena.ChildByID(r, rootIdx, ebml.IDSegment)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.InvalidDataf("matroska.Parse", "missing Segment element")
	}
	seg := arena.Get(segIdx)
	b := &backing{
		arena: arena, segmentIdx: segIdx, segmentStart: seg.Start + seg.HeaderLen, timestampScale: 1000000,
		opts: opts, log: opts.NewLogger().WithComponent("matroska"),
	}

	c := model.NewContainer(model.FormatMatroska, b, r)
	c.DocType = hdr.DocType
	if hdr.DocType == "webm" {
		c.Version = "webm"
	} else {
		c.Version = "matroska"
	}

	topLevel, err := b.resolveTopLevel(r, diag)
	if err != nil {
		return nil, err
	}

	if infoIdx, ok := topLevel[ebml.IDInfo]; ok {
		scale, err := b.parseInfo(r, infoIdx, c)
		if err != nil {
			return nil, err
		}
		b.timestampScale = scale
	}

	uidToTrack := make(map[uint64]*model.Track)
	if tracksIdx, ok := topLevel[ebml.IDTracks]; ok {
		tracks, err := b.parseTracks(r, tracksIdx, diag)
		if err != nil {
			return nil, err
		}
		c.Tracks = tracks
		for _, t := range tracks {
			uidToTrack[t.ID] = t
		}
	}

	if tagsIdx, ok := topLevel[ebml.IDTags]; ok {
		tags, err := b.parseTags(r, tagsIdx, diag)
		if err != nil {
			return nil, err
		}
		c.Tags = tags
	}

	if chapIdx, ok := topLevel[ebml.IDChapters]; ok {
		editions, err := b.parseChapters(r, chapIdx, diag)
		if err != nil {
			return nil, err
		}
		c.Editions = editions
		for _, e := range editions {
			c.Chapters = append(c.Chapters, e.Chapters...)
		}
	}

	if attIdx, ok := topLevel[ebml.IDAttachments]; ok {
		attachments, err := b.parseAttachments(r, attIdx, diag)
		if err != nil {
			return nil, err
		}
		c.Attachments = attachments
	}

	return c, nil
}

// resolveTopLevel maps top-level element ids to their arena index.
// A direct scan of the Segment's children runs first and keeps the first
// element of each id; SeekHead entries then fill in only ids the scan
// did not record.
func (b *backing) resolveTopLevel(r io.ReadSeeker, diag *model.Diagnostics) (map[uint64]int32, error) {
	out := make(map[uint64]int32)

	children, err := b.arena.Children(r, b.segmentIdx)
	if err != nil {
		return nil, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case ebml.IDSeekHead, ebml.IDInfo, ebml.IDTracks, ebml.IDTags,
			ebml.IDChapters, ebml.IDAttachments, ebml.IDCues:
			if _, exists := out[n.ID]; !exists {
				out[n.ID] = idx
			}
		}
	}

	seekHeadIdx, hasSeekHead, err := b.arena.ChildByID(r, b.segmentIdx, ebml.IDSeekHead)
	if err != nil {
		return nil, err
	}
	if hasSeekHead {
		entries, err := b.arena.Children(r, seekHeadIdx)
		if err != nil {
			return nil, err
		}
		for _, seekIdx := range entries {
			sn := b.arena.Get(seekIdx)
			if sn.ID != ebml.IDSeek {
				continue
			}
			idBytes, posBytes, err := b.readSeekEntry(r, seekIdx)
			if err != nil {
				diag.Warn("matroska.resolveTopLevel", "malformed Seek entry: %v", err)
				continue
			}
			targetID := ebml.DecodeUint(idBytes)
			absPos := b.segmentStart + int64(ebml.DecodeUint(posBytes))
			idx, ok := b.arena.FindAt(r, b.segmentIdx, absPos)
			if ok && idx != -1 {
				if _, exists := out[targetID]; !exists {
					out[targetID] = idx
				}
			}
		}
	}
	return out, nil
}

func (b *backing) readSeekEntry(r io.ReadSeeker, seekIdx int32) (idBytes, posBytes []byte, err error) {
	children, err := b.arena.Children(r, seekIdx)
	if err != nil {
		return nil, nil, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return nil, nil, err
		}
		switch n.ID {
		case ebml.IDSeekID:
			idBytes = payload
		case ebml.IDSeekPos:
			posBytes = payload
		}
	}
	return idBytes, posBytes, nil
}

func (b *backing) parseInfo(r io.ReadSeeker, infoIdx int32, c *model.Container) (uint64, error) {
	scale := uint64(1000000)
	children, err := b.arena.Children(r, infoIdx)
	if err != nil {
		return scale, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return scale, err
		}
		switch n.ID {
		case ebml.IDTimestampScale:
			if v := ebml.DecodeUint(payload); v > 0 {
				scale = v
			}
		case ebml.IDTitle:
			c.PrimaryTag(model.TagFormatMatroska).SetField(model.TagField{ID: "TITLE", Value: model.TextValue(string(payload))})
		}
	}
	return scale, nil
}
