package mp4

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/logger"
	"github.com/cesargomez89/mediatags/internal/model"
)

// backing implements model.Backing for ISO-BMFF (MP4/M4A/M4B) files.
type backing struct {
	arena   *element.Arena
	rootIdx int32
	moovIdx int32
	opts    *config.Options
	log     *logger.Logger
}

// Parse opens an ISO-BMFF stream of size streamLen and returns the
// uniform Container. opts may be nil; config.Load's defaults are used
// in that case.
func Parse(r io.ReadSeeker, streamLen int64, diag *model.Diagnostics, opts *config.Options) (*model.Container, error) {
	if opts == nil {
		opts = config.Load()
	}
	log := opts.NewLogger().WithComponent("mp4").WithOperation("parse")
	log.Debug("parsing ISO-BMFF stream", "streamLen", streamLen)

	arena := element.NewArena(HeaderReader{}, diag, opts.MaxElementDepth, opts.MaxElementSize)
	rootIdx := arena.NewRoot(0, streamLen)

	moovIdx, found, err := arena.ChildByID(r, rootIdx, idMoov)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.InvalidDataf("mp4.Parse", "missing moov atom")
	}

	b := &backing{arena: arena, rootIdx: rootIdx, moovIdx: moovIdx, opts: opts, log: opts.NewLogger().WithComponent("mp4")}
	c := model.NewContainer(model.FormatMP4, b, r)
	c.Version = "isom"

	if ftypIdx, found, err := arena.ChildByID(r, rootIdx, idFtyp); err != nil {
		return nil, err
	} else if found {
		brand, err := readMajorBrand(r, arena.Get(ftypIdx))
		if err != nil {
			diag.Warn("mp4.Parse", "ftyp: %v", err)
		} else {
			c.Version = brand
		}
	}

	tracks, err := b.parseTracks(r, diag)
	if err != nil {
		return nil, err
	}
	c.Tracks = tracks

	ilstIdx, ok, err := b.findIlst(r)
	if err != nil {
		return nil, err
	}
	if ok {
		tags, err := b.parseTags(r, ilstIdx, diag)
		if err != nil {
			return nil, err
		}
		c.Tags = tags
	}

	return c, nil
}

func readMajorBrand(r io.ReadSeeker, n element.Node) (string, error) {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return "", err
	}
	return rd.FixedString(4)
}

// findIlst walks moov/udta/meta/ilst, the standard location for
// iTunes-style metadata.
func (b *backing) findIlst(r io.ReadSeeker) (int32, bool, error) {
	udtaIdx, ok, err := b.arena.ChildByID(r, b.moovIdx, idUdta)
	if err != nil || !ok {
		return 0, false, err
	}
	metaIdx, ok, err := b.arena.ChildByID(r, udtaIdx, idMeta)
	if err != nil || !ok {
		return 0, false, err
	}
	return b.arena.ChildByID(r, metaIdx, idIlst)
}
