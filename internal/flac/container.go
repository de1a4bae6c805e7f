package flac

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/logger"
	"github.com/cesargomez89/mediatags/internal/model"
)

// defaultVendor is written when a rewritten VORBIS_COMMENT block has no
// existing vendor string to preserve, the same fallback
// cesargomez89-navidrums/internal/tagging/tagging.go hardcodes
// ("navidrums") when it rebuilds a FLAC comment block from scratch.
const defaultVendor = "mediatags"

// backing implements model.Backing for native FLAC streams.
type backing struct {
	blocks     []Block
	audioStart int64
	opts       *config.Options
	log        *logger.Logger
}

// Parse reads a native FLAC stream's metadata-block chain
// and returns the uniform Container. opts may be nil; config.Load's
// defaults are used in that case.
func Parse(r io.ReadSeeker, diag *model.Diagnostics, opts *config.Options) (*model.Container, error) {
	if opts == nil {
		opts = config.Load()
	}
	log := opts.NewLogger().WithComponent("flac").WithOperation("parse")
	log.Debug("parsing native FLAC stream")

	rd := ioprim.NewReader(r)
	if err := ReadMagic(rd); err != nil {
		return nil, err
	}
	blocks, err := ReadChain(rd, diag)
	if err != nil {
		return nil, err
	}
	for _, blk := range blocks {
		if opts.MaxElementSize > 0 && int64(len(blk.Payload)) > opts.MaxElementSize {
			return nil, model.TruncatedDataf("flac.Parse", "metadata block type %d payload %d exceeds max element size %d", blk.Type, len(blk.Payload), opts.MaxElementSize)
		}
	}
	audioStart, err := rd.Pos()
	if err != nil {
		return nil, err
	}

	b := &backing{blocks: blocks, audioStart: audioStart, opts: opts, log: opts.NewLogger().WithComponent("flac")}
	c := model.NewContainer(model.FormatFLAC, b, r)

	for _, blk := range blocks {
		if blk.Type == TypeStreamInfo {
			si, err := ParseStreamInfo(blk.Payload)
			if err != nil {
				return nil, err
			}
			c.Tracks = append(c.Tracks, ToTrack(si))
			break
		}
	}

	tag, err := ToTag(blocks, diag)
	if err != nil {
		return nil, err
	}
	if len(tag.Fields) > 0 {
		c.Tags = append(c.Tags, tag)
	}
	return c, nil
}
