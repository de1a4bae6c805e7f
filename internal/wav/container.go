package wav

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/logger"
	"github.com/cesargomez89/mediatags/internal/model"
)

// backing implements model.Backing for RIFF/WAVE streams.
type backing struct {
	fmtEnd int64 // insertion point for a brand-new LIST chunk when absent
	opts   *config.Options
	log    *logger.Logger
}

// Parse reads a RIFF/WAVE stream's technical parameters and any
// LIST/INFO metadata. opts may be nil; config.Load's defaults are used
// in that case.
func Parse(r io.ReadSeeker, diag *model.Diagnostics, opts *config.Options) (*model.Container, error) {
	if opts == nil {
		opts = config.Load()
	}
	log := opts.NewLogger().WithComponent("wav").WithOperation("parse")
	log.Debug("parsing RIFF/WAVE stream")

	rd := ioprim.NewReader(r)
	spans, err := scanTopLevelChunks(rd)
	if err != nil {
		return nil, err
	}
	for _, s := range spans {
		if opts.MaxElementSize > 0 && s.TotalLen > opts.MaxElementSize {
			return nil, model.TruncatedDataf("wav.Parse", "chunk %q at %d declares size %d exceeding max element size %d", s.ID, s.IDStart, s.TotalLen, opts.MaxElementSize)
		}
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, model.IoErrorf("wav.Parse", err, "rewind")
	}
	rd = ioprim.NewReader(r)
	info, err := Read(rd)
	if err != nil {
		return nil, err
	}

	b := &backing{opts: opts, log: opts.NewLogger().WithComponent("wav")}
	c := model.NewContainer(model.FormatWAV, b, r)
	c.Tracks = []*model.Track{ToTrack(info)}

	for _, s := range spans {
		if s.ID == "fmt " {
			b.fmtEnd = s.End()
		}
		if s.ID != "LIST" {
			continue
		}
		payload, err := readChunkPayload(r, s)
		if err != nil {
			diag.Warn("wav.Parse", "LIST chunk at %d: %v", s.IDStart, err)
			continue
		}
		tag, err := parseListInfo(payload)
		if err != nil {
			diag.Warn("wav.Parse", "LIST/INFO chunk at %d: %v", s.IDStart, err)
			continue
		}
		if tag != nil {
			c.Tags = append(c.Tags, tag)
		}
	}
	if b.fmtEnd == 0 && len(spans) > 0 {
		b.fmtEnd = spans[0].End()
	}
	return c, nil
}

func readChunkPayload(r io.ReadSeeker, s chunkSpan) ([]byte, error) {
	if _, err := r.Seek(s.IDStart+s.HeaderLen, io.SeekStart); err != nil {
		return nil, model.IoErrorf("wav.readChunkPayload", err, "seek to %d", s.IDStart)
	}
	payloadLen := s.TotalLen - s.HeaderLen
	buf := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, model.IoErrorf("wav.readChunkPayload", err, "read %d bytes", payloadLen)
	}
	return buf, nil
}
