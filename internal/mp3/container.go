// Package mp3 composes ID3v1, ID3v2, and raw MPEG audio frame scanning
// into one model.Backing. Unlike every other
// container in this library, MP3 has no internal structure that
// references another part of the file by absolute byte offset — no
// chunk-offset table, no SeekHead, no page sequence numbers — so its
// rewrite never needs an in-place/full-rewrite split: the ID3v2 header
// is rewritten (optionally padded to its old size, ID3v2's own
// spec-sanctioned absorption mechanism), the audio frames stream
// through unchanged, and the ID3v1 trailer is rewritten or dropped,
// independently of each other.
package mp3

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/id3v1"
	"github.com/cesargomez89/mediatags/internal/id3v2"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/logger"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/mpegaudio"
)

// backing implements model.Backing for MP3/MPEG audio streams.
type backing struct {
	id3v2Header  id3v2.Header
	id3v2End     int64 // 0 if no ID3v2 header is present
	id3v1Present bool
	streamLen    int64
	opts         *config.Options
	log          *logger.Logger
}

// Parse reads any ID3v2 header, any ID3v1 trailer, and the first MPEG
// audio frame's technical parameters. opts may be nil; config.Load's
// defaults are used in that case.
func Parse(r io.ReadSeeker, diag *model.Diagnostics, opts *config.Options) (*model.Container, error) {
	if opts == nil {
		opts = config.Load()
	}
	log := opts.NewLogger().WithComponent("mp3").WithOperation("parse")
	log.Debug("parsing MP3/MPEG audio stream")

	streamLen, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, model.IoErrorf("mp3.Parse", err, "seek to end")
	}

	b := &backing{streamLen: streamLen, opts: opts, log: opts.NewLogger().WithComponent("mp3")}
	c := model.NewContainer(model.FormatMP3, b, r)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, model.IoErrorf("mp3.Parse", err, "seek to start")
	}
	probe := make([]byte, 3)
	n, _ := io.ReadFull(r, probe)

	var audioStart int64
	if n == 3 && string(probe) == constants.MagicID3 {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, model.IoErrorf("mp3.Parse", err, "rewind to ID3v2 header")
		}
		hdr, err := id3v2.ReadHeader(ioprim.NewReader(r))
		if err != nil {
			return nil, err
		}
		totalLen := int64(constants.ID3v2HeaderSize) + int64(hdr.Size)
		if totalLen > streamLen {
			return nil, model.TruncatedDataf("mp3.Parse", "ID3v2 tag declares size %d beyond stream length", hdr.Size)
		}
		if opts.MaxElementSize > 0 && totalLen > opts.MaxElementSize {
			return nil, model.TruncatedDataf("mp3.Parse", "ID3v2 tag size %d exceeds max element size %d", totalLen, opts.MaxElementSize)
		}
		raw := make([]byte, totalLen)
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, model.IoErrorf("mp3.Parse", err, "rewind to read ID3v2 tag body")
		}
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, model.IoErrorf("mp3.Parse", err, "read ID3v2 tag body")
		}
		tag, _, err := id3v2.Read(raw, diag)
		if err != nil {
			diag.Warn("mp3.Parse", "ID3v2 tag: %v", err)
		} else {
			c.Tags = append(c.Tags, tag)
		}
		b.id3v2Header = hdr
		b.id3v2End = totalLen
		audioStart = totalLen
	}

	if v1, err := id3v1.Read(r, streamLen); err == nil {
		c.Tags = append(c.Tags, v1)
		b.id3v1Present = true
	}

	offset, header, err := scanFirstFrame(r, audioStart)
	if err != nil {
		diag.Warn("mp3.Parse", "%v", err)
		return c, nil
	}

	track := &model.Track{
		Media:      model.MediaAudio,
		Format:     model.FormatDescriptor{Family: model.CodecMPEGAudio},
		SampleRate: header.SampleRate,
		Channels:   channelCount(header.ChannelMode),
		Bitrate:    header.BitrateKbps * 1000,
	}
	track.SetHeaderSpan(offset, int64(header.FrameLenBytes))

	audioEnd := streamLen
	if b.id3v1Present {
		audioEnd -= constants.ID3v1TagSize
	}

	if _, err := r.Seek(offset, io.SeekStart); err == nil {
		probeBuf := make([]byte, header.FrameLenBytes+1024)
		if pn, _ := io.ReadFull(r, probeBuf); pn > 0 {
			probeBuf = probeBuf[:pn]
			vbr, _ := mpegaudio.ParseXing(probeBuf, header)
			if vbr == nil {
				vbr, _ = mpegaudio.ParseVBRI(probeBuf)
			}
			if vbr != nil && vbr.FrameCount > 0 && header.SampleRate > 0 {
				track.DurationMs = int64(vbr.FrameCount) * int64(header.SamplesPerFrame) * 1000 / int64(header.SampleRate)
			}
		}
	}
	if track.DurationMs == 0 && header.BitrateKbps > 0 {
		track.DurationMs = (audioEnd - offset) * 8 / int64(header.BitrateKbps)
	}

	c.Tracks = append(c.Tracks, track)
	return c, nil
}

func channelCount(m mpegaudio.ChannelMode) int {
	if m == mpegaudio.ChannelMono {
		return 1
	}
	return 2
}
