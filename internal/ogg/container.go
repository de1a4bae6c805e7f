package ogg

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/logger"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/vorbiscomment"
)

const maxPageSize = 1 << 20

// backing implements model.Backing for Ogg-encapsulated Vorbis, Opus,
// and FLAC-in-Ogg streams. It scopes rewriting to the first
// logical stream's (BOS page's) header packets, which covers every
// single-stream audio file; additional multiplexed serial numbers
// interleaved within the header region are passed through unexamined
// and logged, rather than supported for editing.
type backing struct {
	codec           Codec
	primarySerial   uint32
	headerPackets   [][]byte
	commentIdx      int
	rebuildComment  func([]byte) []byte
	headerRegionEnd int64
	headerPageCount int
	firstSeq        uint32
	opts            *config.Options
	log             *logger.Logger
}

// Parse reads an Ogg stream's first logical bitstream's header packets
// and returns the uniform Container. opts may be nil; config.Load's
// defaults are used in that case.
func Parse(r io.ReadSeeker, diag *model.Diagnostics, opts *config.Options) (*model.Container, error) {
	if opts == nil {
		opts = config.Load()
	}
	log := opts.NewLogger().WithComponent("ogg").WithOperation("parse")
	log.Debug("parsing Ogg stream")

	rd := ioprim.NewReader(r)

	var primarySerial uint32
	var haveSerial bool
	var pending []byte
	var headerPackets [][]byte
	var codec Codec
	wantPackets := -1
	var headerRegionEnd int64
	headerPageCount := 0
	var firstSeq uint32
	otherSerials := map[uint32]bool{}

	for {
		pageStart, err := rd.Pos()
		if err != nil {
			return nil, err
		}
		header, err := ReadPageHeader(rd)
		if err != nil {
			if me, ok := err.(*model.Error); ok && me.Kind == model.KindIoError {
				break
			}
			return nil, err
		}
		payloadLen := header.PayloadLen()
		if int64(payloadLen) > maxPageSize {
			return nil, model.TruncatedDataf("ogg.Parse", "page payload %d exceeds maximum", payloadLen)
		}
		payload, err := rd.ReadBytes(payloadLen)
		if err != nil {
			return nil, err
		}
		if opts.VerifyChecksums {
			if err := verifyPageCRC(r, pageStart, header); err != nil {
				return nil, err
			}
		}

		if !haveSerial && header.Flags&FlagBOS != 0 {
			primarySerial = header.SerialNumber
			haveSerial = true
			firstSeq = header.PageSequence
		}
		if haveSerial && header.SerialNumber != primarySerial {
			otherSerials[header.SerialNumber] = true
		}

		if haveSerial && header.SerialNumber == primarySerial && wantPackets != len(headerPackets) {
			offset := 0
			for _, segLen8 := range header.SegmentTable {
				segLen := int(segLen8)
				pending = append(pending, payload[offset:offset+segLen]...)
				offset += segLen
				if segLen < 255 {
					headerPackets = append(headerPackets, pending)
					pending = nil
					if len(headerPackets) == 1 {
						codec = DetectCodec(headerPackets[0])
						wantPackets = headerPacketCount(codec, headerPackets[0])
					}
					if wantPackets >= 0 && len(headerPackets) >= wantPackets {
						break
					}
				}
			}
		}

		pos, err := rd.Pos()
		if err != nil {
			return nil, err
		}
		if haveSerial && header.SerialNumber == primarySerial {
			headerPageCount++
		}
		if wantPackets >= 0 && len(headerPackets) >= wantPackets && headerRegionEnd == 0 {
			headerRegionEnd = pos
			break
		}
	}

	if !haveSerial || len(headerPackets) == 0 {
		return nil, model.InvalidDataf("ogg.Parse", "no logical bitstream with a recognised codec found")
	}
	if len(otherSerials) > 0 {
		diag.Warn("ogg.Parse", "ignoring %d additional multiplexed serial number(s) alongside primary stream %d", len(otherSerials), primarySerial)
	}

	b := &backing{
		codec:           codec,
		primarySerial:   primarySerial,
		headerPackets:   headerPackets,
		commentIdx:      MetadataPacketIndex,
		headerRegionEnd: headerRegionEnd,
		headerPageCount: headerPageCount,
		firstSeq:        firstSeq,
		opts:            opts,
		log:             opts.NewLogger().WithComponent("ogg"),
	}

	c := model.NewContainer(model.FormatOgg, b, r)

	track, err := identToTrack(codec, headerPackets[0])
	if err != nil {
		diag.Warn("ogg.Parse", "identification packet: %v", err)
	} else {
		c.Tracks = append(c.Tracks, track)
	}

	if b.commentIdx < len(headerPackets) {
		body, rebuild, err := stripCommentHeader(codec, headerPackets[b.commentIdx])
		if err != nil {
			diag.Warn("ogg.Parse", "comment packet: %v", err)
		} else {
			b.rebuildComment = rebuild
			block, err := vorbiscomment.Decode(body)
			if err != nil {
				diag.Warn("ogg.Parse", "vorbis comment body: %v", err)
			} else {
				c.Tags = append(c.Tags, vorbiscomment.ToTag(block))
			}
		}
	}

	return c, nil
}

// verifyPageCRC re-reads the page starting at pageStart and recomputes
// its checksum the way EncodePage does (CRC field zeroed before the
// sum), returning a diagnostic-worthy error on mismatch.
func verifyPageCRC(r io.ReadSeeker, pageStart int64, header PageHeader) error {
	saved, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return model.IoErrorf("ogg.verifyPageCRC", err, "save position")
	}
	totalLen := header.HeaderLen + int64(header.PayloadLen())
	buf := make([]byte, totalLen)
	if _, err := r.Seek(pageStart, io.SeekStart); err != nil {
		return model.IoErrorf("ogg.verifyPageCRC", err, "seek to page at %d", pageStart)
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return model.IoErrorf("ogg.verifyPageCRC", err, "read page at %d", pageStart)
	}
	if _, err := r.Seek(saved, io.SeekStart); err != nil {
		return model.IoErrorf("ogg.verifyPageCRC", err, "restore position")
	}
	buf[22], buf[23], buf[24], buf[25] = 0, 0, 0, 0
	if got := Checksum(buf); got != header.CRC {
		return model.InvalidDataf("ogg.verifyPageCRC", "page CRC mismatch at offset %d: got %08x, want %08x", pageStart, got, header.CRC)
	}
	return nil
}
