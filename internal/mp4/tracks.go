package mp4

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

var codecFamilyBySampleEntry = map[uint64]model.CodecFamily{
	idMp4a: model.CodecAAC,
	idAlac: model.CodecALAC,
	idAc3:  model.CodecAC3,
	idEc3:  model.CodecEAC3,
	idAvc1: model.CodecAVC,
	idHev1: model.CodecHEVC,
	idHvc1: model.CodecHEVC,
	idAv01: model.CodecAV1,
	idVp09: model.CodecVP9,
}

func (b *backing) parseTracks(r io.ReadSeeker, diag *model.Diagnostics) ([]*model.Track, error) {
	trakIndices, err := b.childrenByID(r, b.moovIdx, idTrak)
	if err != nil {
		return nil, err
	}
	var out []*model.Track
	for i, trakIdx := range trakIndices {
		t, err := b.parseTrakEntry(r, trakIdx, i)
		if err != nil {
			diag.Warn("mp4.parseTracks", "trak at %d: %v", b.arena.Get(trakIdx).Start, err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// childrenByID returns every direct child of parentIdx matching id, in
// file order.
func (b *backing) childrenByID(r io.ReadSeeker, parentIdx int32, id uint64) ([]int32, error) {
	children, err := b.arena.Children(r, parentIdx)
	if err != nil {
		return nil, err
	}
	var out []int32
	for _, idx := range children {
		if b.arena.Get(idx).ID == id {
			out = append(out, idx)
		}
	}
	return out, nil
}

func (b *backing) parseTrakEntry(r io.ReadSeeker, trakIdx int32, index int) (*model.Track, error) {
	t := &model.Track{Index: index, Enabled: true}
	trakNode := b.arena.Get(trakIdx)
	t.SetHeaderSpan(trakNode.Start, trakNode.TotalLen)

	if tkhdIdx, ok, err := b.arena.ChildByID(r, trakIdx, idTkhd); err != nil {
		return nil, err
	} else if ok {
		if err := parseTkhd(r, b.arena.Get(tkhdIdx), t); err != nil {
			return nil, err
		}
	}

	mdiaIdx, ok, err := b.arena.ChildByID(r, trakIdx, idMdia)
	if err != nil {
		return nil, err
	}
	if !ok {
		return t, nil
	}

	if mdhdIdx, ok, err := b.arena.ChildByID(r, mdiaIdx, idMdhd); err != nil {
		return nil, err
	} else if ok {
		if err := parseMdhd(r, b.arena.Get(mdhdIdx), t); err != nil {
			return nil, err
		}
	}

	if hdlrIdx, ok, err := b.arena.ChildByID(r, mdiaIdx, idHdlr); err != nil {
		return nil, err
	} else if ok {
		if err := parseHdlr(r, b.arena.Get(hdlrIdx), t); err != nil {
			return nil, err
		}
	}

	minfIdx, ok, err := b.arena.ChildByID(r, mdiaIdx, idMinf)
	if err != nil || !ok {
		return t, err
	}
	stblIdx, ok, err := b.arena.ChildByID(r, minfIdx, idStbl)
	if err != nil || !ok {
		return t, err
	}
	stsdIdx, ok, err := b.arena.ChildByID(r, stblIdx, idStsd)
	if err != nil || !ok {
		return t, err
	}
	if err := b.parseStsd(r, stsdIdx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// parseTkhd reads the enabled/in-movie flags and the track id; the
// tkhd width/height fields are not read.
func parseTkhd(r io.ReadSeeker, n element.Node, t *model.Track) error {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return err
	}
	versionFlags, err := rd.BU32()
	if err != nil {
		return err
	}
	version := versionFlags >> 24
	flags := versionFlags & 0xFFFFFF
	t.Enabled = flags&0x1 != 0
	t.Default = flags&0x2 != 0 // track_in_movie

	if version == 1 {
		if _, err := rd.ReadBytes(16); err != nil { // creation+modification time
			return err
		}
	} else {
		if _, err := rd.ReadBytes(8); err != nil {
			return err
		}
	}
	trackID, err := rd.BU32()
	if err != nil {
		return err
	}
	t.ID = uint64(trackID)
	return nil
}

// isoLanguageFrom16 unpacks mdhd's 16-bit packed ISO-639-2 language code
// (5 bits per letter, offset from 0x60).
func isoLanguageFrom16(v uint16) string {
	if v == 0 {
		return ""
	}
	b := [3]byte{
		byte((v>>10)&0x1F) + 0x60,
		byte((v>>5)&0x1F) + 0x60,
		byte(v&0x1F) + 0x60,
	}
	return string(b[:])
}

func parseMdhd(r io.ReadSeeker, n element.Node, t *model.Track) error {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return err
	}
	versionFlags, err := rd.BU32()
	if err != nil {
		return err
	}
	version := versionFlags >> 24
	var timescale uint32
	var duration uint64
	if version == 1 {
		if _, err := rd.ReadBytes(16); err != nil {
			return err
		}
		timescale, err = rd.BU32()
		if err != nil {
			return err
		}
		duration, err = rd.BU64()
		if err != nil {
			return err
		}
	} else {
		if _, err := rd.ReadBytes(8); err != nil {
			return err
		}
		timescale, err = rd.BU32()
		if err != nil {
			return err
		}
		d32, err := rd.BU32()
		if err != nil {
			return err
		}
		duration = uint64(d32)
	}
	lang, err := rd.BU16()
	if err != nil {
		return err
	}
	t.Timescale = timescale
	t.Language = isoLanguageFrom16(lang)
	if timescale > 0 {
		t.DurationMs = int64(duration * 1000 / uint64(timescale))
	}
	return nil
}

func parseHdlr(r io.ReadSeeker, n element.Node, t *model.Track) error {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return err
	}
	if _, err := rd.BU32(); err != nil { // version+flags
		return err
	}
	if _, err := rd.BU32(); err != nil { // pre_defined
		return err
	}
	handlerType, err := rd.FixedString(4)
	if err != nil {
		return err
	}
	switch handlerType {
	case "soun":
		t.Media = model.MediaAudio
	case "vide":
		t.Media = model.MediaVideo
	case "sbtl", "text", "subt":
		t.Media = model.MediaSubtitle
	case "hint":
		t.Media = model.MediaHint
	default:
		t.Media = model.MediaUnknown
	}
	return nil
}

// parseStsd reads the sample description's first (and overwhelmingly
// common) entry for codec family and technical parameters.
func (b *backing) parseStsd(r io.ReadSeeker, stsdIdx int32, t *model.Track) error {
	entries, err := b.arena.Children(r, stsdIdx)
	if err != nil || len(entries) == 0 {
		return err
	}
	entryIdx := entries[0]
	n := b.arena.Get(entryIdx)
	family, known := codecFamilyBySampleEntry[n.ID]
	t.Format = model.FormatDescriptor{Family: family, Subtype: IDToFourCC(n.ID)}
	if !known {
		return nil
	}

	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return err
	}
	if _, err := rd.ReadBytes(6); err != nil { // reserved
		return err
	}
	if _, err := rd.BU16(); err != nil { // data_reference_index
		return err
	}

	switch t.Media {
	case model.MediaAudio:
		if _, err := rd.ReadBytes(8); err != nil { // reserved[2]
			return err
		}
		channels, err := rd.BU16()
		if err != nil {
			return err
		}
		sampleSize, err := rd.BU16()
		if err != nil {
			return err
		}
		if _, err := rd.ReadBytes(4); err != nil { // pre_defined + reserved
			return err
		}
		sampleRateFixed, err := rd.BU32()
		if err != nil {
			return err
		}
		t.Channels = int(channels)
		t.BitDepth = int(sampleSize)
		t.SampleRate = int(sampleRateFixed >> 16)
	case model.MediaVideo:
		if _, err := rd.ReadBytes(16); err != nil { // pre_defined+reserved+pre_defined[3]
			return err
		}
		width, err := rd.BU16()
		if err != nil {
			return err
		}
		height, err := rd.BU16()
		if err != nil {
			return err
		}
		t.DisplayWidth = int(width)
		t.DisplayHeight = int(height)
		if width > 0 && height > 0 {
			t.PixelAspectRatioNum = int(width)
			t.PixelAspectRatioDen = int(height)
		}
	}
	return nil
}
