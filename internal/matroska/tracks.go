package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Matroska TrackType values.
const (
	trackTypeVideo    = 1
	trackTypeAudio    = 2
	trackTypeSubtitle = 17
)

var codecFamilyByID = map[string]model.CodecFamily{
	"A_VORBIS": model.CodecVorbis, "A_OPUS": model.CodecOpus,
	"A_FLAC": model.CodecFLAC, "A_AAC": model.CodecAAC,
	"A_AC3": model.CodecAC3, "A_EAC3": model.CodecEAC3,
	"A_MPEG/L3": model.CodecMPEGAudio, "A_MPEG/L2": model.CodecMPEGAudio,
	"A_PCM/INT/LIT": model.CodecPCM, "A_PCM/INT/BIG": model.CodecPCM,
	"V_MPEG4/ISO/AVC": model.CodecAVC, "V_MPEGH/ISO/HEVC": model.CodecHEVC,
	"V_AV1": model.CodecAV1, "V_VP9": model.CodecVP9,
	"S_TEXT/UTF8": model.CodecTimedText, "S_TEXT/ASS": model.CodecTimedText,
}

func (b *backing) parseTracks(r io.ReadSeeker, tracksIdx int32, diag *model.Diagnostics) ([]*model.Track, error) {
	entries, err := b.arena.Children(r, tracksIdx)
	if err != nil {
		return nil, err
	}
	var out []*model.Track
	idx := 0
	for _, entryIdx := range entries {
		n := b.arena.Get(entryIdx)
		if n.ID != ebml.IDTrackEntry {
			continue
		}
		t, err := b.parseTrackEntry(r, entryIdx, idx, diag)
		if err != nil {
			diag.Warn("matroska.parseTracks", "TrackEntry at %d: %v", n.Start, err)
			continue
		}
		out = append(out, t)
		idx++
	}
	return out, nil
}

func (b *backing) parseTrackEntry(r io.ReadSeeker, entryIdx int32, index int, diag *model.Diagnostics) (*model.Track, error) {
	t := &model.Track{Index: index, Enabled: true}
	children, err := b.arena.Children(r, entryIdx)
	if err != nil {
		return nil, err
	}
	var trackType uint64
	var codecID string
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case ebml.IDTrackUID:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return nil, err
			}
			t.ID = ebml.DecodeUint(payload)
		case ebml.IDTrackType:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return nil, err
			}
			trackType = ebml.DecodeUint(payload)
		case ebml.IDTrackName:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return nil, err
			}
			t.Name = string(payload)
		case ebml.IDLanguage:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return nil, err
			}
			t.Language = string(payload)
		case ebml.IDCodecID:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return nil, err
			}
			codecID = string(payload)
		case ebml.IDFlagEnabled:
			t.Enabled = decodeFlag(r, n, true)
		case ebml.IDFlagDefault:
			t.Default = decodeFlag(r, n, true)
		case ebml.IDFlagForced:
			t.Forced = decodeFlag(r, n, false)
		case ebml.IDFlagLacing:
			t.Lacing = decodeFlag(r, n, true)
		case ebml.IDContentEncodings:
			if hasEncryption(r, b.arena, idx) {
				t.Encrypted = true
			}
		case ebml.IDVideo:
			if err := b.parseVideoSettings(r, idx, t); err != nil {
				return nil, err
			}
		case ebml.IDAudio:
			if err := b.parseAudioSettings(r, idx, t); err != nil {
				return nil, err
			}
		case ebml.IDDefaultDuration:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return nil, err
			}
			ns := ebml.DecodeUint(payload)
			if ns > 0 {
				t.FPS = 1e9 / float64(ns)
			}
		}
		t.SetHeaderSpan(n.Start, n.TotalLen)
	}

	switch trackType {
	case trackTypeVideo:
		t.Media = model.MediaVideo
	case trackTypeAudio:
		t.Media = model.MediaAudio
	case trackTypeSubtitle:
		t.Media = model.MediaSubtitle
	default:
		t.Media = model.MediaUnknown
	}
	family := codecFamilyByID[codecID]
	t.Format = model.FormatDescriptor{Family: family, Subtype: codecID}
	return t, nil
}

func (b *backing) parseVideoSettings(r io.ReadSeeker, videoIdx int32, t *model.Track) error {
	children, err := b.arena.Children(r, videoIdx)
	if err != nil {
		return err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return err
		}
		switch n.ID {
		case ebml.IDPixelWidth:
			t.DisplayWidth = int(ebml.DecodeUint(payload))
		case ebml.IDPixelHeight:
			t.DisplayHeight = int(ebml.DecodeUint(payload))
		case ebml.IDDisplayWidth:
			t.DisplayWidth = int(ebml.DecodeUint(payload))
		case ebml.IDDisplayHeight:
			t.DisplayHeight = int(ebml.DecodeUint(payload))
		case ebml.IDFlagInterlaced:
			// 1 == interlaced, 2 == progressive, 0 == unspecified; not
			// modelled as a dedicated Track field, left as a no-op.
		}
	}
	if t.DisplayWidth > 0 && t.DisplayHeight > 0 {
		t.PixelAspectRatioNum = t.DisplayWidth
		t.PixelAspectRatioDen = t.DisplayHeight
	}
	return nil
}

func (b *backing) parseAudioSettings(r io.ReadSeeker, audioIdx int32, t *model.Track) error {
	children, err := b.arena.Children(r, audioIdx)
	if err != nil {
		return err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return err
		}
		switch n.ID {
		case ebml.IDSamplingFrequency:
			t.SampleRate = int(ebml.DecodeFloat(payload))
		case ebml.IDChannels:
			t.Channels = int(ebml.DecodeUint(payload))
		case ebml.IDBitDepth:
			t.BitDepth = int(ebml.DecodeUint(payload))
		}
	}
	if t.Channels == 0 {
		t.Channels = 1 // EBML default when the element is absent
	}
	return nil
}

func decodeFlag(r io.ReadSeeker, n element.Node, defaultVal bool) bool {
	payload, err := readLeafPayload(r, n)
	if err != nil {
		return defaultVal
	}
	return ebml.DecodeUint(payload) != 0
}

func hasEncryption(r io.ReadSeeker, a *element.Arena, contentEncodingsIdx int32) bool {
	children, err := a.Children(r, contentEncodingsIdx)
	if err != nil {
		return false
	}
	for _, idx := range children {
		// ContentEncoding (0x6240) containing a ContentEncryption
		// (0x5035) sub-element means the track is encrypted; this
		// library does not decrypt, only reports the flag.
		sub, err := a.Children(r, idx)
		if err != nil {
			continue
		}
		for _, sidx := range sub {
			if a.Get(sidx).ID == ebml.IDContentEncryption {
				return true
			}
		}
	}
	return false
}
