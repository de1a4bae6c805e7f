// Package wav implements a thin RIFF/WAVE reader: the 12-byte RIFF
// header and the `fmt `/`data` chunks needed to derive a Track's
// technical parameters. Grounded on
// other_examples/b1262d2d_CWBudde-wav__list_chunk.go.go's chunk-walking
// shape (4-byte id + little-endian 32-bit size + payload, even-padded),
// the only RIFF reader among the retrieved reference repos.
package wav

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// FmtChunk is the decoded `fmt ` chunk (PCM and extensible variants
// share this prefix; only the fields the track model needs are kept).
type FmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Info is everything this reader extracts from a WAV stream: the
// technical parameters plus the byte range of the `data` chunk.
// LIST/INFO tags are read and rewritten separately (tags.go,
// writer.go); an `id3 ` chunk is not read.
type Info struct {
	Fmt           FmtChunk
	DataOffset    int64
	DataLen       int64
	TotalSamples  uint64
}

// Read parses a RIFF/WAVE stream starting at offset 0.
func Read(rd *ioprim.Reader) (Info, error) {
	magic, err := rd.FixedString(4)
	if err != nil {
		return Info{}, err
	}
	if magic != constants.MagicRIFF {
		return Info{}, model.InvalidDataf("wav.Read", "missing RIFF magic")
	}
	if _, err := rd.LU32(); err != nil { // overall RIFF size, unused
		return Info{}, err
	}
	form, err := rd.FixedString(4)
	if err != nil {
		return Info{}, err
	}
	if form != constants.MagicWAVE {
		return Info{}, model.InvalidDataf("wav.Read", "RIFF form type %q, want WAVE", form)
	}

	var info Info
	var haveFmt, haveData bool
	for {
		id, err := rd.FixedString(4)
		if err != nil {
			if haveFmt {
				break // EOF with both (or at least fmt) chunks seen is fine
			}
			return Info{}, err
		}
		size, err := rd.LU32()
		if err != nil {
			return Info{}, err
		}
		pos, err := rd.Pos()
		if err != nil {
			return Info{}, err
		}
		switch id {
		case "fmt ":
			fc, err := readFmtChunk(rd, size)
			if err != nil {
				return Info{}, err
			}
			info.Fmt = fc
			haveFmt = true
		case "data":
			info.DataOffset = pos
			info.DataLen = int64(size)
			haveData = true
		}
		next := pos + int64(size) + int64(size&1) // chunks are word-aligned
		if _, err := rd.Seek(next, io.SeekStart); err != nil {
			return Info{}, err
		}
		if haveFmt && haveData {
			break
		}
	}
	if !haveFmt {
		return Info{}, model.NewError(model.KindNoDataFound, "wav.Read", "no fmt chunk found", nil)
	}
	if info.Fmt.BlockAlign > 0 {
		info.TotalSamples = uint64(info.DataLen) / uint64(info.Fmt.BlockAlign)
	}
	return info, nil
}

func readFmtChunk(rd *ioprim.Reader, size uint32) (FmtChunk, error) {
	if size < 16 {
		return FmtChunk{}, model.TruncatedDataf("wav.readFmtChunk", "fmt chunk %d bytes, want at least 16", size)
	}
	audioFormat, err := rd.LU16()
	if err != nil {
		return FmtChunk{}, err
	}
	channels, err := rd.LU16()
	if err != nil {
		return FmtChunk{}, err
	}
	sampleRate, err := rd.LU32()
	if err != nil {
		return FmtChunk{}, err
	}
	byteRate, err := rd.LU32()
	if err != nil {
		return FmtChunk{}, err
	}
	blockAlign, err := rd.LU16()
	if err != nil {
		return FmtChunk{}, err
	}
	bitsPerSample, err := rd.LU16()
	if err != nil {
		return FmtChunk{}, err
	}
	if size > 16 {
		if _, err := rd.Seek(int64(size-16), io.SeekCurrent); err != nil {
			return FmtChunk{}, err
		}
	}
	return FmtChunk{
		AudioFormat: audioFormat, Channels: channels, SampleRate: sampleRate,
		ByteRate: byteRate, BlockAlign: blockAlign, BitsPerSample: bitsPerSample,
	}, nil
}

// ToTrack builds the uniform Track from Info.
func ToTrack(info Info) *model.Track {
	t := &model.Track{
		Media:      model.MediaAudio,
		Format:     model.FormatDescriptor{Family: model.CodecPCM},
		SampleRate: int(info.Fmt.SampleRate),
		Channels:   int(info.Fmt.Channels),
		BitDepth:   int(info.Fmt.BitsPerSample),
		Bitrate:    int(info.Fmt.ByteRate) * 8,
		SampleCount: info.TotalSamples,
	}
	if info.Fmt.SampleRate > 0 {
		t.DurationMs = int64(info.TotalSamples) * 1000 / int64(info.Fmt.SampleRate)
	}
	t.SetHeaderSpan(info.DataOffset, info.DataLen)
	return t
}
