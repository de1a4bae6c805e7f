// Package mediatags reads and rewrites metadata across MP4/ISO-BMFF,
// Matroska/WebM, Ogg (Vorbis/Opus/FLAC), native FLAC, WAV/RIFF, and
// MP3/ID3 files through one uniform Container model.
package mediatags

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/adts"
	"github.com/cesargomez89/mediatags/internal/config"
	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/flac"
	"github.com/cesargomez89/mediatags/internal/ivf"
	"github.com/cesargomez89/mediatags/internal/matroska"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/mp3"
	"github.com/cesargomez89/mediatags/internal/mp4"
	"github.com/cesargomez89/mediatags/internal/ogg"
	"github.com/cesargomez89/mediatags/internal/wav"
)

// sniffWindow is how many leading bytes Open reads to identify a
// container by magic; the deepest magic checked (RIFF's "WAVE" form
// type) lives at offset 8:12, the end of this window.
const sniffWindow = 12

// Container re-exports the uniform model so callers of this package
// never need to import internal/model directly.
type Container = model.Container

// Diagnostics re-exports the non-fatal finding log Open/ApplyChanges
// accumulate while parsing or rewriting.
type Diagnostics = model.Diagnostics

// ProgressFeedback re-exports the rewrite progress/cancellation hook.
type ProgressFeedback = model.ProgressFeedback

// Options re-exports the parse/rewrite tunables (recursion depth,
// element size ceiling, padding reserve, checksum verification, and
// logger configuration) every container consults.
type Options = config.Options

// LoadOptions returns the default Options.
func LoadOptions() *Options { return config.Load() }

// Open identifies r's container format by magic bytes and parses
// it into a uniform Container. diag may be nil; a fresh Diagnostics is
// used in that case. opts may be nil; LoadOptions's defaults are used
// in that case.
//
// Open seeks r to measure the stream length; a plain io.Reader can be
// wrapped in an in-memory buffer such as bytes.Reader.
func Open(r io.ReadSeeker, diag *model.Diagnostics, opts *Options) (*model.Container, error) {
	if diag == nil {
		diag = &model.Diagnostics{}
	}
	if opts == nil {
		opts = config.Load()
	}

	streamLen, err := streamLength(r)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffWindow)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, model.IoErrorf("mediatags.Open", err, "read magic bytes")
	}
	head = head[:n]
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, model.IoErrorf("mediatags.Open", err, "rewind after sniffing")
	}

	switch {
	case hasAt(head, 0, constants.MagicRIFF) && hasAt(head, 8, constants.MagicWAVE):
		return wav.Parse(r, diag, opts)
	case hasAt(head, 0, constants.MagicFLAC):
		return flac.Parse(r, diag, opts)
	case hasAt(head, 0, constants.MagicOggS):
		return ogg.Parse(r, diag, opts)
	case hasAt(head, 0, constants.MagicEBML):
		return matroska.Parse(r, streamLen, diag, opts)
	case hasAt(head, 4, constants.MagicFtyp):
		return mp4.Parse(r, streamLen, diag, opts)
	case hasAt(head, 0, "DKIF"):
		return ivf.Parse(r, diag)
	case looksLikeADTS(head):
		return adts.Parse(r, diag)
	case hasAt(head, 0, constants.MagicID3), looksLikeMPEGSync(head):
		return mp3.Parse(r, diag, opts)
	default:
		return nil, model.InvalidDataf("mediatags.Open", "unrecognised container: no known magic at start of stream")
	}
}

func streamLength(r io.Seeker) (int64, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, model.IoErrorf("mediatags.streamLength", err, "get current offset")
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, model.IoErrorf("mediatags.streamLength", err, "seek to end")
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return 0, model.IoErrorf("mediatags.streamLength", err, "restore offset")
	}
	return end, nil
}

func hasAt(buf []byte, offset int, magic string) bool {
	if offset+len(magic) > len(buf) {
		return false
	}
	return string(buf[offset:offset+len(magic)]) == magic
}

// hasMPEGSync11 reports whether buf starts with the 11-bit sync word
// ADTS and MPEG audio frames both use.
func hasMPEGSync11(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1]&0xE0 == 0xE0
}

// mpegLayerBits isolates the 2 layer bits MPEG audio and ADTS disagree
// on: MPEG audio treats "00" as a reserved, invalid layer, while ADTS
// always sets this field to "00" since AAC has no layer concept. That
// makes the layer field, not the version bit, the reliable way to tell
// the two apart from a bare sync word.
func mpegLayerBits(buf []byte) byte {
	return buf[1] & 0x06
}

// looksLikeMPEGSync reports whether buf starts with a plausible MPEG
// audio frame header, the fallback for ID3-less MP3 files.
func looksLikeMPEGSync(buf []byte) bool {
	return hasMPEGSync11(buf) && mpegLayerBits(buf) != 0
}

// looksLikeADTS reports whether buf starts with an ADTS frame header,
// per ISO/IEC 13818-7.
func looksLikeADTS(buf []byte) bool {
	return hasMPEGSync11(buf) && mpegLayerBits(buf) == 0
}
