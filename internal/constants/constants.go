// Package constants contains library-wide constants to avoid magic
// numbers and strings scattered across the container parsers.
package constants

// File magic / signatures.
const (
	MagicRIFF    = "RIFF"
	MagicWAVE    = "WAVE"
	MagicFLAC    = "fLaC"
	MagicOggS    = "OggS"
	MagicID3     = "ID3"
	MagicID3v1   = "TAG"
	MagicVorbis  = "\x01vorbis"
	MagicOpusHd  = "OpusHead"
	MagicOpusTag = "OpusTags"
	// MagicEBML is the 4-byte EBML header ID shared by Matroska and
	// WebM (and any other EBML doctype); container-format dispatch relies
	// on this before the DocType element further down the header is read.
	MagicEBML = "\x1A\x45\xDF\xA3"
	// MagicFtyp is the ISO-BMFF "ftyp" box type, read from bytes 4:8 of
	// the file; MP4/M4A/M4B all start with a size-prefixed ftyp box.
	MagicFtyp = "ftyp"
)

// MIME types used when sniffing or declaring picture payloads.
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeMP4  = "audio/mp4"
	MimeTypeOgg  = "audio/ogg"
	MimeTypeWAV  = "audio/wav"
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
)

// File extensions recognised by format-hint dispatch.
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtMP4  = ".mp4"
	ExtM4A  = ".m4a"
	ExtM4B  = ".m4b"
	ExtOgg  = ".ogg"
	ExtOpus = ".opus"
	ExtWAV  = ".wav"
	ExtMKA  = ".mka"
	ExtMKV  = ".mkv"
	ExtWebM = ".webm"
)

// Parse / rewrite limits. These are the defaults used by Options when the
// caller does not override them; see internal/config.
const (
	// DefaultMaxElementDepth bounds recursive descent into a container
	// tree so a pathological or adversarial file cannot exhaust the
	// stack.
	DefaultMaxElementDepth = 64

	// DefaultMaxElementSize bounds a single element/atom/page's declared
	// size; anything larger is rejected as TruncatedData rather than
	// attempting to allocate it.
	DefaultMaxElementSize = 1 << 34 // 16 GiB

	// DefaultPaddingReserve is how much padding (in bytes) the planner
	// tries to leave behind on a full-rewrite, so a subsequent small
	// edit has a chance at an in-place rewrite.
	DefaultPaddingReserve = 1024

	// ID3v1TagSize is the fixed size of the ID3v1 trailer, magic
	// included.
	ID3v1TagSize = 128

	// ID3v2HeaderSize is the fixed size of the ID3v2 header, before the
	// optional extended header.
	ID3v2HeaderSize = 10

	// FLACStreamInfoSize is the fixed payload size of the STREAMINFO
	// block.
	FLACStreamInfoSize = 34

	// OggPageHeaderSize is the fixed portion of an Ogg page header,
	// before the segment table.
	OggPageHeaderSize = 27
)

// File permissions used when the planner creates temporary files.
const (
	DirPermissions  = 0o755
	FilePermissions = 0o644
)
