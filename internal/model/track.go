package model

// MediaType is the coarse type of a Track.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaAudio
	MediaVideo
	MediaSubtitle
	MediaHint
)

func (m MediaType) String() string {
	switch m {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	case MediaSubtitle:
		return "subtitle"
	case MediaHint:
		return "hint"
	default:
		return "unknown"
	}
}

// CodecFamily groups related codec ids the way FormatDescriptor does:
// a numeric family plus a subtype string and an extension mask.
type CodecFamily int

const (
	CodecUnknown CodecFamily = iota
	CodecPCM
	CodecMPEGAudio // MP1/MP2/MP3
	CodecAAC
	CodecALAC
	CodecFLAC
	CodecVorbis
	CodecOpus
	CodecAC3
	CodecEAC3
	CodecAVC
	CodecHEVC
	CodecAV1
	CodecVP9
	CodecTimedText
)

// FormatDescriptor is Track's "numeric family + subtype + extension
// mask" attribute.
type FormatDescriptor struct {
	Family       CodecFamily
	Subtype      string // codec-specific fourcc/tag, e.g. "mp4a", "A_VORBIS"
	ExtensionMask uint32 // bitfield of format-specific extension flags
}

// Track is a codec-bearing stream within a Container.
type Track struct {
	ID       uint64 // container-scoped identifier (EBML TrackUID, MP4 track id, 0 for formats without one)
	Index    int    // 0-based position among the container's tracks
	Media    MediaType
	Format   FormatDescriptor
	Name     string
	Language string // ISO-639 code

	DurationMs int64
	Bitrate    int // bits per second
	MaxBitrate int
	SampleRate int // Hz
	Channels   int
	BitDepth   int
	FPS        float64
	Timescale  uint32
	SampleCount uint64

	Enabled  bool
	Default  bool
	Forced   bool
	Lacing   bool
	Encrypted bool

	DisplayWidth  int
	DisplayHeight int
	PixelAspectRatioNum int
	PixelAspectRatioDen int
	ColorSpace          string

	// startOffset is where parseHeader seeks to read codec-specific
	// structures; it is unexported because it is meaningless outside the
	// container package that produced this Track.
	startOffset int64
	headerLen   int64
}

// StartOffset and HeaderLen expose the byte range a container-specific
// parser used to derive this Track's technical fields, for diagnostics
// and for the rewrite planner's "does this track's sample description
// move" checks.
func (t *Track) StartOffset() int64 { return t.startOffset }
func (t *Track) HeaderLen() int64   { return t.headerLen }

// SetHeaderSpan is called by container parsers once a track's
// codec-specific header has been located.
func (t *Track) SetHeaderSpan(offset, length int64) {
	t.startOffset = offset
	t.headerLen = length
}

// Chapter is a named, timestamped point (or range) in the container.
type Chapter struct {
	UID       uint64
	StartMs   int64
	EndMs     int64
	Title     string
	Language  string
	Hidden    bool
	Enabled   bool
	Nested    []Chapter
}

// EditionEntry groups a set of Chapters into one navigable edition
// (Matroska's EditionEntry; other formats synthesize a single implicit
// edition).
type EditionEntry struct {
	UID       uint64
	Default   bool
	Hidden    bool
	Ordered   bool
	Chapters  []Chapter
}

// Attachment is an embedded file (Matroska AttachedFile; MP4/ID3
// pictures are modelled as TagValue picture fields instead, since they
// are tag-scoped rather than container-scoped).
type Attachment struct {
	UID         uint64
	FileName    string
	MimeType    string
	Description string
	Data        []byte
}
