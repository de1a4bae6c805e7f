package model

// TagTargetScope is the scope a tag (or, in Matroska, a single Tag
// element) applies to.
type TagTargetScope int

const (
	TargetFile TagTargetScope = iota
	TargetTrack
	TargetChapter
	TargetAttachment
	TargetEdition
)

func (s TagTargetScope) String() string {
	switch s {
	case TargetFile:
		return "file"
	case TargetTrack:
		return "track"
	case TargetChapter:
		return "chapter"
	case TargetAttachment:
		return "attachment"
	case TargetEdition:
		return "edition"
	default:
		return "unknown"
	}
}

// TagTarget is a scope hint. Matroska generalises it with a UID and a
// TypeValue (10..70); other formats use FileTarget, the fixed default.
type TagTarget struct {
	Scope TagTargetScope
	// UID identifies the specific track/chapter/attachment/edition this
	// tag applies to; 0 when Scope is TargetFile or the format has no
	// notion of per-entity UIDs.
	UID uint64
	// TypeValue is Matroska's TargetTypeValue (e.g. 50 for "album",
	// 30 for "track"); 0 for non-Matroska containers.
	TypeValue int
}

// FileTarget is the default scope used by formats without Matroska's
// generalised targeting.
var FileTarget = TagTarget{Scope: TargetFile}

// TagField is one metadata item: an identifier, optional sub-identifiers,
// a value, and optional nested fields (EBML SimpleTag nesting).
type TagField struct {
	// ID is format-specific: a 4-byte ID3v2 frame id, a 4-byte MP4 atom
	// FourCC, an UPPERCASE Vorbis key, or an EBML SimpleTag name.
	ID string
	// SubID carries secondary identification the parent ID alone does
	// not capture: the ID3v2 COMM/USLT content description, or the MP4
	// "----" mean and name joined as "mean:name". Languages (ID3v2
	// COMM/USLT, Matroska SimpleTag) go in Language, not here.
	SubID string
	// Language is an ISO-639 code when the field is language-qualified.
	Language string
	Value    TagValue
	// Nested holds child fields (EBML nested SimpleTag).
	Nested []TagField
}

// Valid reports the TagField invariant: at least one of Value/Nested is
// non-empty.
func (f TagField) Valid() bool {
	return !f.Value.IsEmpty() || len(f.Nested) > 0
}

// TagFormat identifies which concrete tag flavour a Tag carries.
type TagFormat int

const (
	TagFormatID3v1 TagFormat = iota
	TagFormatID3v2
	TagFormatMP4
	TagFormatMatroska
	TagFormatVorbisComment
	TagFormatRIFFInfo
)

func (f TagFormat) String() string {
	switch f {
	case TagFormatID3v1:
		return "ID3v1"
	case TagFormatID3v2:
		return "ID3v2"
	case TagFormatMP4:
		return "MP4"
	case TagFormatMatroska:
		return "Matroska"
	case TagFormatVorbisComment:
		return "VorbisComment"
	case TagFormatRIFFInfo:
		return "RIFFInfo"
	default:
		return "unknown"
	}
}

// Tag is a container-scoped bundle of metadata fields: one concrete
// struct carrying a Format discriminator plus format-specific version
// info, rather than a class hierarchy with virtual dispatch
// (Id3v1Tag/Id3v2Tag/Mp4Tag/MatroskaTag/VorbisComment), so the
// field/identifier rules each format needs live in the container
// package that builds the Tag rather than in N parallel type
// hierarchies.
type Tag struct {
	Format TagFormat
	Target TagTarget
	// Version is format-specific: "2.<major>" for ID3v2 (e.g. "2.4"),
	// the vendor string for Vorbis comments, "1" for Matroska tags, or
	// empty where not applicable.
	Version string
	Fields  []TagField
}

// Field returns the first field with the given ID, and whether it was
// found.
func (t *Tag) Field(id string) (TagField, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return TagField{}, false
}

// FieldsByID returns every field with the given ID, preserving insertion
// order.
func (t *Tag) FieldsByID(id string) []TagField {
	var out []TagField
	for _, f := range t.Fields {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

// SetField replaces the first field with the given ID, or appends a new
// one if none exists.
func (t *Tag) SetField(field TagField) {
	for i := range t.Fields {
		if t.Fields[i].ID == field.ID {
			t.Fields[i] = field
			return
		}
	}
	t.Fields = append(t.Fields, field)
}

// RemoveField deletes every field with the given ID.
func (t *Tag) RemoveField(id string) {
	out := t.Fields[:0]
	for _, f := range t.Fields {
		if f.ID != id {
			out = append(out, f)
		}
	}
	t.Fields = out
}
