package model

import "fmt"

// ValueKind discriminates the TagValue union.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueInteger
	ValueIntegerArray
	ValueText
	ValueBinary
	ValueDateTime
	ValueTimeSpan
	ValuePositionInSet
	ValueGenre
	ValuePicture
)

func (k ValueKind) String() string {
	switch k {
	case ValueEmpty:
		return "empty"
	case ValueInteger:
		return "integer"
	case ValueIntegerArray:
		return "integerArray"
	case ValueText:
		return "text"
	case ValueBinary:
		return "binary"
	case ValueDateTime:
		return "dateTime"
	case ValueTimeSpan:
		return "timeSpan"
	case ValuePositionInSet:
		return "positionInSet"
	case ValueGenre:
		return "genre"
	case ValuePicture:
		return "picture"
	default:
		return "unknown"
	}
}

// TextEncoding names the declared character set of a ValueText payload.
// Conversions between encodings are explicit operations, never
// implicit: the zero value is EncodingUTF8.
type TextEncoding int

const (
	EncodingUTF8 TextEncoding = iota
	EncodingUTF16
	EncodingLatin1
)

func (e TextEncoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16:
		return "utf-16"
	case EncodingLatin1:
		return "latin-1"
	default:
		return "unknown"
	}
}

// Picture is a cover-art / attached-image payload, used by MP4 covr,
// FLAC PICTURE, ID3v2 APIC, and Vorbis METADATA_BLOCK_PICTURE.
type Picture struct {
	MimeType    string
	Description string
	// TypeCode follows the ID3v2 APIC picture-type enumeration (0..20);
	// other containers map their own type codes onto / from it at the
	// tag-field boundary.
	TypeCode byte
	Data     []byte
}

// PositionInSet is a "current/total" pair, e.g. track 3 of 12.
type PositionInSet struct {
	Position int
	Total    int // 0 means "unknown"
}

func (p PositionInSet) String() string {
	if p.Total > 0 {
		return fmt.Sprintf("%d/%d", p.Position, p.Total)
	}
	return fmt.Sprintf("%d", p.Position)
}

// Genre holds either a numeric ID3v1 genre code, a free-text genre
// string, or both (ID3v2 allows "(17)Rock"-style combinations).
type Genre struct {
	Code int // -1 means "no numeric code"
	Text string
}

// TagValue is a discriminated union over the value cases ValueKind
// lists. Only the field matching Kind is meaningful; zero values
// elsewhere are ignored. Copied by value on extraction (model.TagValue
// is a plain struct, never shared by pointer across a TagField
// boundary).
type TagValue struct {
	Kind ValueKind

	// ValueInteger
	Int int64

	// ValueIntegerArray
	IntArray []int64

	// ValueText
	Text         []string // multiple values for formats with a null-separated multi-value rule
	TextEncoding TextEncoding

	// ValueBinary
	Binary   []byte
	MimeType string

	// ValueDateTime / ValueTimeSpan: stored as RFC3339-ish strings or
	// durations expressed in milliseconds, since the precision each
	// container allows varies (full timestamp vs. year-only).
	DateTime    string
	TimeSpanMs  int64

	// ValuePositionInSet
	Position PositionInSet

	// ValueGenre
	GenreValue Genre

	// ValuePicture
	PictureValue Picture
}

// IsEmpty reports whether the value carries no data.
func (v TagValue) IsEmpty() bool {
	return v.Kind == ValueEmpty
}

// TextValue builds a single-string UTF-8 text TagValue, the overwhelmingly
// common case.
func TextValue(s string) TagValue {
	return TagValue{Kind: ValueText, Text: []string{s}, TextEncoding: EncodingUTF8}
}

// TextValues builds a multi-value UTF-8 text TagValue.
func TextValues(ss []string) TagValue {
	return TagValue{Kind: ValueText, Text: ss, TextEncoding: EncodingUTF8}
}

// IntValue builds an integer TagValue.
func IntValue(n int64) TagValue {
	return TagValue{Kind: ValueInteger, Int: n}
}

// PictureTagValue builds a picture TagValue.
func PictureTagValue(p Picture) TagValue {
	return TagValue{Kind: ValuePicture, PictureValue: p}
}

// First returns the first text value, or "" if the value is not text or
// has no entries.
func (v TagValue) First() string {
	if v.Kind != ValueText || len(v.Text) == 0 {
		return ""
	}
	return v.Text[0]
}
