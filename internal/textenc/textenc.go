// Package textenc converts between the text encodings TagValue text
// fields carry: UTF-8, UTF-16 (with or without a BOM, big- or
// little-endian), and Latin-1 (ISO-8859-1). It wraps golang.org/x/text
// rather than hand-rolling UTF-16 surrogate pairing and Latin-1's
// one-byte-per-codepoint mapping, both of which the standard library
// does not expose directly.
package textenc

import (
	"bytes"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/cesargomez89/mediatags/internal/model"
)

// DecodeLatin1 converts ISO-8859-1 bytes to a UTF-8 string. Every byte
// maps to exactly one code point, so this never fails.
func DecodeLatin1(b []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().String(string(b))
	if err != nil {
		// charmap.ISO8859_1 is total over all byte values; this path is
		// unreachable, but fall back to the byte-for-byte identity
		// mapping rather than propagating an error from a total function.
		out := make([]rune, len(b))
		for i, c := range b {
			out[i] = rune(c)
		}
		return string(out)
	}
	return s
}

// EncodeLatin1 converts a UTF-8 string to ISO-8859-1 bytes, returning
// model.ErrInvalidData if s contains a code point outside Latin-1.
func EncodeLatin1(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, model.NewError(model.KindInvalidData, "textenc.EncodeLatin1", "string is not representable in Latin-1", err)
	}
	return b, nil
}

// DecodeUTF16WithBOM decodes UTF-16 bytes that begin with a byte-order
// mark (ID3v2 text encoding 1). Defaults to big-endian if no BOM is
// present, per the UTF-16 standard's fallback rule.
func DecodeUTF16WithBOM(b []byte) (string, error) {
	dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", model.NewError(model.KindInvalidData, "textenc.DecodeUTF16WithBOM", "malformed UTF-16", err)
	}
	return string(out), nil
}

// EncodeUTF16WithBOM encodes s as little-endian UTF-16 with a leading
// BOM, matching what ID3v2 writers conventionally emit for encoding 1.
func EncodeUTF16WithBOM(s string) []byte {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, _ := enc.Bytes([]byte(s))
	return out
}

// DecodeUTF16BE decodes UTF-16BE bytes with no BOM (ID3v2 text encoding
// 2).
func DecodeUTF16BE(b []byte) (string, error) {
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", model.NewError(model.KindInvalidData, "textenc.DecodeUTF16BE", "malformed UTF-16BE", err)
	}
	return string(out), nil
}

// EncodeUTF16BE encodes s as UTF-16BE with no BOM.
func EncodeUTF16BE(s string) []byte {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	out, _ := enc.Bytes([]byte(s))
	return out
}

// UTF16NullLength returns the number of raw bytes a UTF-16 null
// terminator occupies.
const UTF16NullLength = 2

// SplitNullTerminatedUTF8 splits a NUL-separated run of UTF-8 strings
//.
func SplitNullTerminatedUTF8(b []byte) []string {
	b = bytes.TrimSuffix(b, []byte{0x00})
	if len(b) == 0 {
		return nil
	}
	parts := bytes.Split(b, []byte{0x00})
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}

// JoinNullTerminatedUTF8 is the inverse of SplitNullTerminatedUTF8.
func JoinNullTerminatedUTF8(values []string) []byte {
	return []byte(joinWith(values, "\x00"))
}

// SplitNullTerminatedUTF16 splits a run of UTF-16 code units on a
// two-byte NUL terminator, decoding each non-empty segment with
// utf16.Decode; empty segments are dropped.
func SplitNullTerminatedUTF16(b []byte, bigEndian bool) []string {
	units := bytesToUTF16(b, bigEndian)
	var segments [][]uint16
	start := 0
	for i := 0; i < len(units); i++ {
		if units[i] == 0 {
			segments = append(segments, units[start:i])
			start = i + 1
		}
	}
	if start < len(units) {
		segments = append(segments, units[start:])
	}
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		out = append(out, string(utf16.Decode(seg)))
	}
	return out
}

func bytesToUTF16(b []byte, bigEndian bool) []uint16 {
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		if bigEndian {
			units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
		} else {
			units[i] = uint16(b[2*i+1])<<8 | uint16(b[2*i])
		}
	}
	return units
}

func joinWith(values []string, sep string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += sep
		}
		out += v
	}
	return out
}
