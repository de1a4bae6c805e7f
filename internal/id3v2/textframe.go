package id3v2

import (
	"bytes"

	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/textenc"
)

// Text-encoding byte values.
const (
	EncLatin1      = 0
	EncUTF16BOM    = 1
	EncUTF16BE     = 2
	EncUTF8        = 3 // v2.4 only
)

// decodeText decodes a text-frame payload whose first byte is the
// encoding declarator, returning the multi-value split .7's
// null-separated rule.
func decodeText(payload []byte) ([]string, model.TextEncoding, error) {
	if len(payload) == 0 {
		return nil, model.EncodingUTF8, nil
	}
	encByte, body := payload[0], payload[1:]
	switch encByte {
	case EncLatin1:
		return textenc.SplitNullTerminatedUTF8([]byte(encodeASCIISafe(textenc.DecodeLatin1(body)))), model.EncodingLatin1, nil
	case EncUTF16BOM:
		return splitUTF16BOM(body)
	case EncUTF16BE:
		return textenc.SplitNullTerminatedUTF16(body, true), model.EncodingUTF16, nil
	case EncUTF8:
		return textenc.SplitNullTerminatedUTF8(body), model.EncodingUTF8, nil
	default:
		return nil, 0, model.InvalidDataf("id3v2.decodeText", "unknown text encoding byte 0x%02x", encByte)
	}
}

// encodeASCIISafe re-encodes a Latin-1-decoded string back to raw bytes
// so textenc.SplitNullTerminatedUTF8's NUL-splitting (which operates on
// byte 0x00, not the UTF-8 rune U+0000) behaves identically for Latin-1
// payloads; Latin-1 code points 0x00-0xFF round-trip through this
// byte-for-byte.
func encodeASCIISafe(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

func splitUTF16BOM(body []byte) ([]string, model.TextEncoding, error) {
	// Each value in a BOM-prefixed multi-value frame carries its own
	// BOM; split on the NUL terminator width appropriate to the first
	// value's detected endianness, then decode each segment with its
	// own BOM via textenc.
	bigEndian := true
	if len(body) >= 2 && body[0] == 0xFF && body[1] == 0xFE {
		bigEndian = false
	}
	segments := textenc.SplitNullTerminatedUTF16(body, bigEndian)
	// SplitNullTerminatedUTF16 does not strip BOM code points; decode
	// each raw segment properly instead by re-deriving byte boundaries.
	raw := bytes.Split(trimTrailingNull16(body), []byte{0x00, 0x00})
	out := make([]string, 0, len(raw))
	for _, seg := range raw {
		if len(seg) == 0 {
			continue
		}
		s, err := textenc.DecodeUTF16WithBOM(seg)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		out = segments
	}
	return out, model.EncodingUTF16, nil
}

func trimTrailingNull16(b []byte) []byte {
	for len(b) >= 2 && b[len(b)-2] == 0x00 && b[len(b)-1] == 0x00 {
		b = b[:len(b)-2]
	}
	return b
}

// encodeText serialises values with the given encoding, prefixed by the
// encoding declarator byte. major gates whether EncUTF8 is available
// (v2.4 only; earlier versions fall back to UTF-16 with BOM).
func encodeText(values []string, enc model.TextEncoding, major int) []byte {
	switch enc {
	case model.EncodingLatin1:
		out := []byte{EncLatin1}
		for i, v := range values {
			if i > 0 {
				out = append(out, 0x00)
			}
			b, err := textenc.EncodeLatin1(v)
			if err != nil {
				b = []byte(v) // best effort; caller validated upstream
			}
			out = append(out, b...)
		}
		return out
	case model.EncodingUTF8:
		if major >= 4 {
			out := []byte{EncUTF8}
			out = append(out, textenc.JoinNullTerminatedUTF8(values)...)
			return out
		}
		fallthrough
	default:
		out := []byte{EncUTF16BOM}
		for i, v := range values {
			if i > 0 {
				out = append(out, 0x00, 0x00)
			}
			out = append(out, textenc.EncodeUTF16WithBOM(v)...)
		}
		return out
	}
}
