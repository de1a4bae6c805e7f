package id3v2

import (
	"bytes"

	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/textenc"
)

// decodePicture parses an APIC (v2.3/2.4) or PIC (v2.2) frame payload:
// encoding byte, MIME type (or a 3-byte format code in v2.2), picture
// type byte, null-terminated description in the declared encoding, then
// raw binary.
func decodePicture(payload []byte, major int) (model.Picture, error) {
	if len(payload) < 2 {
		return model.Picture{}, model.TruncatedDataf("id3v2.decodePicture", "picture frame too short")
	}
	encByte := payload[0]
	rest := payload[1:]

	var mime string
	if major == 2 {
		if len(rest) < 3 {
			return model.Picture{}, model.TruncatedDataf("id3v2.decodePicture", "v2.2 PIC frame too short")
		}
		mime = pictureFormatMime(string(rest[:3]))
		rest = rest[3:]
	} else {
		idx := bytes.IndexByte(rest, 0x00)
		if idx < 0 {
			return model.Picture{}, model.InvalidDataf("id3v2.decodePicture", "APIC missing MIME terminator")
		}
		mime = string(rest[:idx])
		rest = rest[idx+1:]
	}
	if len(rest) < 1 {
		return model.Picture{}, model.TruncatedDataf("id3v2.decodePicture", "picture frame missing type byte")
	}
	typeCode := rest[0]
	rest = rest[1:]

	desc, data, err := splitDescriptorAndBinary(rest, encByte)
	if err != nil {
		return model.Picture{}, err
	}
	return model.Picture{MimeType: mime, Description: desc, TypeCode: typeCode, Data: data}, nil
}

func splitDescriptorAndBinary(rest []byte, encByte byte) (string, []byte, error) {
	switch encByte {
	case EncLatin1, EncUTF8:
		idx := bytes.IndexByte(rest, 0x00)
		if idx < 0 {
			return "", nil, model.InvalidDataf("id3v2.splitDescriptorAndBinary", "missing description terminator")
		}
		descBytes, data := rest[:idx], rest[idx+1:]
		if encByte == EncLatin1 {
			return textenc.DecodeLatin1(descBytes), data, nil
		}
		return string(descBytes), data, nil
	case EncUTF16BOM, EncUTF16BE:
		idx := indexNull16(rest)
		if idx < 0 {
			return "", nil, model.InvalidDataf("id3v2.splitDescriptorAndBinary", "missing UTF-16 description terminator")
		}
		descBytes, data := rest[:idx], rest[idx+2:]
		var (
			desc string
			err  error
		)
		if encByte == EncUTF16BOM {
			desc, err = textenc.DecodeUTF16WithBOM(descBytes)
		} else {
			desc, err = textenc.DecodeUTF16BE(descBytes)
		}
		if err != nil {
			return "", nil, err
		}
		return desc, data, nil
	default:
		return "", nil, model.InvalidDataf("id3v2.splitDescriptorAndBinary", "unknown text encoding byte 0x%02x", encByte)
	}
}

func indexNull16(b []byte) int {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0x00 && b[i+1] == 0x00 {
			return i
		}
	}
	return -1
}

// encodePicture serialises p as an APIC/PIC payload targeting major.
func encodePicture(p model.Picture, major int) []byte {
	var out []byte
	if major == 2 {
		out = append(out, EncLatin1)
		out = append(out, []byte(pictureMimeFormat(p.MimeType))...)
	} else {
		out = append(out, EncLatin1)
		out = append(out, []byte(p.MimeType)...)
		out = append(out, 0x00)
	}
	out = append(out, p.TypeCode)
	descBytes, _ := textenc.EncodeLatin1(p.Description)
	out = append(out, descBytes...)
	out = append(out, 0x00)
	out = append(out, p.Data...)
	return out
}

func pictureFormatMime(code string) string {
	switch code {
	case "JPG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	default:
		return "image/" + code
	}
}

func pictureMimeFormat(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/png":
		return "PNG"
	default:
		return "UND"
	}
}

// decodeLangQualified parses a COMM/USLT payload: encoding byte, 3-byte
// ISO-639 language code, null-terminated description, then content in
// the declared encoding.
func decodeLangQualified(payload []byte) (lang, desc, content string, enc model.TextEncoding, err error) {
	if len(payload) < 4 {
		return "", "", "", 0, model.TruncatedDataf("id3v2.decodeLangQualified", "frame too short for language-qualified payload")
	}
	encByte := payload[0]
	lang = string(payload[1:4])
	rest := payload[4:]
	desc, content, err = splitDescriptorAndText(rest, encByte)
	if err != nil {
		return "", "", "", 0, err
	}
	switch encByte {
	case EncLatin1:
		enc = model.EncodingLatin1
	case EncUTF16BOM, EncUTF16BE:
		enc = model.EncodingUTF16
	case EncUTF8:
		enc = model.EncodingUTF8
	}
	return lang, desc, content, enc, nil
}

func splitDescriptorAndText(rest []byte, encByte byte) (desc, content string, err error) {
	switch encByte {
	case EncLatin1, EncUTF8:
		idx := bytes.IndexByte(rest, 0x00)
		if idx < 0 {
			return "", "", model.InvalidDataf("id3v2.splitDescriptorAndText", "missing description terminator")
		}
		descBytes, contentBytes := rest[:idx], rest[idx+1:]
		if encByte == EncLatin1 {
			return textenc.DecodeLatin1(descBytes), textenc.DecodeLatin1(contentBytes), nil
		}
		return string(descBytes), string(contentBytes), nil
	case EncUTF16BOM, EncUTF16BE:
		idx := indexNull16(rest)
		if idx < 0 {
			return "", "", model.InvalidDataf("id3v2.splitDescriptorAndText", "missing UTF-16 description terminator")
		}
		descBytes, contentBytes := rest[:idx], rest[idx+2:]
		var d, c string
		var err error
		if encByte == EncUTF16BOM {
			d, err = textenc.DecodeUTF16WithBOM(descBytes)
			if err == nil {
				c, err = textenc.DecodeUTF16WithBOM(contentBytes)
			}
		} else {
			d, err = textenc.DecodeUTF16BE(descBytes)
			if err == nil {
				c, err = textenc.DecodeUTF16BE(contentBytes)
			}
		}
		return d, c, err
	default:
		return "", "", model.InvalidDataf("id3v2.splitDescriptorAndText", "unknown text encoding byte 0x%02x", encByte)
	}
}

// encodeLangQualified serialises a COMM/USLT payload.
func encodeLangQualified(lang, desc, content string, enc model.TextEncoding) []byte {
	var out []byte
	if len(lang) != 3 {
		lang = "und"
	}
	switch enc {
	case model.EncodingLatin1:
		out = append(out, EncLatin1)
		out = append(out, lang...)
		d, _ := textenc.EncodeLatin1(desc)
		c, _ := textenc.EncodeLatin1(content)
		out = append(out, d...)
		out = append(out, 0x00)
		out = append(out, c...)
	case model.EncodingUTF8:
		out = append(out, EncUTF8)
		out = append(out, lang...)
		out = append(out, desc...)
		out = append(out, 0x00)
		out = append(out, content...)
	default:
		out = append(out, EncUTF16BOM)
		out = append(out, lang...)
		out = append(out, textenc.EncodeUTF16WithBOM(desc)...)
		out = append(out, 0x00, 0x00)
		out = append(out, textenc.EncodeUTF16WithBOM(content)...)
	}
	return out
}
