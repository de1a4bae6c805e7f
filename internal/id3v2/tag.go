package id3v2

import (
	"bytes"
	"fmt"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// textFrameIDs lists canonical frame ids this library materialises as
// plain multi-value text fields (everything not handled specially by
// COMM/USLT/APIC below).
var textFrameIDs = map[string]bool{
	"TIT2": true, "TPE1": true, "TPE2": true, "TALB": true, "TYER": true,
	"TDRC": true, "TRCK": true, "TPOS": true, "TCON": true, "TCOM": true,
	"TENC": true, "TLEN": true, "TBPM": true, "TCOP": true, "TPUB": true,
	"TOPE": true, "TOAL": true, "TXXX": true,
}

// Read parses an ID3v2 tag from raw, a byte slice containing the full
// tag body (header + frames, as returned by the rewrite planner's
// locate step). diag receives non-fatal per-frame issues.
func Read(raw []byte, diag *model.Diagnostics) (*model.Tag, Header, error) {
	rd := ioprim.NewReader(bytes.NewReader(raw))
	header, err := ReadHeader(rd)
	if err != nil {
		return nil, Header{}, err
	}
	bodyStart, err := rd.Pos()
	if err != nil {
		return nil, Header{}, err
	}
	end := int64(model10HeaderSize) + int64(header.Size)
	if end > int64(len(raw)) {
		return nil, Header{}, model.TruncatedDataf("id3v2.Read", "tag declares size %d beyond available data", header.Size)
	}
	body := raw[bodyStart:end]
	if header.Unsynchronised() && header.MajorVersion < 4 {
		// Pre-v2.4: unsynchronisation applies to the whole tag body.
		body = ioprim.DecodeUnsynchronisation(body)
	}

	frames, err := ReadFrames(body, header.MajorVersion)
	if err != nil {
		return nil, Header{}, err
	}

	tag := &model.Tag{
		Format:  model.TagFormatID3v2,
		Target:  model.FileTarget,
		Version: fmt.Sprintf("2.%d", header.MajorVersion),
	}
	for _, fr := range frames {
		canonical, _ := CanonicalID(fr.ID)
		if err := assembleField(tag, canonical, fr, header.MajorVersion, diag); err != nil {
			diag.Warn("id3v2.Read", fmt.Sprintf("frame %q: %v", fr.ID, err))
		}
	}
	return tag, header, nil
}

func assembleField(tag *model.Tag, canonical string, fr rawFrame, major int, diag *model.Diagnostics) error {
	switch canonical {
	case "APIC":
		pic, err := decodePicture(fr.Payload, major)
		if err != nil {
			return err
		}
		tag.Fields = append(tag.Fields, model.TagField{ID: canonical, Value: model.PictureTagValue(pic)})
		return nil
	case "COMM", "USLT":
		lang, desc, content, enc, err := decodeLangQualified(fr.Payload)
		if err != nil {
			return err
		}
		tag.Fields = append(tag.Fields, model.TagField{
			ID: canonical, SubID: desc, Language: lang,
			Value: model.TagValue{Kind: model.ValueText, Text: []string{content}, TextEncoding: enc},
		})
		return nil
	case "TRCK", "TPOS":
		values, enc, err := decodeText(fr.Payload)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return nil
		}
		pos := parsePositionInSet(values[0])
		tag.Fields = append(tag.Fields, model.TagField{ID: canonical, Value: model.TagValue{Kind: model.ValuePositionInSet, Position: pos, TextEncoding: enc}})
		return nil
	default:
		if textFrameIDs[canonical] || (len(canonical) == 4 && canonical[0] == 'T') {
			values, enc, err := decodeText(fr.Payload)
			if err != nil {
				return err
			}
			tag.Fields = append(tag.Fields, model.TagField{ID: canonical, Value: model.TagValue{Kind: model.ValueText, Text: values, TextEncoding: enc}})
			return nil
		}
		// Unknown/unsupported frame: keep as an opaque binary field
		// rather than dropping it silently, so a round-trip preserves
		// it.
		tag.Fields = append(tag.Fields, model.TagField{ID: canonical, Value: model.TagValue{Kind: model.ValueBinary, Binary: fr.Payload}})
		return nil
	}
}

func parsePositionInSet(s string) model.PositionInSet {
	var pos, total int
	n, _ := fmt.Sscanf(s, "%d/%d", &pos, &total)
	if n == 0 {
		fmt.Sscanf(s, "%d", &pos)
	}
	return model.PositionInSet{Position: pos, Total: total}
}

const model10HeaderSize = 10

// Write serialises tag as a full ID3v2 tag (header + frames), targeting
// majorVersion, padded to at least paddingTo bytes of total tag size
// (body + header) when paddingTo exceeds the natural size. unsync
// requests tag-level unsynchronisation for v2.2/v2.3; it is ignored
// when majorVersion is 4.
func Write(tag *model.Tag, majorVersion int, paddingTo int, unsync bool, diag *model.Diagnostics) ([]byte, error) {
	fw := ioprim.NewWriter()
	for _, f := range tag.Fields {
		if majorVersion != 2 && IsLossyOnUpgrade(f.ID) {
			diag.Warn("id3v2.Write", fmt.Sprintf("dropping %q: no v2.3/v2.4 equivalent", f.ID))
			continue
		}
		wireID := ToVersionID(f.ID, majorVersion)
		payload, err := buildFramePayload(f, majorVersion)
		if err != nil {
			return nil, err
		}
		if err := WriteFrame(fw, majorVersion, wireID, 0, payload); err != nil {
			return nil, err
		}
	}
	body := fw.Bytes()
	if len(body) < paddingTo-model10HeaderSize {
		body = append(body, make([]byte, paddingTo-model10HeaderSize-len(body))...)
	}
	if unsync && majorVersion < 4 {
		body = ioprim.EncodeUnsynchronisation(body)
	}

	hw := ioprim.NewWriter()
	flags := byte(0)
	if unsync && majorVersion < 4 {
		flags |= FlagUnsynchronisation
	}
	minor := 0
	if majorVersion == 3 {
		minor = 0
	}
	if err := WriteHeader(hw, majorVersion, minor, flags, uint32(len(body))); err != nil {
		return nil, err
	}
	return append(hw.Bytes(), body...), nil
}

func buildFramePayload(f model.TagField, major int) ([]byte, error) {
	canonical, _ := CanonicalID(f.ID)
	switch canonical {
	case "APIC":
		return encodePicture(f.Value.PictureValue, major), nil
	case "COMM", "USLT":
		return encodeLangQualified(f.Language, f.SubID, f.Value.First(), f.Value.TextEncoding), nil
	case "TRCK", "TPOS":
		return encodeText([]string{f.Value.Position.String()}, model.EncodingUTF8, major), nil
	default:
		if f.Value.Kind == model.ValueBinary {
			return f.Value.Binary, nil
		}
		return encodeText(f.Value.Text, f.Value.TextEncoding, major), nil
	}
}
