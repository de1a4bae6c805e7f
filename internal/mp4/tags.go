package mp4

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/textenc"
)

// iTunes "data" atom well-known type indicators.
const (
	dataTypeUTF8   = 1
	dataTypeUTF16  = 2
	dataTypeJPEG   = 13
	dataTypePNG    = 14
	dataTypeBESInt = 21 // big-endian signed integer, 1/2/4/8 bytes
	dataTypeBEUInt = 22 // big-endian unsigned integer, 1/2/4/8 bytes
)

func (b *backing) parseTags(r io.ReadSeeker, ilstIdx int32, diag *model.Diagnostics) ([]*model.Tag, error) {
	tag := &model.Tag{Format: model.TagFormatMP4, Target: model.FileTarget}
	items, err := b.arena.Children(r, ilstIdx)
	if err != nil {
		return nil, err
	}
	for _, itemIdx := range items {
		n := b.arena.Get(itemIdx)
		if n.ID == idCustom {
			field, err := b.parseCustomItem(r, itemIdx)
			if err != nil {
				diag.Warn("mp4.parseTags", "---- item at %d: %v", n.Start, err)
				continue
			}
			if field.Valid() {
				tag.Fields = append(tag.Fields, field)
			}
			continue
		}
		fields, err := b.parseItem(r, itemIdx, n.ID)
		if err != nil {
			diag.Warn("mp4.parseTags", "item %q at %d: %v", IDToFourCC(n.ID), n.Start, err)
			continue
		}
		tag.Fields = append(tag.Fields, fields...)
	}
	if len(tag.Fields) == 0 {
		return nil, nil
	}
	return []*model.Tag{tag}, nil
}

// parseItem decodes one ilst item atom into one or more TagFields: a
// plain text/integer item yields one field (multi-valued if it has
// several data children); trkn/disk yield a PositionInSet field; covr
// yields one Picture field per data child.
func (b *backing) parseItem(r io.ReadSeeker, itemIdx int32, fourccID uint64) ([]model.TagField, error) {
	dataIndices, err := b.childrenByID(r, itemIdx, idData)
	if err != nil || len(dataIndices) == 0 {
		return nil, err
	}
	id := IDToFourCC(fourccID)

	switch fourccID {
	case idTrackNum, idDiskNum:
		payload, _, err := readDataAtom(r, b.arena.Get(dataIndices[0]))
		if err != nil {
			return nil, err
		}
		pos := decodePositionInSet(payload)
		return []model.TagField{{ID: id, Value: model.TagValue{Kind: model.ValuePositionInSet, Position: pos}}}, nil
	case idCover:
		var out []model.TagField
		for _, dIdx := range dataIndices {
			payload, typ, err := readDataAtom(r, b.arena.Get(dIdx))
			if err != nil {
				return nil, err
			}
			out = append(out, model.TagField{ID: id, Value: model.PictureTagValue(model.Picture{
				MimeType: mimeForDataType(typ), Data: payload,
			})})
		}
		return out, nil
	}

	var texts []string
	var intVal int64
	isInt := false
	for _, dIdx := range dataIndices {
		payload, typ, err := readDataAtom(r, b.arena.Get(dIdx))
		if err != nil {
			return nil, err
		}
		switch {
		case typ == dataTypeUTF8:
			texts = append(texts, string(payload))
		case typ == dataTypeUTF16:
			s, err := textenc.DecodeUTF16BE(payload)
			if err != nil {
				return nil, err
			}
			texts = append(texts, s)
		case typ == dataTypeBESInt || typ == dataTypeBEUInt:
			intVal = decodeBigEndianInt(payload)
			isInt = true
		default:
			return []model.TagField{{ID: id, Value: model.TagValue{Kind: model.ValueBinary, Binary: payload}}}, nil
		}
	}
	if isInt && texts == nil {
		return []model.TagField{{ID: id, Value: model.IntValue(intVal)}}, nil
	}
	if texts != nil {
		return []model.TagField{{ID: id, Value: model.TextValues(texts)}}, nil
	}
	return nil, nil
}

func (b *backing) parseCustomItem(r io.ReadSeeker, itemIdx int32) (model.TagField, error) {
	field := model.TagField{ID: "----"}
	children, err := b.arena.Children(r, itemIdx)
	if err != nil {
		return field, err
	}
	var mean, name string
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case idMean:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return field, err
			}
			mean = string(payload)
		case idName:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return field, err
			}
			name = string(payload)
		case idData:
			payload, typ, err := readDataAtom(r, n)
			if err != nil {
				return field, err
			}
			switch typ {
			case dataTypeUTF8:
				field.Value = model.TextValue(string(payload))
			case dataTypeUTF16:
				s, err := textenc.DecodeUTF16BE(payload)
				if err != nil {
					return field, err
				}
				field.Value = model.TextValue(s)
			default:
				field.Value = model.TagValue{Kind: model.ValueBinary, Binary: payload}
			}
		}
	}
	field.SubID = mean + ":" + name
	return field, nil
}

// readLeafPayload reads a non-"data" leaf atom's raw payload bytes
// (mean/name inside "----", which carry no type/locale prefix of their
// own beyond a 4-byte reserved field Apple's muxers leave as zero).
func readLeafPayload(r io.ReadSeeker, n element.Node) ([]byte, error) {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen+4, io.SeekStart); err != nil {
		return nil, err
	}
	length := n.TotalLen - n.HeaderLen - 4
	if length < 0 {
		return nil, model.TruncatedDataf("mp4.readLeafPayload", "element at %d has negative payload length", n.Start)
	}
	return rd.ReadBytes(int(length))
}

// readDataAtom reads a "data" atom's well-known type and value payload
//.
func readDataAtom(r io.ReadSeeker, n element.Node) ([]byte, uint32, error) {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return nil, 0, err
	}
	typeAndFlags, err := rd.BU32()
	if err != nil {
		return nil, 0, err
	}
	if _, err := rd.BU32(); err != nil { // locale / reserved
		return nil, 0, err
	}
	valueLen := n.TotalLen - n.HeaderLen - 8
	if valueLen < 0 {
		return nil, 0, model.TruncatedDataf("mp4.readDataAtom", "data atom at %d has negative payload length", n.Start)
	}
	payload, err := rd.ReadBytes(int(valueLen))
	if err != nil {
		return nil, 0, err
	}
	return payload, typeAndFlags & 0xFFFFFF, nil
}

// decodePositionInSet unpacks trkn/disk's 8-byte binary layout:
// 2 reserved bytes, a 2-byte index, a 2-byte total, 2 trailing bytes.
func decodePositionInSet(payload []byte) model.PositionInSet {
	if len(payload) < 6 {
		return model.PositionInSet{}
	}
	pos := int(payload[2])<<8 | int(payload[3])
	total := int(payload[4])<<8 | int(payload[5])
	return model.PositionInSet{Position: pos, Total: total}
}

func decodeBigEndianInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	// Sign-extend single/double-byte values (tmpo/cpil are type 21,
	// big-endian signed).
	switch len(b) {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	case 4:
		return int64(int32(v))
	default:
		return v
	}
}

func mimeForDataType(typ uint32) string {
	switch typ {
	case dataTypePNG:
		return "image/png"
	case dataTypeJPEG:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// encodeIlst rebuilds the ilst payload from the container's file-scoped
// tag. Fields sharing an ID are grouped
// back into one item atom with multiple data children (the inverse of
// parseItem, which yields one field per covr picture and one
// multi-valued field per text item); "----" fields are
// never grouped, since their mean/name pair is what distinguishes them.
func encodeIlst(tags []*model.Tag) []byte {
	var tag *model.Tag
	for _, t := range tags {
		if t.Target.Scope == model.TargetFile {
			tag = t
			break
		}
	}
	if tag == nil {
		return nil
	}

	w := ioprim.NewWriter()
	var order []string
	groups := map[string][]model.TagField{}
	for _, f := range tag.Fields {
		if f.ID == "----" {
			continue
		}
		if _, ok := groups[f.ID]; !ok {
			order = append(order, f.ID)
		}
		groups[f.ID] = append(groups[f.ID], f)
	}
	for _, id := range order {
		encodeAtom(w, id, encodeItemGroup(id, groups[id]))
	}
	for _, f := range tag.Fields {
		if f.ID == "----" {
			encodeAtom(w, "----", encodeCustomItem(f))
		}
	}
	return w.Bytes()
}

func encodeItemGroup(id string, fields []model.TagField) []byte {
	w := ioprim.NewWriter()
	switch id {
	case "trkn", "disk":
		if len(fields) == 0 {
			return nil
		}
		pos := fields[0].Value.Position
		payload := []byte{0, 0, byte(pos.Position >> 8), byte(pos.Position), byte(pos.Total >> 8), byte(pos.Total), 0, 0}
		encodeDataAtom(w, 0, payload)
	case "covr":
		for _, f := range fields {
			typ := uint32(dataTypeJPEG)
			if f.Value.PictureValue.MimeType == "image/png" {
				typ = dataTypePNG
			}
			encodeDataAtom(w, typ, f.Value.PictureValue.Data)
		}
	default:
		if len(fields) > 0 && fields[0].Value.Kind == model.ValueInteger {
			v := fields[0].Value.Int
			encodeDataAtom(w, dataTypeBESInt, encodeBigEndianInt(v, widthForInt(v)))
			break
		}
		for _, f := range fields {
			for _, s := range f.Value.Text {
				encodeDataAtom(w, dataTypeUTF8, []byte(s))
			}
		}
	}
	return w.Bytes()
}

func encodeCustomItem(f model.TagField) []byte {
	mean, name := f.SubID, ""
	if i := indexByte(f.SubID, ':'); i >= 0 {
		mean, name = f.SubID[:i], f.SubID[i+1:]
	}
	w := ioprim.NewWriter()
	encodeFullBoxAtom(w, "mean", []byte(mean))
	encodeFullBoxAtom(w, "name", []byte(name))
	if f.Value.Kind == model.ValueBinary {
		encodeDataAtom(w, 0, f.Value.Binary)
	} else {
		encodeDataAtom(w, dataTypeUTF8, []byte(f.Value.First()))
	}
	return w.Bytes()
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func widthForInt(v int64) int {
	switch {
	case v >= -128 && v <= 127:
		return 1
	case v >= -32768 && v <= 32767:
		return 2
	default:
		return 4
	}
}

func encodeBigEndianInt(v int64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// encodeDataAtom writes one "data" atom (4-byte type indicator, 4-byte
// locale, then the value) into w.
func encodeDataAtom(w *ioprim.Writer, typ uint32, payload []byte) {
	inner := ioprim.NewWriter()
	inner.BU32(typ)
	inner.BU32(0)
	inner.Write(payload)
	encodeAtom(w, "data", inner.Bytes())
}

// encodeFullBoxAtom writes a full-box-style atom (4-byte zero
// version/flags, then payload), the layout "mean" and "name" use inside
// a "----" item.
func encodeFullBoxAtom(w *ioprim.Writer, fourcc string, payload []byte) {
	inner := ioprim.NewWriter()
	inner.BU32(0)
	inner.Write(payload)
	encodeAtom(w, fourcc, inner.Bytes())
}
